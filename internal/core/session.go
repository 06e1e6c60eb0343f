package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/soulified/warden/internal/config"
	"github.com/soulified/warden/internal/mc"
	"github.com/soulified/warden/internal/provider"
	"github.com/soulified/warden/internal/store"
)

// AgentSession drives one connection lifetime: it owns the event loop that
// drains the client's event stream and feeds the authenticator, arbiter and
// dispatcher. Handlers run serially on the loop goroutine; only the auth
// handshake and AI completions run beside it.
type AgentSession struct {
	ID string

	client     mc.Client
	cfg        *config.Config
	bus        *EventBus
	store      *store.Store
	arbiter    *Arbiter
	dispatcher *Dispatcher
	auth       *Authenticator

	authResult  chan AuthOutcome
	authStarted bool
	spawned     bool
}

// NewAgentSession wires the per-session components around an established
// client connection. ai may be nil when AI replies are disabled.
func NewAgentSession(client mc.Client, cfg *config.Config, bus *EventBus, st *store.Store, ai provider.Provider) *AgentSession {
	s := &AgentSession{
		ID:         uuid.NewString(),
		client:     client,
		cfg:        cfg,
		bus:        bus,
		store:      st,
		authResult: make(chan AuthOutcome, 1),
	}

	s.arbiter = NewArbiter(client, bus, s.ID)
	s.dispatcher = NewDispatcher(DispatcherParams{
		Client:        client,
		Arbiter:       s.arbiter,
		AI:            ai,
		Store:         st,
		Bus:           bus,
		SessionID:     s.ID,
		AITrigger:     cfg.AI.Trigger,
		CombatTrigger: cfg.Combat.Trigger,
		Allowed:       cfg.Combat.Allowed,
		Authenticated: !cfg.Auth.Enabled,
	})

	if cfg.Auth.Enabled {
		s.auth = NewAuthenticator(client, cfg.Auth.Password, cfg.Auth.StepTimeoutDuration(), func(state AuthState) {
			if bus != nil {
				bus.Publish(Event{
					Type:      EventAuthChanged,
					SessionID: s.ID,
					Message:   string(state),
					Timestamp: time.Now(),
				})
			}
		})
	}

	return s
}

// Intent exposes the arbiter's current intent for status reporting.
func (s *AgentSession) Intent() Intent {
	return s.arbiter.Intent()
}

// AuthState reports the handshake state, authenticated when no handshake is
// configured.
func (s *AgentSession) AuthState() AuthState {
	if s.auth == nil {
		return AuthAuthenticated
	}
	return s.auth.State()
}

// Run drains the client event stream until the connection ends or ctx is
// cancelled. It returns the end reason. All client events arriving after Run
// returns are discarded by the closing stream; none produce effects.
func (s *AgentSession) Run(ctx context.Context) string {
	// Session-scoped context: everything started on behalf of this session
	// (the auth handshake in particular) must unblock when the session ends,
	// not when the supervisor does.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info().Str("session", s.ID).Msg("session started")
	if s.bus != nil {
		s.bus.Publish(Event{Type: EventSessionStarted, SessionID: s.ID, Timestamp: time.Now()})
	}
	if s.store != nil {
		if err := s.store.CreateSession(s.ID); err != nil {
			log.Warn().Err(err).Msg("session record failed")
		}
	}

	reason := s.loop(ctx)
	cancel()

	s.dispatcher.Flush()
	s.client.Close()

	if s.store != nil {
		if err := s.store.EndSession(s.ID, reason); err != nil {
			log.Warn().Err(err).Msg("session close record failed")
		}
	}
	if s.bus != nil {
		s.bus.Publish(Event{Type: EventSessionEnded, SessionID: s.ID, Message: reason, Timestamp: time.Now()})
	}
	log.Info().Str("session", s.ID).Str("reason", reason).Msg("session ended")
	return reason
}

func (s *AgentSession) loop(ctx context.Context) string {
	var msgC <-chan time.Time
	if len(s.cfg.Messages.Lines) > 0 {
		if iv := s.cfg.Messages.RepeatInterval(); iv > 0 {
			t := time.NewTicker(iv)
			defer t.Stop()
			msgC = t.C
		}
	}

	for {
		select {
		case ev, ok := <-s.client.Events():
			if !ok {
				return "event stream closed"
			}
			if done, reason := s.handle(ctx, ev); done {
				return reason
			}
		case out := <-s.authResult:
			s.onAuthResolved(out)
		case <-msgC:
			s.sendScheduledMessages()
		case <-ctx.Done():
			return "shutdown"
		}
	}
}

// handle processes one client event. It returns done=true when the session
// is over, with the end reason.
func (s *AgentSession) handle(ctx context.Context, ev mc.Event) (bool, string) {
	switch ev.Type {
	case mc.EventSpawn:
		s.onSpawn(ctx)

	case mc.EventChat:
		s.recordInbound(store.ChannelChat, ev.Sender, ev.Text)
		if s.auth != nil {
			s.auth.Offer(ev.Text)
		}
		s.dispatcher.OnChat(ev.Sender, ev.Text)

	case mc.EventWhisper:
		s.recordInbound(store.ChannelWhisper, ev.Sender, ev.Text)
		s.dispatcher.OnWhisper(ev.Sender, ev.Text)

	case mc.EventTick:
		s.arbiter.Tick()

	case mc.EventCombatEnded:
		s.arbiter.CombatEnded()

	case mc.EventGoalReached:
		log.Debug().Str("session", s.ID).Msg("goal reached")

	case mc.EventDeath:
		// The server respawns us and re-emits spawn; gear and anchor are
		// reapplied there.
		log.Warn().Str("session", s.ID).Msg("agent died")

	case mc.EventError:
		// Transport errors are transient unless followed by end.
		log.Warn().Err(ev.Err).Str("session", s.ID).Msg("transport error")
		if s.bus != nil {
			s.bus.Publish(Event{Type: EventTransportError, SessionID: s.ID, Message: errText(ev.Err), Timestamp: time.Now()})
		}

	case mc.EventKicked:
		log.Warn().Str("session", s.ID).Str("reason", ev.Reason).Msg("kicked")
		return true, "kicked: " + ev.Reason

	case mc.EventEnd:
		reason := ev.Reason
		if reason == "" {
			reason = "connection ended"
		}
		return true, reason
	}
	return false, ""
}

// onSpawn applies the standing orders: start the auth handshake, put on
// gear, engage anti-idle controls, walk to the guard anchor and announce the
// scheduled lines. Re-spawns after death re-run everything except the
// handshake, which runs at most once per session.
func (s *AgentSession) onSpawn(ctx context.Context) {
	log.Info().Str("session", s.ID).Msg("spawned")

	if s.auth != nil && !s.authStarted {
		s.authStarted = true
		go func() {
			s.authResult <- s.auth.Run(ctx)
		}()
	}

	s.arbiter.EquipArmorAll()

	if s.cfg.AntiIdle.Jump {
		if err := s.client.SetControlState(mc.ControlJump, true); err != nil {
			log.Debug().Err(err).Msg("jump control rejected")
		}
	}
	if s.cfg.AntiIdle.Sneak {
		if err := s.client.SetControlState(mc.ControlSneak, true); err != nil {
			log.Debug().Err(err).Msg("sneak control rejected")
		}
	}

	if s.cfg.Position.Enabled {
		s.arbiter.SetGuard(mc.Position{X: s.cfg.Position.X, Y: s.cfg.Position.Y, Z: s.cfg.Position.Z})
	}

	if !s.spawned {
		s.spawned = true
		s.sendScheduledMessages()
	}
}

func (s *AgentSession) onAuthResolved(out AuthOutcome) {
	switch out.Result {
	case AuthOK:
		log.Info().Str("session", s.ID).Msg("authenticated")
		s.dispatcher.SetAuthenticated()
	default:
		// The connection stays up; the server may still let us idle. Combat
		// commands queued behind the handshake are never flushed.
		log.Warn().Str("session", s.ID).Str("reason", out.Reason).Msg("authentication did not complete")
	}
}

func (s *AgentSession) sendScheduledMessages() {
	for _, line := range s.cfg.Messages.Lines {
		if err := s.client.Chat(line); err != nil {
			log.Debug().Err(err).Msg("scheduled message rejected")
			continue
		}
		if s.store != nil {
			if err := s.store.AddLine(s.ID, store.DirectionOut, store.ChannelChat, s.client.Username(), line); err != nil {
				log.Debug().Err(err).Msg("transcript write failed")
			}
		}
	}
}

func (s *AgentSession) recordInbound(ch store.Channel, sender, text string) {
	if s.store != nil {
		if err := s.store.AddLine(s.ID, store.DirectionIn, ch, sender, text); err != nil {
			log.Debug().Err(err).Msg("transcript write failed")
		}
	}
	if s.bus != nil {
		s.bus.Publish(Event{
			Type:      EventChatSeen,
			SessionID: s.ID,
			Sender:    sender,
			Message:   text,
			Timestamp: time.Now(),
		})
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
