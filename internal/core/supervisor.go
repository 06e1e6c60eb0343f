package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/soulified/warden/internal/config"
	"github.com/soulified/warden/internal/constants"
	"github.com/soulified/warden/internal/mc"
	"github.com/soulified/warden/internal/provider"
	"github.com/soulified/warden/internal/store"
)

// ReconnectPolicy decides how long to wait before the next connection
// attempt. It is a strategy seam: the fixed delay is the only production
// policy, but a backoff could be swapped in without touching the supervisor.
type ReconnectPolicy interface {
	NextDelay(attempt int) time.Duration
}

// FixedDelay waits the same duration between every attempt.
type FixedDelay time.Duration

// NextDelay implements ReconnectPolicy.
func (d FixedDelay) NextDelay(int) time.Duration { return time.Duration(d) }

// Dialer establishes one client connection.
type Dialer func(ctx context.Context) (mc.Client, error)

// SupervisorState is the supervisor's coarse lifecycle phase.
type SupervisorState string

const (
	StateConnecting SupervisorState = "connecting"
	StateConnected  SupervisorState = "connected"
	StateWaiting    SupervisorState = "waiting"
	StateStopped    SupervisorState = "stopped"
)

// Snapshot is a point-in-time view of the supervisor for status reporting.
type Snapshot struct {
	State      SupervisorState
	SessionID  string
	Intent     Intent
	Auth       AuthState
	Reconnects int
	StartedAt  time.Time
}

// Supervisor keeps the agent connected: it dials, runs a session to
// completion, then reconnects after the policy's delay, forever, until its
// context is cancelled. Both dial failures and session ends trigger the same
// delay-then-retry path.
type Supervisor struct {
	dialer Dialer
	cfg    *config.Config
	bus    *EventBus
	store  *store.Store
	ai     provider.Provider
	policy ReconnectPolicy

	mu         sync.Mutex
	state      SupervisorState
	session    *AgentSession
	reconnects int
	startedAt  time.Time
}

// NewSupervisor builds a supervisor. policy may be nil, defaulting to the
// configured fixed delay.
func NewSupervisor(dialer Dialer, cfg *config.Config, bus *EventBus, st *store.Store, ai provider.Provider, policy ReconnectPolicy) *Supervisor {
	if policy == nil {
		delay := cfg.Reconnect.Delay()
		if delay <= 0 {
			delay = constants.DefaultReconnectDelay
		}
		policy = FixedDelay(delay)
	}
	return &Supervisor{
		dialer: dialer,
		cfg:    cfg,
		bus:    bus,
		store:  st,
		ai:     ai,
		policy: policy,
		state:  StateStopped,
	}
}

// Snapshot returns the current lifecycle view.
func (sv *Supervisor) Snapshot() Snapshot {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	snap := Snapshot{
		State:      sv.state,
		Reconnects: sv.reconnects,
		StartedAt:  sv.startedAt,
	}
	if sv.session != nil {
		snap.SessionID = sv.session.ID
		snap.Intent = sv.session.Intent()
		snap.Auth = sv.session.AuthState()
	}
	return snap
}

// Run connects and reconnects until ctx is cancelled. It never gives up on
// its own: every session end, whatever the reason, leads to another attempt.
func (sv *Supervisor) Run(ctx context.Context) {
	sv.mu.Lock()
	sv.startedAt = time.Now()
	sv.mu.Unlock()

	attempt := 0
	for {
		if ctx.Err() != nil {
			sv.setState(StateStopped, nil)
			return
		}

		sv.setState(StateConnecting, nil)
		client, err := sv.dialer(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("connect failed")
			if sv.bus != nil {
				sv.bus.Publish(Event{Type: EventTransportError, Message: err.Error(), Timestamp: time.Now()})
			}
		} else {
			session := NewAgentSession(client, sv.cfg, sv.bus, sv.store, sv.ai)
			sv.setState(StateConnected, session)
			reason := session.Run(ctx)
			sv.setState(StateWaiting, nil)
			log.Info().Str("reason", reason).Msg("connection ended")
		}

		if ctx.Err() != nil || !sv.cfg.Reconnect.Enabled {
			sv.setState(StateStopped, nil)
			return
		}

		attempt++
		sv.mu.Lock()
		sv.reconnects = attempt
		sv.mu.Unlock()

		delay := sv.policy.NextDelay(attempt)
		log.Info().Dur("delay", delay).Int("attempt", attempt).Msg("reconnecting")
		if sv.bus != nil {
			sv.bus.Publish(Event{Type: EventReconnectWait, Message: delay.String(), Timestamp: time.Now()})
		}
		if !sleepCtx(ctx, delay) {
			sv.setState(StateStopped, nil)
			return
		}
	}
}

func (sv *Supervisor) setState(state SupervisorState, session *AgentSession) {
	sv.mu.Lock()
	sv.state = state
	sv.session = session
	sv.mu.Unlock()
}

// sleepCtx waits for d, returning false if ctx fired first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
