package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/soulified/warden/internal/constants"
	"github.com/soulified/warden/internal/mc"
	"github.com/soulified/warden/internal/provider"
	"github.com/soulified/warden/internal/store"
)

// origin records which chat surface a message arrived on; replies go back the
// same way.
type origin int

const (
	originChat origin = iota
	originWhisper
)

type pendingCommand struct {
	sender string
	text   string
	from   origin
}

// Dispatcher parses inbound chat and whispers, authorizes privileged
// commands, invokes the AI collaborator for knowledge queries, and requests
// intent transitions from the arbiter. It never mutates the intent itself.
type Dispatcher struct {
	client    mc.Client
	arbiter   *Arbiter
	ai        provider.Provider // nil disables AI replies
	store     *store.Store      // nil disables transcript context
	bus       *EventBus
	sessionID string

	aiTrigger     string
	combatTrigger string
	allowed       map[string]bool

	mu            sync.Mutex
	authenticated bool
	queued        []pendingCommand

	// aiWG tracks in-flight completion calls so teardown and tests can wait
	// for replies instead of racing them.
	aiWG sync.WaitGroup
}

// DispatcherParams bundles construction inputs.
type DispatcherParams struct {
	Client        mc.Client
	Arbiter       *Arbiter
	AI            provider.Provider
	Store         *store.Store
	Bus           *EventBus
	SessionID     string
	AITrigger     string
	CombatTrigger string
	Allowed       []string
	// Authenticated starts true when no chat-auth handshake is configured.
	Authenticated bool
}

// NewDispatcher creates a dispatcher for one session.
func NewDispatcher(p DispatcherParams) *Dispatcher {
	allowed := make(map[string]bool, len(p.Allowed))
	for _, name := range p.Allowed {
		allowed[name] = true
	}
	aiTrigger := p.AITrigger
	if aiTrigger == "" {
		aiTrigger = constants.DefaultAITrigger
	}
	combatTrigger := p.CombatTrigger
	if combatTrigger == "" {
		combatTrigger = constants.DefaultCombatTrigger
	}
	return &Dispatcher{
		client:        p.Client,
		arbiter:       p.Arbiter,
		ai:            p.AI,
		store:         p.Store,
		bus:           p.Bus,
		sessionID:     p.SessionID,
		aiTrigger:     aiTrigger,
		combatTrigger: combatTrigger,
		allowed:       allowed,
		authenticated: p.Authenticated,
	}
}

// OnChat handles a public chat message.
func (d *Dispatcher) OnChat(sender, text string) {
	d.handle(sender, text, originChat)
}

// OnWhisper handles a private message.
func (d *Dispatcher) OnWhisper(sender, text string) {
	d.handle(sender, text, originWhisper)
}

// SetAuthenticated marks the session authenticated and flushes combat
// commands queued while the handshake was still running.
func (d *Dispatcher) SetAuthenticated() {
	d.mu.Lock()
	d.authenticated = true
	queued := d.queued
	d.queued = nil
	d.mu.Unlock()

	for _, cmd := range queued {
		d.handleCombat(cmd.sender, cmd.text, cmd.from)
	}
}

// Flush waits for in-flight AI replies to finish.
func (d *Dispatcher) Flush() {
	d.aiWG.Wait()
}

func (d *Dispatcher) handle(sender, text string, from origin) {
	// The agent's own lines echo back through chat; reacting to them would
	// loop forever.
	if sender == d.client.Username() {
		return
	}

	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, strings.ToLower(d.aiTrigger)):
		d.handleAI(sender, strings.TrimSpace(text[len(d.aiTrigger):]), from)
	case strings.HasPrefix(lower, strings.ToLower(d.combatTrigger)):
		d.dispatchCombat(sender, text, from)
	default:
		// Unmatched messages are ignored silently.
	}
}

func (d *Dispatcher) handleAI(sender, question string, from origin) {
	if d.ai == nil {
		return
	}

	d.reply(sender, from, constants.AIThinkingReply)

	prompt := d.buildPrompt(sender, question)

	d.aiWG.Add(1)
	go func() {
		defer d.aiWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), constants.AIRequestTimeout)
		defer cancel()

		answer, err := d.ai.Complete(ctx, prompt)
		if err != nil {
			log.Warn().Err(err).Str("provider", d.ai.Name()).Msg("completion failed")
			answer = constants.AIApologyReply
		}

		reply := fmt.Sprintf("@%s %s", sender, truncateReply(answer))
		d.reply(sender, from, reply)

		if d.bus != nil {
			d.bus.Publish(Event{
				Type:      EventAIReply,
				SessionID: d.sessionID,
				Sender:    sender,
				Message:   reply,
				Timestamp: time.Now(),
			})
		}
	}()
}

// buildPrompt scopes the question to the game domain and folds in recent
// transcript lines so the model sees local context.
func (d *Dispatcher) buildPrompt(sender, question string) string {
	var b strings.Builder
	b.WriteString(constants.AIPreamble)
	b.WriteString("\n")

	if d.store != nil {
		lines, err := d.store.RecentLines(d.sessionID, constants.TranscriptContextLines)
		if err != nil {
			log.Debug().Err(err).Msg("transcript context unavailable")
		} else if len(lines) > 0 {
			b.WriteString("Recent chat:\n")
			for _, l := range lines {
				fmt.Fprintf(&b, "<%s> %s\n", l.Sender, l.Content)
			}
		}
	}

	fmt.Fprintf(&b, "Player %s asked: %q", sender, question)
	return b.String()
}

func (d *Dispatcher) dispatchCombat(sender, text string, from origin) {
	if !d.allowed[sender] {
		log.Debug().Str("sender", sender).Msg("combat command from unauthorized sender ignored")
		return
	}

	d.mu.Lock()
	if !d.authenticated {
		// Queue until the auth handshake resolves rather than racing it.
		d.queued = append(d.queued, pendingCommand{sender: sender, text: text, from: from})
		d.mu.Unlock()
		log.Debug().Str("sender", sender).Msg("combat command queued until authenticated")
		return
	}
	d.mu.Unlock()

	d.handleCombat(sender, text, from)
}

func (d *Dispatcher) handleCombat(sender, text string, from origin) {
	args := strings.Fields(strings.TrimSpace(text[len(d.combatTrigger):]))
	if len(args) == 0 {
		d.reply(sender, from, constants.CombatUsageReply)
		return
	}

	targetName := args[0]
	target, ok := d.client.PlayerByName(targetName)
	if !ok {
		d.reply(sender, from, fmt.Sprintf("Can't find %s nearby.", targetName))
		return
	}

	d.reply(sender, from, fmt.Sprintf("Going after %s.", targetName))
	d.arbiter.RequestPursue(target.ID)
}

// reply sends text back on the surface the triggering message arrived on.
// Send failures are routine near disconnects and are only logged.
func (d *Dispatcher) reply(sender string, from origin, text string) {
	var err error
	if from == originWhisper {
		err = d.client.Whisper(sender, text)
	} else {
		err = d.client.Chat(text)
	}
	if err != nil {
		log.Debug().Err(err).Msg("reply rejected")
		return
	}

	if d.store != nil {
		ch := store.ChannelChat
		if from == originWhisper {
			ch = store.ChannelWhisper
		}
		if err := d.store.AddLine(d.sessionID, store.DirectionOut, ch, d.client.Username(), text); err != nil {
			log.Debug().Err(err).Msg("transcript write failed")
		}
	}

	if d.bus != nil {
		d.bus.Publish(Event{
			Type:      EventChatSent,
			SessionID: d.sessionID,
			Sender:    d.client.Username(),
			Message:   text,
			Timestamp: time.Now(),
		})
	}
}

// truncateReply caps an AI reply at the configured maximum, marking the cut
// with an ellipsis. The cap counts characters, not bytes: the cut must never
// split a rune and ship invalid UTF-8 to chat.
func truncateReply(s string) string {
	if utf8.RuneCountInString(s) <= constants.AIReplyMaxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:constants.AIReplyTruncateTo]) + constants.AIReplyEllipsis
}
