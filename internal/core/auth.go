package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/soulified/warden/internal/mc"
)

// AuthResult is the terminal result of an authentication run.
type AuthResult string

const (
	AuthOK       AuthResult = "success"
	AuthFail     AuthResult = "failure"
	AuthTimedOut AuthResult = "timeout"
)

// AuthOutcome carries the result plus a failure reason when present.
type AuthOutcome struct {
	Result AuthResult
	Reason string
}

// ackMatcher classifies free-text server lines for one handshake step.
// The server speaks no structured auth protocol; all we have is substring
// matching on fixed phrases. Keeping the classifier behind this type means a
// structured signal could replace it without touching the sequencer.
type ackMatcher struct {
	accept []string
	reject []string
}

type ackClass int

const (
	ackNone ackClass = iota
	ackAccept
	ackReject
)

func (m ackMatcher) classify(line string) ackClass {
	for _, s := range m.reject {
		if strings.Contains(line, s) {
			return ackReject
		}
	}
	for _, s := range m.accept {
		if strings.Contains(line, s) {
			return ackAccept
		}
	}
	return ackNone
}

var (
	registerMatcher = ackMatcher{
		accept: []string{"successfully registered", "already registered"},
		reject: []string{"invalid command"},
	}
	loginMatcher = ackMatcher{
		accept: []string{"successfully logged in"},
		reject: []string{"invalid password", "not registered"},
	}
)

// Authenticator runs the two-step register/login handshake against server
// chat prompts. One run per session; the register step must resolve (success
// or explicit failure) before the login command is ever sent.
type Authenticator struct {
	client      mc.Client
	password    string
	stepTimeout time.Duration // 0 waits forever
	notify      func(AuthState)

	mu     sync.Mutex
	state  AuthState
	active bool
	lines  chan string
}

// NewAuthenticator builds a sequencer for one session. notify may be nil.
func NewAuthenticator(client mc.Client, password string, stepTimeout time.Duration, notify func(AuthState)) *Authenticator {
	return &Authenticator{
		client:      client,
		password:    password,
		stepTimeout: stepTimeout,
		notify:      notify,
		state:       AuthNotStarted,
		lines:       make(chan string, 16),
	}
}

// State returns the current handshake state.
func (a *Authenticator) State() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Offer feeds an inbound chat line to the active step's matcher. Lines
// offered while no step is listening are dropped, which is what keeps stale
// matchers from firing on later unrelated chat.
func (a *Authenticator) Offer(line string) {
	a.mu.Lock()
	active := a.active
	a.mu.Unlock()
	if !active {
		return
	}
	select {
	case a.lines <- line:
	default:
		// A flooded buffer just means the ack arrives via a later line.
	}
}

// Run executes the handshake. It blocks until both steps resolve, a step
// times out, or ctx is cancelled (reported as timeout: the session is going
// away and the outcome no longer matters).
func (a *Authenticator) Run(ctx context.Context) AuthOutcome {
	a.setActive(true)
	defer a.setActive(false)

	a.setState(AuthAwaitingRegisterAck)
	if err := a.client.Chat(fmt.Sprintf("/register %s %s", a.password, a.password)); err != nil {
		log.Warn().Err(err).Msg("register command rejected")
	}
	log.Info().Msg("sent register command")

	out := a.waitForAck(ctx, registerMatcher, "registration rejected")
	if out.Result != AuthOK {
		a.setState(stateFor(out.Result))
		return out
	}
	log.Info().Msg("registration acknowledged")

	a.setState(AuthAwaitingLoginAck)
	if err := a.client.Chat(fmt.Sprintf("/login %s", a.password)); err != nil {
		log.Warn().Err(err).Msg("login command rejected")
	}
	log.Info().Msg("sent login command")

	out = a.waitForAck(ctx, loginMatcher, "login rejected")
	a.setState(stateFor(out.Result))
	if out.Result == AuthOK {
		log.Info().Msg("login acknowledged")
	}
	return out
}

// waitForAck consumes offered lines until the matcher resolves, the optional
// step timeout fires, or ctx is cancelled.
func (a *Authenticator) waitForAck(ctx context.Context, m ackMatcher, rejectReason string) AuthOutcome {
	var timeout <-chan time.Time
	if a.stepTimeout > 0 {
		t := time.NewTimer(a.stepTimeout)
		defer t.Stop()
		timeout = t.C
	}

	for {
		select {
		case line := <-a.lines:
			switch m.classify(line) {
			case ackAccept:
				return AuthOutcome{Result: AuthOK}
			case ackReject:
				return AuthOutcome{Result: AuthFail, Reason: rejectReason + ": " + line}
			}
			// Unmatched lines are routine; servers interleave arbitrary chat.
		case <-timeout:
			return AuthOutcome{Result: AuthTimedOut, Reason: "no acknowledgment before step timeout"}
		case <-ctx.Done():
			return AuthOutcome{Result: AuthTimedOut, Reason: "session ended"}
		}
	}
}

func (a *Authenticator) setActive(active bool) {
	a.mu.Lock()
	a.active = active
	a.mu.Unlock()
}

func (a *Authenticator) setState(s AuthState) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
	if a.notify != nil {
		a.notify(s)
	}
}

func stateFor(r AuthResult) AuthState {
	if r == AuthOK {
		return AuthAuthenticated
	}
	return AuthFailed
}
