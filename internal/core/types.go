// Package core implements the agent control loop: the authentication
// sequencer, equipment selector, combat/movement arbiter, command dispatcher
// and session supervisor that together drive one synthetic player.
package core

import (
	"time"

	"github.com/soulified/warden/internal/mc"
)

// IntentMode is the agent's top-level behavioral mode.
type IntentMode string

const (
	IntentIdle     IntentMode = "idle"
	IntentGuarding IntentMode = "guarding"
	IntentPursuing IntentMode = "pursuing"
)

// Intent is the agent's current behavioral mode plus its parameters.
// Exactly one mode is active at a time and only the Arbiter writes it.
// The guard anchor persists across transitions until explicitly cleared;
// pursuit is a temporary override of guarding.
type Intent struct {
	Mode     IntentMode
	Anchor   *mc.Position // retained while Pursuing
	TargetID int32        // entity ID, only meaningful while Pursuing
}

// AuthState tracks the chat-based register/login handshake.
type AuthState string

const (
	AuthNotStarted          AuthState = "not_started"
	AuthAwaitingRegisterAck AuthState = "awaiting_register_ack"
	AuthAwaitingLoginAck    AuthState = "awaiting_login_ack"
	AuthAuthenticated       AuthState = "authenticated"
	AuthFailed              AuthState = "failed"
)

// EventType identifies the type of bus event.
type EventType string

const (
	EventSessionStarted  EventType = "session_started"
	EventSessionEnded    EventType = "session_ended"
	EventAuthChanged     EventType = "auth_changed"
	EventIntentChanged   EventType = "intent_changed"
	EventChatSeen        EventType = "chat_seen"
	EventChatSent        EventType = "chat_sent"
	EventAIReply         EventType = "ai_reply"
	EventActionRejected  EventType = "action_rejected"
	EventReconnectWait   EventType = "reconnect_wait"
	EventTransportError  EventType = "transport_error"
)

// Event is an observability record published on the bus for the TUI, the
// status endpoint and tests. Core components never consume these; cross
// component requests go through direct calls, not the bus.
type Event struct {
	Type      EventType
	SessionID string
	Sender    string
	Message   string
	Timestamp time.Time
}
