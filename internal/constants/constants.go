package constants

import "time"

// GuardRadius is the hostile-scan radius (world units) while guarding.
const GuardRadius = 16.0

// PursuitRange is how close the agent tries to stay to a pursued target.
const PursuitRange = 1.0

// EatHealthThreshold triggers the eat interrupt when health drops below it.
const EatHealthThreshold = 10.0

// HarmlessKinds are entity kinds never treated as guard threats.
var HarmlessKinds = map[string]bool{
	"player":      true,
	"item":        true,
	"xp_orb":      true,
	"arrow":       true,
	"villager":    true,
	"animal":      true,
	"armor_stand": true,
}

// AIReplyMaxChars caps AI replies sent back to chat.
const AIReplyMaxChars = 100

// AIReplyEllipsis is appended when truncating long AI replies.
const AIReplyEllipsis = "..."

// AIReplyTruncateTo is the length to keep before appending the ellipsis.
const AIReplyTruncateTo = AIReplyMaxChars - len(AIReplyEllipsis)

// AIRequestTimeout caps a single completion call.
const AIRequestTimeout = 30 * time.Second

// AIThinkingReply is the immediate acknowledgment before a completion call.
const AIThinkingReply = "Let me think..."

// AIApologyReply is sent when the completion collaborator fails.
const AIApologyReply = "Sorry, I can't think right now."

// AIPreamble scopes the completion prompt to the game domain.
const AIPreamble = "You are a helpful in-game assistant on a survival server. " +
	"Answer in one short sentence, plain text, no markup."

// TranscriptContextLines is how many recent chat lines feed the AI prompt.
const TranscriptContextLines = 8

// DefaultAITrigger prefixes messages routed to the AI collaborator.
const DefaultAITrigger = "@gemini"

// DefaultCombatTrigger prefixes privileged combat commands.
const DefaultCombatTrigger = "@fight"

// CombatUsageReply is sent when a combat command is missing its target.
const CombatUsageReply = "Usage: @fight <player>"

// DefaultReconnectDelay is used when the config leaves the delay unset.
const DefaultReconnectDelay = 5 * time.Second

// MinEventBusBufferSize is the minimum buffer per subscriber channel.
const MinEventBusBufferSize = 64
