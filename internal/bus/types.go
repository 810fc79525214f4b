// Package bus provides the in-process message bus decoupling the chat
// transport from the agent runtime: routed commands flow in, reply
// payloads flow back per invocation.
package bus

// RoutedCommand is an authorized command routed to an agent.
type RoutedCommand struct {
	InvocationID string            `json:"invocation_id"`
	AgentID      string            `json:"agent_id"`
	SessionKey   string            `json:"session_key"`
	AccountID    string            `json:"account_id,omitempty"`
	Channel      string            `json:"channel"`
	PeerKind     string            `json:"peer_kind"` // "dm", "group", "channel"
	PeerID       string            `json:"peer_id"`
	UserID       string            `json:"user_id"`
	Prompt       string            `json:"prompt"`
	SystemPrompt string            `json:"system_prompt,omitempty"`
	Skills       []string          `json:"skills,omitempty"`
	Authorized   bool              `json:"authorized"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Reply kinds, mirroring what the agent runtime produces.
const (
	ReplyFinal = "final" // the closing answer; ends the invocation
	ReplyTool  = "tool"  // intermediate tool-result surfacing
	ReplyBlock = "block" // standalone content block
)

// Reply is one reply payload produced for an invocation.
type Reply struct {
	InvocationID string `json:"invocation_id"`
	Kind         string `json:"kind"`
	Text         string `json:"text"`
}
