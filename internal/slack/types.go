package slack

import "context"

// Conversation peer kinds as carried on the routed context.
const (
	PeerDM      = "dm"
	PeerGroup   = "group"
	PeerChannel = "channel"
)

// ChannelRef identifies a conversation for admission checks.
type ChannelRef struct {
	ID   string
	Name string
	Type string // "channel", "group", "im", "mpim"
}

// ChannelInfo is the subset of conversation metadata the pipeline
// consumes from the platform.
type ChannelInfo struct {
	Name    string
	Type    string // "channel", "group", "im", "mpim"
	Topic   string
	Purpose string
}

// UserInfo is the subset of user metadata the pipeline consumes.
type UserInfo struct {
	Name string
}

// Directory resolves channel and user metadata from the chat platform.
// Implementations may cache; the pipeline treats lookups as best-effort
// and tolerates nil results.
type Directory interface {
	ChannelInfo(ctx context.Context, channelID string) (*ChannelInfo, error)
	UserInfo(ctx context.Context, userID string) (*UserInfo, error)
}

// ChannelPredicate is the collaborator-provided generic admission check
// that runs before any type-specific policy.
type ChannelPredicate func(ref ChannelRef) bool

// Command carries the fields of an inbound slash-command invocation
// that the pipeline consumes.
type Command struct {
	Name        string // slash command, e.g. "/openclaw"
	Text        string // raw prompt text
	ChannelID   string
	ChannelName string
	UserID      string
	UserName    string
	TeamID      string
	ResponseURL string
}

// CommandRequest is the pipeline's single entry-point payload.
// Acknowledge confirms receipt of the platform event and must be called
// before any time-consuming work; Respond sends an ephemeral text
// message visible only to the invoking user.
type CommandRequest struct {
	Command     Command
	Acknowledge func() error
	Respond     func(text string) error
}

// RouteContext is the outbound context payload handed to the dispatch
// collaborator for one authorized command.
type RouteContext struct {
	AgentID    string
	SessionKey string
	AccountID  string

	Channel  ChannelRef
	PeerKind string // PeerDM, PeerGroup, or PeerChannel
	UserID   string

	Prompt             string
	ChannelDescription string
	SystemPrompt       string

	// CommandAuthorized is set when DM policy is "open" or the sender
	// matched an allow-list. Consumed downstream by the dispatch layer.
	CommandAuthorized bool
}

// ReplyCounts tallies produced replies per kind.
type ReplyCounts struct {
	Final int
	Tool  int
	Block int
}

// Total returns the number of replies across all kinds.
func (c ReplyCounts) Total() int { return c.Final + c.Tool + c.Block }

// ReplyPayload is one reply produced by the dispatch layer.
type ReplyPayload struct {
	Kind string // "final", "tool", "block"
	Text string
}

// DispatchOptions carries per-invocation dispatch settings.
type DispatchOptions struct {
	// SkillFilter restricts which skills the agent may use, drawn from
	// the resolved channel config. Empty means no restriction.
	SkillFilter []string

	// OnError is invoked for failures inside the dispatch layer.
	OnError func(err error, scope string)

	// Deliver is invoked once per reply produced.
	Deliver func(payload ReplyPayload) error
}

// Dispatcher hands an authorized, routed command to the reply-dispatch
// layer and reports how many replies were produced.
type Dispatcher interface {
	Dispatch(ctx context.Context, routed *RouteContext, opts DispatchOptions) (ReplyCounts, error)
}
