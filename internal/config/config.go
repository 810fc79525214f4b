// Package config holds the process configuration for the OpenClaw
// Slack command gateway: slack transport credentials, per-channel
// policy, agent bindings, and store locations.
package config

import (
	"fmt"

	"github.com/titanous/json5"
)

// FlexibleStringSlice accepts both ["str"] and [123] in JSON.
// Slack user IDs are strings, but operators frequently paste numeric IDs
// without quotes.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json5.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	var raw []interface{}
	if err := json5.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

// Config is the root configuration for the gateway.
type Config struct {
	Agents   AgentsConfig   `json:"agents"`
	Slack    SlackConfig    `json:"slack"`
	Gateway  GatewayConfig  `json:"gateway"`
	Store    StoreConfig    `json:"store"`
	Bindings []AgentBinding `json:"bindings,omitempty"`
}

// AgentsConfig names the default agent commands route to when no
// binding matches, and locates the external agent runtime.
type AgentsConfig struct {
	Default  string `json:"default,omitempty"`  // default agent id (default "main")
	Endpoint string `json:"endpoint,omitempty"` // agent runtime HTTP endpoint, env OPENCLAW_AGENT_URL
}

// DefaultAgentID returns the configured default agent id.
func (c *Config) DefaultAgentID() string {
	if c.Agents.Default != "" {
		return c.Agents.Default
	}
	return "main"
}

// SlackConfig configures the Slack Socket Mode channel.
type SlackConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token"` // xoxb-..., env OPENCLAW_SLACK_BOT_TOKEN
	AppToken string `json:"app_token"` // xapp-..., env OPENCLAW_SLACK_APP_TOKEN

	// AllowFrom is the static DM allow-list (user IDs or display names).
	AllowFrom FlexibleStringSlice `json:"allow_from,omitempty"`

	DMPolicy    string `json:"dm_policy,omitempty"`    // "pairing" (default), "allowlist", "open", "disabled"
	GroupPolicy string `json:"group_policy,omitempty"` // "" (no enforcement), "open", "allowlist", "disabled"

	// DefaultRequireMention is the fallback mention gate for channels
	// without an explicit require_mention entry. Unset means true.
	DefaultRequireMention *bool `json:"require_mention,omitempty"`

	// Channels maps a channel ID, channel name, or "*" to per-channel
	// settings. A non-empty map doubles as the channel allow-list when
	// group_policy enforcement is on.
	Channels map[string]*ChannelEntry `json:"channels,omitempty"`

	// BlockedChannels rejects commands from the listed channel IDs or
	// names before any other policy runs.
	BlockedChannels FlexibleStringSlice `json:"blocked_channels,omitempty"`
}

// ChannelEntry is the raw per-channel configuration. All fields are
// optional; resolution against a concrete channel happens in
// internal/slack.ResolveChannelConfig.
type ChannelEntry struct {
	RequireMention *bool               `json:"require_mention,omitempty"`
	Allowed        *bool               `json:"allowed,omitempty"`
	Users          FlexibleStringSlice `json:"users,omitempty"`
	SystemPrompt   string              `json:"system_prompt,omitempty"`
	Skills         []string            `json:"skills,omitempty"`
}

// GatewayConfig controls gateway-wide limits.
type GatewayConfig struct {
	RateLimitRPM   int `json:"rate_limit_rpm,omitempty"`   // commands per minute per user (default 20, <0 = disabled)
	MaxPromptChars int `json:"max_prompt_chars,omitempty"` // max slash-command text length (default 4000)
}

// StoreConfig locates the SQLite database backing the pairing and
// allow-list stores.
type StoreConfig struct {
	Path string `json:"path,omitempty"` // default ~/.openclaw/openclaw.db
}

// AgentBinding maps a channel/peer pattern to a specific agent.
type AgentBinding struct {
	AgentID string       `json:"agentId"`
	Match   BindingMatch `json:"match"`
}

// BindingMatch specifies which commands a binding applies to.
type BindingMatch struct {
	Channel   string       `json:"channel"`             // "slack"
	AccountID string       `json:"accountId,omitempty"` // bot account (workspace app) ID
	TeamID    string       `json:"teamId,omitempty"`    // Slack workspace ID
	Peer      *BindingPeer `json:"peer,omitempty"`      // specific DM/group/channel
}

// BindingPeer specifies a specific conversation target.
type BindingPeer struct {
	Kind string `json:"kind"` // "dm", "group", or "channel"
	ID   string `json:"id"`
}
