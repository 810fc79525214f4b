// Package slack implements the slash-command authorization and routing
// pipeline for the Slack channel: per-channel configuration, DM and
// access-group policies, the pairing flow for unknown DM senders, and
// dispatch of authorized prompts to the agent runtime.
package slack

import (
	"github.com/tanguofu/openclaw/internal/config"
)

// ResolvedChannelConfig is the effective per-channel settings computed
// for one concrete channel. It is derived fresh on every command and
// never cached: channel config may change between invocations.
type ResolvedChannelConfig struct {
	Allowed        bool
	RequireMention bool
	Users          []string
	SystemPrompt   string
	Skills         []string
}

// ResolveChannelConfig resolves the channels map against a concrete
// channel. Lookup order: exact channel ID, exact channel name, the "*"
// wildcard entry, then no entry at all.
//
// requireMention precedence: the matched entry's explicit value, then
// defaultRequireMention, then true. Mentions are required by default so
// the bot never replies unsolicited in shared rooms.
//
// allowed defaults to true: a channel is open unless the matched entry
// explicitly disallows it.
func ResolveChannelConfig(channelID, channelName string, channels map[string]*config.ChannelEntry, defaultRequireMention *bool) ResolvedChannelConfig {
	entry := lookupChannelEntry(channelID, channelName, channels)

	resolved := ResolvedChannelConfig{
		Allowed:        true,
		RequireMention: resolveRequireMention(entry, defaultRequireMention),
	}
	if entry == nil {
		return resolved
	}

	if entry.Allowed != nil {
		resolved.Allowed = *entry.Allowed
	}
	resolved.Users = entry.Users
	resolved.SystemPrompt = entry.SystemPrompt
	resolved.Skills = entry.Skills
	return resolved
}

// lookupChannelEntry walks the lookup keys most-specific-first and
// returns the first entry present.
func lookupChannelEntry(channelID, channelName string, channels map[string]*config.ChannelEntry) *config.ChannelEntry {
	if len(channels) == 0 {
		return nil
	}
	for _, key := range []string{channelID, channelName, "*"} {
		if key == "" {
			continue
		}
		if entry, ok := channels[key]; ok && entry != nil {
			return entry
		}
	}
	return nil
}

// resolveRequireMention evaluates the mention-gate fallback chain
// top-to-bottom: each layer either yields a definitive value or defers
// to the next.
func resolveRequireMention(entry *config.ChannelEntry, defaultRequireMention *bool) bool {
	layers := []*bool{nil, defaultRequireMention}
	if entry != nil {
		layers[0] = entry.RequireMention
	}
	for _, v := range layers {
		if v != nil {
			return *v
		}
	}
	return true
}
