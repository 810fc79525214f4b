package slack

import "strings"

// PeerKindForChannelType maps a Slack conversation type to the routed
// peer kind: DMs are "dm", multi-party DMs are "group", everything else
// (public and private rooms) is "channel".
func PeerKindForChannelType(channelType string) string {
	switch channelType {
	case "im":
		return PeerDM
	case "mpim":
		return PeerGroup
	default:
		return PeerChannel
	}
}

// BuildChannelDescription assembles a room description from its topic
// and purpose. The two frequently hold identical text, so duplicates
// collapse to a single line; non-empty parts are newline-joined.
func BuildChannelDescription(topic, purpose string) string {
	topic = strings.TrimSpace(topic)
	purpose = strings.TrimSpace(purpose)

	var parts []string
	for _, p := range []string{topic, purpose} {
		if p == "" {
			continue
		}
		dup := false
		for _, seen := range parts {
			if seen == p {
				dup = true
				break
			}
		}
		if !dup {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

// BuildSystemPrompt combines the channel description with the
// configured per-channel system prompt, description first, separated by
// a blank line.
func BuildSystemPrompt(channelDescription, configured string) string {
	channelDescription = strings.TrimSpace(channelDescription)
	configured = strings.TrimSpace(configured)

	switch {
	case channelDescription == "":
		return configured
	case configured == "":
		return channelDescription
	default:
		return channelDescription + "\n\n" + configured
	}
}
