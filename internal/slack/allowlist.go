package slack

import "strings"

// AllowListMatches reports whether a sender identified by id and
// optional display name is covered by allowList.
//
// IDs compare case-sensitively (Slack user IDs are case-significant);
// names compare lower-cased. A "*" entry matches unconditionally, which
// lets operators express "allow all" without callers special-casing it.
// An empty list matches nothing: "no restriction configured" is decided
// upstream, not here.
func AllowListMatches(allowList []string, id, name string) bool {
	if len(allowList) == 0 {
		return false
	}

	loweredName := strings.ToLower(strings.TrimSpace(name))
	for _, raw := range allowList {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if entry == "*" {
			return true
		}
		if entry == id {
			return true
		}
		// Display-name entries may carry a leading "@".
		if loweredName != "" && strings.ToLower(strings.TrimPrefix(entry, "@")) == loweredName {
			return true
		}
	}
	return false
}

// unionAllowList appends dynamic entries (pairing-approved senders) to
// the statically configured list. The result is a fresh slice.
func unionAllowList(static []string, dynamic []string) []string {
	out := make([]string, 0, len(static)+len(dynamic))
	out = append(out, static...)
	out = append(out, dynamic...)
	return out
}
