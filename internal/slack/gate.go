package slack

// GroupPolicy controls access-group enforcement for rooms. An empty
// policy means enforcement is off and per-channel config alone decides.
type GroupPolicy string

const (
	GroupPolicyOpen      GroupPolicy = "open"      // any channel reachable absent per-channel restriction
	GroupPolicyAllowlist GroupPolicy = "allowlist" // only channels present in the channels map
	GroupPolicyDisabled  GroupPolicy = "disabled"  // no room commands at all
)

// GateAllows combines the access-group policy with the per-channel
// allow-list state into a single allow/deny decision.
//
// When no channel allow-list is configured, the policy alone decides:
// a permissive policy admits any channel. When an allow-list is
// configured it tightens the default — the channel must additionally be
// present and allowed in it, regardless of policy. The two levels are
// deliberately independent so an administrator can enable group-based
// access control without also restricting by channel, and vice versa.
func GateAllows(policy GroupPolicy, allowlistConfigured, channelAllowed bool) bool {
	switch policy {
	case GroupPolicyDisabled:
		return false
	case GroupPolicyAllowlist:
		return allowlistConfigured && channelAllowed
	default: // "open" or unset
		if allowlistConfigured {
			return channelAllowed
		}
		return true
	}
}
