package slack

import "testing"

func TestGateAllows(t *testing.T) {
	tests := []struct {
		name           string
		policy         GroupPolicy
		configured     bool
		channelAllowed bool
		want           bool
	}{
		{"disabled denies allowed channel", GroupPolicyDisabled, true, true, false},
		{"disabled denies without config", GroupPolicyDisabled, false, false, false},
		{"allowlist requires configured list", GroupPolicyAllowlist, false, true, false},
		{"allowlist admits allowed channel", GroupPolicyAllowlist, true, true, true},
		{"allowlist denies disallowed channel", GroupPolicyAllowlist, true, false, false},
		{"open without config admits anything", GroupPolicyOpen, false, false, true},
		{"open with config defers to channel", GroupPolicyOpen, true, false, false},
		{"open with config admits allowed", GroupPolicyOpen, true, true, true},
		{"unset behaves like open", GroupPolicy(""), false, false, true},
		{"unset with config defers to channel", GroupPolicy(""), true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GateAllows(tt.policy, tt.configured, tt.channelAllowed)
			if got != tt.want {
				t.Errorf("GateAllows(%q, %v, %v) = %v, want %v",
					tt.policy, tt.configured, tt.channelAllowed, got, tt.want)
			}
		})
	}
}
