package slack

import "testing"

func TestPeerKindForChannelType(t *testing.T) {
	tests := []struct {
		channelType string
		want        string
	}{
		{"im", PeerDM},
		{"mpim", PeerGroup},
		{"channel", PeerChannel},
		{"group", PeerChannel},
		{"", PeerChannel},
	}

	for _, tt := range tests {
		t.Run(tt.channelType, func(t *testing.T) {
			if got := PeerKindForChannelType(tt.channelType); got != tt.want {
				t.Errorf("PeerKindForChannelType(%q) = %q, want %q", tt.channelType, got, tt.want)
			}
		})
	}
}

func TestBuildChannelDescription(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		purpose string
		want    string
	}{
		{
			name:    "both empty",
			topic:   "",
			purpose: "",
			want:    "",
		},
		{
			name:    "topic only",
			topic:   "deploys",
			purpose: "",
			want:    "deploys",
		},
		{
			name:    "purpose only",
			topic:   "",
			purpose: "release coordination",
			want:    "release coordination",
		},
		{
			name:    "distinct parts newline joined",
			topic:   "deploys",
			purpose: "release coordination",
			want:    "deploys\nrelease coordination",
		},
		{
			name:    "identical parts collapse",
			topic:   "deploys",
			purpose: "deploys",
			want:    "deploys",
		},
		{
			name:    "whitespace-equal parts collapse",
			topic:   "  deploys  ",
			purpose: "deploys",
			want:    "deploys",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildChannelDescription(tt.topic, tt.purpose)
			if got != tt.want {
				t.Errorf("BuildChannelDescription(%q, %q) = %q, want %q",
					tt.topic, tt.purpose, got, tt.want)
			}
		})
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	tests := []struct {
		name        string
		description string
		configured  string
		want        string
	}{
		{"both empty", "", "", ""},
		{"description only", "deploys", "", "deploys"},
		{"configured only", "", "be terse", "be terse"},
		{"description first with blank line", "deploys", "be terse", "deploys\n\nbe terse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSystemPrompt(tt.description, tt.configured)
			if got != tt.want {
				t.Errorf("BuildSystemPrompt(%q, %q) = %q, want %q",
					tt.description, tt.configured, got, tt.want)
			}
		})
	}
}
