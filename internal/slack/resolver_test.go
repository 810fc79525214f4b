package slack

import (
	"reflect"
	"testing"

	"github.com/tanguofu/openclaw/internal/config"
)

func boolPtr(v bool) *bool { return &v }

func TestResolveChannelConfig_LookupOrder(t *testing.T) {
	channels := map[string]*config.ChannelEntry{
		"C123":    {SystemPrompt: "by id"},
		"general": {SystemPrompt: "by name"},
		"*":       {SystemPrompt: "wildcard"},
	}

	tests := []struct {
		name        string
		channelID   string
		channelName string
		wantPrompt  string
	}{
		{
			name:        "id beats name and wildcard",
			channelID:   "C123",
			channelName: "general",
			wantPrompt:  "by id",
		},
		{
			name:        "name beats wildcard",
			channelID:   "C999",
			channelName: "general",
			wantPrompt:  "by name",
		},
		{
			name:        "wildcard when nothing else matches",
			channelID:   "C999",
			channelName: "random",
			wantPrompt:  "wildcard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveChannelConfig(tt.channelID, tt.channelName, channels, nil)
			if got.SystemPrompt != tt.wantPrompt {
				t.Errorf("SystemPrompt = %q, want %q", got.SystemPrompt, tt.wantPrompt)
			}
		})
	}
}

func TestResolveChannelConfig_Defaults(t *testing.T) {
	tests := []struct {
		name     string
		channels map[string]*config.ChannelEntry
	}{
		{name: "nil map", channels: nil},
		{name: "no matching entry", channels: map[string]*config.ChannelEntry{"C777": {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveChannelConfig("C123", "general", tt.channels, nil)
			if !got.Allowed {
				t.Error("Allowed = false, want true by default")
			}
			if !got.RequireMention {
				t.Error("RequireMention = false, want true by default")
			}
			if len(got.Users) != 0 || got.SystemPrompt != "" || len(got.Skills) != 0 {
				t.Errorf("unexpected non-zero fields: %+v", got)
			}
		})
	}
}

func TestResolveChannelConfig_RequireMentionPrecedence(t *testing.T) {
	tests := []struct {
		name         string
		entry        *config.ChannelEntry
		defaultValue *bool
		want         bool
	}{
		{
			name:         "entry overrides default",
			entry:        &config.ChannelEntry{RequireMention: boolPtr(false)},
			defaultValue: boolPtr(true),
			want:         false,
		},
		{
			name:         "default applies when entry silent",
			entry:        &config.ChannelEntry{},
			defaultValue: boolPtr(false),
			want:         false,
		},
		{
			name:         "true when nothing is set",
			entry:        &config.ChannelEntry{},
			defaultValue: nil,
			want:         true,
		},
		{
			name:         "entry true wins over default false",
			entry:        &config.ChannelEntry{RequireMention: boolPtr(true)},
			defaultValue: boolPtr(false),
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channels := map[string]*config.ChannelEntry{"C1": tt.entry}
			got := ResolveChannelConfig("C1", "", channels, tt.defaultValue)
			if got.RequireMention != tt.want {
				t.Errorf("RequireMention = %v, want %v", got.RequireMention, tt.want)
			}
		})
	}
}

func TestResolveChannelConfig_EntryFields(t *testing.T) {
	channels := map[string]*config.ChannelEntry{
		"C1": {
			Allowed:      boolPtr(false),
			Users:        []string{"U1", "alice"},
			SystemPrompt: "be terse",
			Skills:       []string{"search"},
		},
	}

	got := ResolveChannelConfig("C1", "", channels, nil)
	if got.Allowed {
		t.Error("Allowed = true, want explicit false from entry")
	}
	if !reflect.DeepEqual(got.Users, []string{"U1", "alice"}) {
		t.Errorf("Users = %v", got.Users)
	}
	if got.SystemPrompt != "be terse" {
		t.Errorf("SystemPrompt = %q", got.SystemPrompt)
	}
	if !reflect.DeepEqual(got.Skills, []string{"search"}) {
		t.Errorf("Skills = %v", got.Skills)
	}
}

func TestResolveChannelConfig_EmptyKeysSkipped(t *testing.T) {
	// An empty channel name must not accidentally hit a map entry keyed
	// by the empty string.
	channels := map[string]*config.ChannelEntry{
		"": {SystemPrompt: "bogus"},
	}
	got := ResolveChannelConfig("C1", "", channels, nil)
	if got.SystemPrompt != "" {
		t.Errorf("SystemPrompt = %q, want empty", got.SystemPrompt)
	}
}
