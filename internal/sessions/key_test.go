package sessions

import "testing"

func TestBuildSessionKey(t *testing.T) {
	got := BuildSessionKey("main", "slack", "dm", "U024BE7LH")
	want := "agent:main:slack:dm:U024BE7LH"
	if got != want {
		t.Errorf("BuildSessionKey = %q, want %q", got, want)
	}
}

func TestBuildCommandSessionKey(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    string
	}{
		{
			name:    "plain name",
			command: "openclaw",
			want:    "agent:main:slack:command:openclaw:U1",
		},
		{
			name:    "leading slash stripped",
			command: "/openclaw",
			want:    "agent:main:slack:command:openclaw:U1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildCommandSessionKey("main", "slack", tt.command, "U1")
			if got != tt.want {
				t.Errorf("BuildCommandSessionKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSessionKey(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		wantAgent string
		wantRest  string
	}{
		{
			name:      "dm key",
			key:       "agent:main:slack:dm:U1",
			wantAgent: "main",
			wantRest:  "slack:dm:U1",
		},
		{
			name:      "command key",
			key:       "agent:ops:slack:command:openclaw:U1",
			wantAgent: "ops",
			wantRest:  "slack:command:openclaw:U1",
		},
		{
			name:      "wrong prefix",
			key:       "session:main:slack:dm:U1",
			wantAgent: "",
			wantRest:  "",
		},
		{
			name:      "too few parts",
			key:       "agent:main",
			wantAgent: "",
			wantRest:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent, rest := ParseSessionKey(tt.key)
			if agent != tt.wantAgent || rest != tt.wantRest {
				t.Errorf("ParseSessionKey(%q) = (%q, %q), want (%q, %q)",
					tt.key, agent, rest, tt.wantAgent, tt.wantRest)
			}
		})
	}
}

func TestIsCommandSession(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"agent:main:slack:command:openclaw:U1", true},
		{"agent:main:slack:dm:U1", false},
		{"agent:main:slack:channel:C1", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsCommandSession(tt.key); got != tt.want {
				t.Errorf("IsCommandSession(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
