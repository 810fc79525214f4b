package slack

import (
	"reflect"
	"testing"
)

func TestAllowListMatches(t *testing.T) {
	tests := []struct {
		name string
		list []string
		id   string
		user string
		want bool
	}{
		{
			name: "empty list matches nothing",
			list: nil,
			id:   "U1",
			user: "alice",
			want: false,
		},
		{
			name: "wildcard matches anyone",
			list: []string{"*"},
			id:   "U1",
			user: "",
			want: true,
		},
		{
			name: "id exact match",
			list: []string{"U123"},
			id:   "U123",
			user: "",
			want: true,
		},
		{
			name: "id is case sensitive",
			list: []string{"u123"},
			id:   "U123",
			user: "",
			want: false,
		},
		{
			name: "name matches case insensitively",
			list: []string{"Alice"},
			id:   "U1",
			user: "alice",
			want: true,
		},
		{
			name: "name entry with at prefix",
			list: []string{"@alice"},
			id:   "U1",
			user: "Alice",
			want: true,
		},
		{
			name: "no match",
			list: []string{"U9", "bob"},
			id:   "U1",
			user: "alice",
			want: false,
		},
		{
			name: "blank entries ignored",
			list: []string{"", "  "},
			id:   "U1",
			user: "alice",
			want: false,
		},
		{
			name: "empty name does not match empty entry residue",
			list: []string{"@"},
			id:   "U1",
			user: "",
			want: false,
		},
		{
			name: "whitespace trimmed from entries",
			list: []string{"  U1  "},
			id:   "U1",
			user: "",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AllowListMatches(tt.list, tt.id, tt.user)
			if got != tt.want {
				t.Errorf("AllowListMatches(%v, %q, %q) = %v, want %v",
					tt.list, tt.id, tt.user, got, tt.want)
			}
		})
	}
}

func TestUnionAllowList(t *testing.T) {
	static := []string{"U1"}
	dynamic := []string{"U2", "U3"}

	got := unionAllowList(static, dynamic)
	want := []string{"U1", "U2", "U3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unionAllowList = %v, want %v", got, want)
	}

	// The inputs must not be mutated through the returned slice.
	got[0] = "changed"
	if static[0] != "U1" {
		t.Error("unionAllowList aliased the static input slice")
	}
}
