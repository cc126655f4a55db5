package main

import (
	"reflect"
	"testing"
)

func TestRewriteLevelShortcutArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"lightline"},
			want: []string{"lightline"},
		},
		{
			name: "level shortcut first token",
			in:   []string{"lightline", "@intro"},
			want: []string{"lightline", "tui", "intro"},
		},
		{
			name: "level shortcut after value flag",
			in:   []string{"lightline", "--dir", "./tmp-ws", "@intro"},
			want: []string{"lightline", "--dir", "./tmp-ws", "tui", "intro"},
		},
		{
			name: "level shortcut after equals flag",
			in:   []string{"lightline", "--dir=./tmp-ws", "@intro"},
			want: []string{"lightline", "--dir=./tmp-ws", "tui", "intro"},
		},
		{
			name: "level shortcut after bool flag",
			in:   []string{"lightline", "-v", "@intro"},
			want: []string{"lightline", "-v", "tui", "intro"},
		},
		{
			name: "level shortcut after double dash",
			in:   []string{"lightline", "--", "@intro"},
			want: []string{"lightline", "--", "tui", "intro"},
		},
		{
			name: "bare at sign not rewritten",
			in:   []string{"lightline", "@"},
			want: []string{"lightline", "@"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"lightline", "lights", "show", "@intro"},
			want: []string{"lightline", "lights", "show", "@intro"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteLevelShortcutArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteLevelShortcutArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
