//go:build !integration

package cli

import (
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
)

func TestRelevantWatchEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{
			name:  "lua write",
			event: fsnotify.Event{Name: "/proj/src/util.lua", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "lua create",
			event: fsnotify.Event{Name: "/proj/src/new.lua", Op: fsnotify.Create},
			want:  true,
		},
		{
			name:  "lua remove",
			event: fsnotify.Event{Name: "/proj/src/gone.lua", Op: fsnotify.Remove},
			want:  true,
		},
		{
			name:  "config write",
			event: fsnotify.Event{Name: "/proj/moonpack.json", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "local config write",
			event: fsnotify.Event{Name: "/proj/moonpack.local.json", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "unrelated extension",
			event: fsnotify.Event{Name: "/proj/notes.txt", Op: fsnotify.Write},
			want:  false,
		},
		{
			name:  "chmod only",
			event: fsnotify.Event{Name: "/proj/src/util.lua", Op: fsnotify.Chmod},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevantWatchEvent(tt.event))
		})
	}
}
