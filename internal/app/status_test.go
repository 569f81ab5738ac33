package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bft-labs/warden/internal/ports"
)

func groupWith(name string, lines ...string) *fakeGroup {
	g := &fakeGroup{name: name}
	for i := 0; i+1 < len(lines); i += 2 {
		g.procs = append(g.procs, &fakeProcess{name: lines[i], state: lines[i+1]})
	}
	return g
}

func TestRenderStatus(t *testing.T) {
	groups := []ports.Group{
		groupWith("web", "Q", "stopped"),
		groupWith("", "P", "running"),
		groupWith("api", "R", "up", "S", "down"),
	}

	tests := []struct {
		name   string
		groups []ports.Group
		target string
		want   string
	}{
		{
			name:   "default group first then named groups sorted",
			groups: groups,
			want:   "P: running\n\napi:\n  R: up\n  S: down\n\nweb:\n  Q: stopped\n\n",
		},
		{
			name:   "target names a group",
			groups: groups,
			target: "web",
			want:   "web:\n  Q: stopped\n\n",
		},
		{
			name:   "target names a process in a named group",
			groups: groups,
			target: "S",
			want:   "api:\n  S: down\n\n",
		},
		{
			name:   "target names a default group process",
			groups: groups,
			target: "P",
			want:   "P: running\n\n",
		},
		{
			name:   "unknown target",
			groups: groups,
			target: "nope",
			want:   "",
		},
		{
			name:   "no default group",
			groups: []ports.Group{groupWith("web", "Q", "stopped")},
			want:   "web:\n  Q: stopped\n\n",
		},
		{
			name: "no groups",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderStatus(tt.groups, tt.target))
		})
	}
}
