package app

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bft-labs/warden/internal/ports"
)

// renderStatus writes the default group's lines first, then one block per
// named group sorted by name. A target naming a group limits the report to
// that block; any other target keeps only lines labelled target.
func renderStatus(groups []ports.Group, target string) string {
	var def ports.Group
	named := make([]ports.Group, 0, len(groups))
	for _, g := range groups {
		if g.Name() == "" {
			def = g
			continue
		}
		named = append(named, g)
	}
	slices.SortFunc(named, func(x, y ports.Group) int {
		return strings.Compare(x.Name(), y.Name())
	})

	var b strings.Builder
	keep := func(ports.StatusLine) bool { return true }
	if target != "" {
		for _, g := range named {
			if g.Name() == target {
				writeBlock(&b, g, keep)
				return b.String()
			}
		}
		keep = func(l ports.StatusLine) bool { return l.Label == target }
	}

	if def != nil {
		lines := filterLines(def.Status(), keep)
		if target == "" || len(lines) > 0 {
			for _, l := range lines {
				fmt.Fprintf(&b, "%s: %s\n", l.Label, l.Value)
			}
			b.WriteString("\n")
		}
	}
	for _, g := range named {
		if target != "" && len(filterLines(g.Status(), keep)) == 0 {
			continue
		}
		writeBlock(&b, g, keep)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, g ports.Group, keep func(ports.StatusLine) bool) {
	fmt.Fprintf(b, "%s:\n", g.Name())
	for _, l := range filterLines(g.Status(), keep) {
		fmt.Fprintf(b, "  %s: %s\n", l.Label, l.Value)
	}
	b.WriteString("\n")
}

func filterLines(lines []ports.StatusLine, keep func(ports.StatusLine) bool) []ports.StatusLine {
	out := lines[:0:0]
	for _, l := range lines {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}
