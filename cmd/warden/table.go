package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type statusRow struct {
	Group   string
	Process string
	State   string
}

// parseStatus reads the daemon's status report: unindented "label: value"
// lines belong to the default group, "name:" opens a named group and
// indented lines belong to the last opened group.
func parseStatus(report string) []statusRow {
	var rows []statusRow
	group := ""
	for _, line := range strings.Split(report, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indented := strings.HasPrefix(line, " ")
		line = strings.TrimSpace(line)

		label, value, ok := strings.Cut(line, ": ")
		if !ok {
			if !indented && strings.HasSuffix(line, ":") {
				group = strings.TrimSuffix(line, ":")
			}
			continue
		}
		if !indented {
			group = ""
		}
		rows = append(rows, statusRow{Group: group, Process: label, State: value})
	}
	return rows
}

func renderStatusTable(rows []statusRow) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Group", "Process", "State"})
	for _, r := range rows {
		group := r.Group
		if group == "" {
			group = "-"
		}
		tw.AppendRow(table.Row{group, r.Process, r.State})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
	})
	return tw.Render()
}
