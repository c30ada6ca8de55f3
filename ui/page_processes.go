package ui

import (
	"fmt"
	"strings"

	"github.com/ftahirops/celltop/engine"
	"github.com/ftahirops/celltop/model"
)

// renderProcessesPage describes each charging process alongside its filter
// state and the cells currently in it.
func renderProcessesPage(v engine.View, filter engine.ProcessFilter, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(" Charging Process Types"))
	sb.WriteString("\n\n")

	counts := make(map[model.Process]int)
	if v.Snapshot != nil {
		for _, c := range v.Snapshot.Cells {
			counts[c.Process]++
		}
	}
	shares, _ := powerByProcess(v.Readings)
	power := make(map[model.Process]float64, len(shares))
	for _, s := range shares {
		power[s.Process] = s.PowerW
	}

	innerW := pageInnerW(width)
	var lines []string
	for i, p := range model.AllProcesses {
		mark := dimStyle.Render("[ ]")
		if filter.Contains(p) {
			mark = okStyle.Render("[x]")
		}
		head := fmt.Sprintf("%s %s %s", mark, headerStyle.Render(fmt.Sprintf("%d", i+1)), valueStyle.Bold(true).Render(padRight(string(p), 8)))
		stats := dimStyle.Render(fmt.Sprintf("%d cell(s)  %.1f W shown", counts[p], power[p]))
		lines = append(lines, head+"  "+stats)
		lines = append(lines, "      "+truncate(p.Description(), innerW-6))
		lines = append(lines, "")
	}
	lines = append(lines, helpStyle.Render("1-5 toggle  0 select all  x clear  Ctrl+D save as default"))
	sb.WriteString(boxSection("PROCESS FILTER: "+filter.String(), lines, innerW))
	return sb.String()
}
