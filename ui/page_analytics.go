package ui

import (
	"strings"

	"github.com/ftahirops/celltop/engine"
)

// renderAnalyticsPage renders the four charts, two per row when the
// terminal is wide enough.
func renderAnalyticsPage(v engine.View, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(" System Analytics"))
	sb.WriteString("\n\n")
	if len(v.Readings) == 0 {
		sb.WriteString(dimStyle.Render(" No cells match the current filter.") + "\n")
		return sb.String()
	}

	twoCol := width >= 100
	colW := width - 2
	if twoCol {
		colW = width/2 - 2
	}

	scatter := scatterPlot(v.Readings, colW, 10)
	hist := tempHistogram(v.Readings)
	capChart := capacityChart(v.Readings, colW)
	power := powerShare(v.Readings, colW)

	if twoCol {
		sb.WriteString(joinColumns(scatter, hist, colW, "  "))
		sb.WriteString("\n")
		sb.WriteString(joinColumns(capChart, power, colW, "  "))
		return sb.String()
	}
	for _, chart := range []string{scatter, hist, capChart, power} {
		sb.WriteString(chart)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
