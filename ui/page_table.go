package ui

import (
	"fmt"
	"strings"

	"github.com/ftahirops/celltop/engine"
	"github.com/ftahirops/celltop/model"
)

var tableColumns = []struct {
	title string
	width int
}{
	{"CELL", 9}, {"STATUS", 10}, {"PROCESS", 9}, {"VOLT", 7}, {"AMP", 6},
	{"WATT", 7}, {"TEMP", 6}, {"CAP", 6}, {"HEALTH", 10}, {"UPDATED", 9},
}

func tableRow(r model.CellReading) []string {
	return []string{
		r.CellID,
		string(r.Status),
		string(r.Process),
		fmt.Sprintf("%.2f", r.VoltageV),
		fmt.Sprintf("%.1f", r.CurrentA),
		fmt.Sprintf("%.1f", r.PowerW),
		fmt.Sprintf("%d°C", r.TemperatureC),
		fmt.Sprintf("%d%%", r.CapacityPercent),
		string(r.Health),
		r.LastUpdate.Format("15:04:05"),
	}
}

// renderTablePage renders the detailed cell table with rows highlighted by
// status.
func renderTablePage(v engine.View, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(" Detailed Cell Data"))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d of %d cells", len(v.Readings), v.Total)))
	sb.WriteString("\n\n")

	var hdr strings.Builder
	for _, c := range tableColumns {
		hdr.WriteString(padRight(c.title, c.width))
	}
	sb.WriteString(" " + headerStyle.Render(hdr.String()) + "\n")

	if len(v.Readings) == 0 {
		sb.WriteString(dimStyle.Render(" No cells match the current filter.") + "\n")
		return sb.String()
	}
	for _, r := range v.Readings {
		var line strings.Builder
		for i, cell := range tableRow(r) {
			line.WriteString(padRight(cell, tableColumns[i].width))
		}
		sb.WriteString(" " + statusRowStyle(r.Status).Render(line.String()) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(boxSection("ALERT DETAIL", alertDetailLines(v), pageInnerW(width)))
	return sb.String()
}

// alertDetailLines lists the affected readings under each alert.
func alertDetailLines(v engine.View) []string {
	if v.AllNormal {
		return []string{okStyle.Render(model.AllNormalBanner)}
	}
	var lines []string
	add := func(title string, sev string, cells []model.CellReading, detail func(model.CellReading) string) {
		if len(cells) == 0 {
			return
		}
		lines = append(lines, severityColor(sev).Render(title))
		for _, c := range cells {
			lines = append(lines, "  "+padRight(c.CellID, 9)+detail(c))
		}
	}
	add(fmt.Sprintf("High Temperature (> %d°C)", overTemperatureC), "crit", v.Alerts.OverTemperature,
		func(c model.CellReading) string { return fmt.Sprintf("%d°C  %s", c.TemperatureC, c.Status) })
	add(fmt.Sprintf("Low Capacity (< %d%%)", lowCapacityPct), "warn", v.Alerts.LowCapacity,
		func(c model.CellReading) string { return fmt.Sprintf("%d%%  %s", c.CapacityPercent, c.Status) })
	add("Error State", "crit", v.Alerts.ErrorState,
		func(c model.CellReading) string { return fmt.Sprintf("%s  %s", c.Status, c.Health) })
	return lines
}
