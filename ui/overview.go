package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/celltop/engine"
	"github.com/ftahirops/celltop/model"
)

const (
	cardsPerRow = 4
	cardInnerW  = 22
)

// renderOverview renders metric tiles, the alert banner and the cell cards.
func renderOverview(v engine.View, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(" Cell Charging System"))
	sb.WriteString("\n\n")
	sb.WriteString(renderTiles(v.Metrics, v.Total, width))
	sb.WriteString("\n")
	sb.WriteString(renderAlertBanner(v, pageInnerW(width)))
	sb.WriteString(renderCards(v.Readings, width))
	return sb.String()
}

type tile struct {
	label string
	value string
	delta string
	style lipgloss.Style
}

func metricTiles(m model.DerivedMetrics, total int) []tile {
	tiles := []tile{
		{"Active Charging", fmt.Sprintf("%d", m.ActiveCount), fmt.Sprintf("%d/%d cells", m.ActiveCount, total), dimStyle},
		{"Total Power", fmt.Sprintf("%.1f W", m.TotalPowerW), "Real-time", dimStyle},
	}
	if !m.HasData() {
		return append(tiles,
			tile{"Avg Temperature", "--", "no data", dimStyle},
			tile{"Avg Capacity", "--", "no data", dimStyle},
		)
	}
	tl, cl := m.TemperatureLabel(), m.CapacityLabel()
	return append(tiles,
		tile{"Avg Temperature", fmt.Sprintf("%.1f°C", m.AvgTemperatureC), tl, labelStyleFor(tl)},
		tile{"Avg Capacity", fmt.Sprintf("%.1f%%", m.AvgCapacityPercent), cl, labelStyleFor(cl)},
	)
}

func renderTiles(m model.DerivedMetrics, total, width int) string {
	tiles := metricTiles(m, total)
	tileW := (width - 2) / len(tiles)
	if tileW < 18 {
		tileW = 18
	}
	boxes := make([]string, len(tiles))
	for i, t := range tiles {
		body := labelStyle.Render(t.label) + "\n" +
			valueStyle.Bold(true).Render(t.value) + "\n" +
			t.style.Render(t.delta)
		boxes[i] = panelStyle.Width(tileW - 2).Render(body)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...) + "\n"
}

// alertLines returns one line per alert, or the all-normal line.
func alertLines(v engine.View) []string {
	if v.AllNormal {
		return []string{okStyle.Render("✔ " + model.AllNormalBanner)}
	}
	lines := make([]string, 0, len(v.Banner))
	for _, a := range v.Banner {
		lines = append(lines, severityColor(a.Severity).Render("▲ "+a.Message)+
			dimStyle.Render("  "+strings.Join(a.CellIDs, ", ")))
	}
	return lines
}

func renderAlertBanner(v engine.View, innerW int) string {
	return boxSection("SYSTEM ALERTS", alertLines(v), innerW)
}

func renderCard(r model.CellReading) string {
	details := []kv{
		{"Status", string(r.Status)},
		{"Process", string(r.Process)},
		{"Voltage", fmt.Sprintf("%.2f V", r.VoltageV)},
		{"Current", fmt.Sprintf("%.1f A", r.CurrentA)},
		{"Power", fmt.Sprintf("%.1f W", r.PowerW)},
	}
	lines := []string{statusStyle(r.Status).Bold(true).Render(r.CellID)}
	lines = append(lines, kvLines(details)...)
	lines = append(lines,
		styledPad(labelStyle.Render("Temp:"), colKey)+" "+tempStyle(r.TemperatureC).Render(fmt.Sprintf("%d°C", r.TemperatureC)),
		styledPad(labelStyle.Render("Capacity:"), colKey)+" "+fmt.Sprintf("%d%%", r.CapacityPercent),
		capacityBar(float64(r.CapacityPercent), cardInnerW),
		styledPad(labelStyle.Render("Health:"), colKey)+" "+healthStyle(r.Health).Render(string(r.Health)),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(statusColor(r.Status)).
		Padding(0, 1).
		Width(cardInnerW + 2).
		Render(strings.Join(lines, "\n"))
}

// renderCards lays the cell cards out in rows of up to four.
func renderCards(readings []model.CellReading, width int) string {
	if len(readings) == 0 {
		return dimStyle.Render(" No cells match the current filter. Press 0 to select all processes.") + "\n"
	}
	perRow := cardsPerRow
	if fit := width / (cardInnerW + 4); fit < perRow {
		perRow = fit
	}
	if perRow < 1 {
		perRow = 1
	}
	var sb strings.Builder
	for i := 0; i < len(readings); i += perRow {
		end := i + perRow
		if end > len(readings) {
			end = len(readings)
		}
		cards := make([]string, 0, end-i)
		for _, r := range readings[i:end] {
			cards = append(cards, renderCard(r))
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
		sb.WriteString("\n")
	}
	return sb.String()
}
