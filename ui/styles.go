package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/celltop/model"
)

var (
	// Colors
	colorRed     = lipgloss.Color("#FF5555")
	colorYellow  = lipgloss.Color("#F1FA8C")
	colorGreen   = lipgloss.Color("#50FA7B")
	colorCyan    = lipgloss.Color("#8BE9FD")
	colorMagenta = lipgloss.Color("#FF79C6")
	colorOrange  = lipgloss.Color("#FFB86C")
	colorWhite   = lipgloss.Color("#F8F8F2")
	colorGray    = lipgloss.Color("#6272A4")
	colorPanel   = lipgloss.Color("#44475A")

	// Row highlight backgrounds for the table page
	bgCharging = lipgloss.Color("#1E3A44")
	bgComplete = lipgloss.Color("#1F3B2A")
	bgError    = lipgloss.Color("#4A1F26")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle    = lipgloss.NewStyle().Foreground(colorGray)
	valueStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	warnStyle     = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	critStyle     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(colorGreen)
	headerStyle   = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
	selectedStyle = lipgloss.NewStyle().Background(colorPanel).Foreground(colorWhite)
	helpStyle     = lipgloss.NewStyle().Foreground(colorGray)
	dimStyle      = lipgloss.NewStyle().Foreground(colorGray)
	orangeStyle   = lipgloss.NewStyle().Foreground(colorOrange)
)

func statusColor(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusCharging:
		return colorCyan
	case model.StatusComplete:
		return colorGreen
	case model.StatusError:
		return colorRed
	default:
		return colorGray
	}
}

func statusStyle(s model.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(statusColor(s))
}

// statusRowStyle highlights a whole table row by status. Idle rows are
// left plain.
func statusRowStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusCharging:
		return lipgloss.NewStyle().Background(bgCharging).Foreground(colorWhite)
	case model.StatusComplete:
		return lipgloss.NewStyle().Background(bgComplete).Foreground(colorWhite)
	case model.StatusError:
		return lipgloss.NewStyle().Background(bgError).Foreground(colorWhite).Bold(true)
	default:
		return valueStyle
	}
}

func healthStyle(h model.Health) lipgloss.Style {
	switch h {
	case model.HealthExcellent:
		return okStyle
	case model.HealthGood:
		return lipgloss.NewStyle().Foreground(colorCyan)
	case model.HealthWarning:
		return warnStyle
	case model.HealthCritical:
		return critStyle
	default:
		return dimStyle
	}
}

func severityColor(sev string) lipgloss.Style {
	switch sev {
	case "crit":
		return critStyle
	case "warn":
		return warnStyle
	default:
		return orangeStyle
	}
}

// tempStyle colors a temperature against the alert threshold and the
// tile's "High" boundary.
func tempStyle(c int) lipgloss.Style {
	switch {
	case c > overTemperatureC:
		return critStyle
	case float64(c) >= model.TileWarmC:
		return warnStyle
	default:
		return okStyle
	}
}

func labelStyleFor(label string) lipgloss.Style {
	switch label {
	case "Normal", "Optimal":
		return okStyle
	case "no data":
		return dimStyle
	default:
		return warnStyle
	}
}
