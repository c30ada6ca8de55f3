package ui

import (
	"fmt"
	"strings"

	"github.com/ftahirops/celltop/model"
)

// Axis ranges cover both sampling profiles.
const (
	scatterVMin = 3.7
	scatterVMax = 4.25
	scatterCMax = 3.5

	histTMin = 22
	histTMax = 45
	histBins = 10
)

// scatterPlot renders voltage (x) against current (y), one status-colored
// marker per reading.
//
//	Voltage vs Current  ● Charging ● Complete ● Idle ● Error
//	3.5│              ●
//	   │      ●            ●
//	0.0│ ●                     ●
//	   └──────────────────────────
//	   3.70 V                4.25 V
func scatterPlot(readings []model.CellReading, width, height int) string {
	if height < 4 {
		height = 4
	}
	axisW := 4 // e.g. "3.5│"
	plotW := width - axisW - 1
	if plotW < 10 {
		plotW = 10
	}

	grid := make([][]string, height)
	for i := range grid {
		grid[i] = make([]string, plotW)
		for j := range grid[i] {
			grid[i][j] = " "
		}
	}
	for _, r := range readings {
		col := int((r.VoltageV-scatterVMin)/(scatterVMax-scatterVMin)*float64(plotW-1) + 0.5)
		row := height - 1 - int(r.CurrentA/scatterCMax*float64(height-1)+0.5)
		col = clampInt(col, 0, plotW-1)
		row = clampInt(row, 0, height-1)
		grid[row][col] = statusStyle(r.Status).Render("●")
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Voltage vs Current"))
	sb.WriteString("  " + statusLegend())
	sb.WriteString("\n")
	for row := 0; row < height; row++ {
		label := "   "
		switch row {
		case 0:
			label = fmt.Sprintf("%3.1f", scatterCMax)
		case height / 2:
			label = fmt.Sprintf("%3.1f", scatterCMax*float64(height-1-row)/float64(height-1))
		case height - 1:
			label = fmt.Sprintf("%3.1f", 0.0)
		}
		sb.WriteString(dimStyle.Render(label + "│"))
		sb.WriteString(strings.Join(grid[row], ""))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render("   └" + strings.Repeat("─", plotW)))
	sb.WriteString("\n")
	left := fmt.Sprintf("%.2f V", scatterVMin)
	right := fmt.Sprintf("%.2f V", scatterVMax)
	gap := plotW - len(left) - len(right) + 1
	if gap < 1 {
		gap = 1
	}
	sb.WriteString(dimStyle.Render("   " + left + strings.Repeat(" ", gap) + right))
	return sb.String()
}

func statusLegend() string {
	var parts []string
	for _, s := range []model.Status{model.StatusCharging, model.StatusComplete, model.StatusIdle, model.StatusError} {
		parts = append(parts, statusStyle(s).Render("●")+dimStyle.Render(" "+string(s)))
	}
	return strings.Join(parts, " ")
}

// histBin returns the inclusive temperature range of bin i.
func histBin(i int) (lo, hi int) {
	span := histTMax - histTMin + 1
	lo = histTMin + i*span/histBins
	hi = histTMin + (i+1)*span/histBins - 1
	return lo, hi
}

func histIndex(tempC int) int {
	for i := histBins - 1; i >= 0; i-- {
		if lo, _ := histBin(i); tempC >= lo {
			return i
		}
	}
	return 0
}

// tempHistogram renders temperature bins as rows of health-colored blocks.
func tempHistogram(readings []model.CellReading) string {
	var counts [histBins]map[model.Health]int
	for i := range counts {
		counts[i] = make(map[model.Health]int)
	}
	for _, r := range readings {
		counts[histIndex(r.TemperatureC)][r.Health]++
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Temperature Distribution by Health"))
	sb.WriteString("\n")
	for i := 0; i < histBins; i++ {
		lo, hi := histBin(i)
		label := fmt.Sprintf("%2d-%2d°C", lo, hi)
		style := dimStyle
		if hi > overTemperatureC {
			style = critStyle
		}
		sb.WriteString(style.Render(label) + dimStyle.Render(" │"))
		n := 0
		for _, h := range model.AllHealth {
			c := counts[i][h]
			if c > 0 {
				sb.WriteString(healthStyle(h).Render(strings.Repeat("██", c)))
				n += c
			}
		}
		if n > 0 {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" %d", n)))
		}
		sb.WriteString("\n")
	}
	var legend []string
	for _, h := range model.AllHealth {
		legend = append(legend, healthStyle(h).Render("██")+dimStyle.Render(" "+string(h)))
	}
	sb.WriteString("         " + strings.Join(legend, "  "))
	return sb.String()
}

// capacityChart renders one status-colored capacity bar per reading.
func capacityChart(readings []model.CellReading, width int) string {
	barW := width - 16
	if barW < 10 {
		barW = 10
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Cell Capacity Levels"))
	sb.WriteString("\n")
	for _, r := range readings {
		sb.WriteString(padRight(r.CellID, 8))
		sb.WriteString(hbar(float64(r.CapacityPercent), 100, barW, statusStyle(r.Status)))
		sb.WriteString(fmt.Sprintf(" %3d%%\n", r.CapacityPercent))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// processPower is the total power drawn by cells in one process.
type processPower struct {
	Process model.Process
	PowerW  float64
}

// powerByProcess sums power per process, in display order, omitting
// processes with no readings.
func powerByProcess(readings []model.CellReading) ([]processPower, float64) {
	sums := make(map[model.Process]float64)
	seen := make(map[model.Process]bool)
	var total float64
	for _, r := range readings {
		sums[r.Process] += r.PowerW
		seen[r.Process] = true
		total += r.PowerW
	}
	var out []processPower
	for _, p := range model.AllProcesses {
		if seen[p] {
			out = append(out, processPower{Process: p, PowerW: sums[p]})
		}
	}
	return out, total
}

// powerShare renders each process's share of total power.
func powerShare(readings []model.CellReading, width int) string {
	shares, total := powerByProcess(readings)
	barW := width - 28
	if barW < 10 {
		barW = 10
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Power Distribution by Process"))
	sb.WriteString("\n")
	if total <= 0 {
		sb.WriteString(dimStyle.Render("no power drawn"))
		return sb.String()
	}
	for _, s := range shares {
		pct := s.PowerW / total * 100
		sb.WriteString(padRight(string(s.Process), 8))
		sb.WriteString(hbar(s.PowerW, total, barW, orangeStyle))
		sb.WriteString(fmt.Sprintf(" %6.1f W %s\n", s.PowerW, padLeft(fmtPct(pct), 6)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
