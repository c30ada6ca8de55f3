package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ftahirops/celltop/engine"
	"github.com/ftahirops/celltop/model"
	"github.com/ftahirops/celltop/report"
)

// ── ANSI color/style codes ──────────────────────────────────────────────────

const (
	R = "\033[0m" // reset
	B = "\033[1m" // bold
	D = "\033[2m" // dim

	FRed = "\033[31m"
	FGrn = "\033[32m"
	FYel = "\033[33m"
	FCyn = "\033[36m"

	FBRed = "\033[91m"
	FBGrn = "\033[92m"
	FBYel = "\033[93m"
	FBWht = "\033[97m"

	BGrn = "\033[42m"
	BRed = "\033[41m"
	BBlu = "\033[44m"
)

const clearScreen = "\033[2J\033[H"

// ── Styling helpers ─────────────────────────────────────────────────────────

func ctemp(c int) string {
	switch {
	case c > engine.OverTemperatureC:
		return fmt.Sprintf("%s%s%3d°C%s", B, FBRed, c, R)
	case c >= int(model.TileWarmC):
		return fmt.Sprintf("%s%3d°C%s", FBYel, c, R)
	default:
		return fmt.Sprintf("%s%3d°C%s", FBGrn, c, R)
	}
}

func cstatus(s model.Status) string {
	pad := fmt.Sprintf("%-8s", s)
	switch s {
	case model.StatusCharging:
		return FBGrn + pad + R
	case model.StatusComplete:
		return FCyn + pad + R
	case model.StatusError:
		return B + FBRed + pad + R
	default:
		return D + pad + R
	}
}

func chealth(h model.Health) string {
	switch h {
	case model.HealthExcellent:
		return FBGrn + string(h) + R
	case model.HealthGood:
		return FGrn + string(h) + R
	case model.HealthWarning:
		return FBYel + string(h) + R
	default:
		return B + FBRed + string(h) + R
	}
}

func alertBadge(v engine.View) string {
	if v.AllNormal {
		return fmt.Sprintf(" %s ALL NORMAL %s", BGrn+B+FBWht, R)
	}
	return fmt.Sprintf(" %s %d ALERT(S) %s", BRed+B+FBWht, len(v.Banner), R)
}

// capBar is inverted: a full cell is green.
func capBar(pct int, w int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * w / 100
	var c string
	switch {
	case pct >= 80:
		c = FBGrn
	case pct >= 50:
		c = FYel
	case pct >= engine.LowCapacityPercent:
		c = FBYel
	default:
		c = FBRed
	}
	return fmt.Sprintf("%s%s%s%s%s", c, strings.Repeat("#", filled), D, strings.Repeat("-", w-filled), R)
}

func titleLine(t string) string {
	pad := 78 - len(t) - 2
	if pad < 0 {
		pad = 0
	}
	return fmt.Sprintf("%s%s== %s %s%s", B, FCyn, t, strings.Repeat("=", pad), R)
}

func hr() string {
	return fmt.Sprintf("%s%s%s", D, strings.Repeat("-", 78), R)
}

// ── Main Watch Loop ─────────────────────────────────────────────────────────

// runWatch prints the dashboard on every refresh until ctx is cancelled or
// count refreshes have been printed. With auto-refresh off it prints once.
func runWatch(parent context.Context, w io.Writer, s *engine.Session, count int) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	iteration := 0
	render := func(v engine.View) {
		if ctx.Err() != nil {
			return
		}
		iteration++
		fmt.Fprint(w, clearScreen)
		renderWatch(w, v, iteration, count)
		if (count > 0 && iteration >= count) || !v.Auto {
			cancel()
		}
	}

	sched := engine.NewScheduler(s, render)
	sched.Trigger()
	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	if parent.Err() != nil {
		fmt.Fprintf(w, "\n%sStopped.%s\n", D, R)
	}
	return nil
}

func renderWatch(w io.Writer, v engine.View, iteration, count int) {
	mode := fmt.Sprintf("[AUTO %s]", v.Interval)
	if !v.Auto {
		mode = "[PAUSED]"
	}
	iter := fmt.Sprintf("#%d", iteration)
	if count > 0 {
		iter = fmt.Sprintf("#%d/%d", iteration, count)
	}
	fmt.Fprintf(w, " %s%s celltop v%s %s  %s%s%s  %s%s%s  %s\n",
		B, BBlu+FBWht, Version, R,
		FCyn, mode, R,
		D, engine.NewProcessFilter(v.Processes...), R,
		D+iter+R)
	fmt.Fprintln(w, hr())

	watchSummary(w, v)
	fmt.Fprintln(w)
	watchCells(w, v)
	fmt.Fprintln(w)
	watchAlerts(w, v)

	fmt.Fprintln(w, hr())
	if v.LastUpdate.IsZero() {
		fmt.Fprintf(w, " %sLast Updated: never%s\n", D, R)
	} else {
		fmt.Fprintf(w, " %sLast Updated: %s%s\n", D, v.LastUpdate.Format(report.TimeLayout), R)
	}
}

func watchSummary(w io.Writer, v engine.View) {
	m := v.Metrics
	fmt.Fprintln(w, titleLine("SUMMARY"))
	fmt.Fprintf(w, "  Active Cells   %s%d%s %s(of %d shown, %d total)%s\n", B, m.ActiveCount, R, D, len(v.Readings), v.Total, R)
	fmt.Fprintf(w, "  Total Power    %s%.1f W%s\n", B, m.TotalPowerW, R)
	if !m.HasData() {
		fmt.Fprintf(w, "  Avg Temp       %sno data%s\n", D, R)
		fmt.Fprintf(w, "  Avg Capacity   %sno data%s\n", D, R)
	} else {
		fmt.Fprintf(w, "  Avg Temp       %.1f °C  %s\n", m.AvgTemperatureC, labelColor(m.TemperatureLabel()))
		fmt.Fprintf(w, "  Avg Capacity   %.1f %%   %s\n", m.AvgCapacityPercent, labelColor(m.CapacityLabel()))
	}
	fmt.Fprintf(w, "  Alerts        %s\n", alertBadge(v))
}

func labelColor(l string) string {
	switch l {
	case "Normal", "Optimal":
		return FBGrn + l + R
	default:
		return FBYel + l + R
	}
}

func watchCells(w io.Writer, v engine.View) {
	fmt.Fprintln(w, titleLine("CELLS"))
	if len(v.Readings) == 0 {
		fmt.Fprintf(w, "  %sNo cells match the current filter.%s\n", D, R)
		return
	}
	fmt.Fprintf(w, "  %s%-8s %-8s %-8s %6s %5s %6s %6s  %-17s %s%s\n",
		D, "CELL", "STATUS", "PROCESS", "VOLT", "AMP", "WATT", "TEMP", "CAPACITY", "HEALTH", R)
	for _, c := range v.Readings {
		fmt.Fprintf(w, "  %-8s %s %-8s %6.2f %5.1f %6.1f %s  %s %3d%%  %s\n",
			c.CellID, cstatus(c.Status), c.Process, c.VoltageV, c.CurrentA, c.PowerW,
			ctemp(c.TemperatureC), capBar(c.CapacityPercent, 10), c.CapacityPercent,
			chealth(c.Health))
	}
}

func watchAlerts(w io.Writer, v engine.View) {
	fmt.Fprintln(w, titleLine("ALERTS"))
	if v.AllNormal {
		fmt.Fprintf(w, "  %s%s%s\n", FBGrn, model.AllNormalBanner, R)
		return
	}
	for _, a := range v.Banner {
		tag := fmt.Sprintf(" %s!%s", FBYel, R)
		if a.Severity == "crit" {
			tag = fmt.Sprintf("%s%s!!%s", B, FBRed, R)
		}
		fmt.Fprintf(w, "  %s %s %s[%s]%s\n", tag, a.Message, D, strings.Join(a.CellIDs, ", "), R)
	}
}
