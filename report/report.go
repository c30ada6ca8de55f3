// Package report renders a dashboard view as markdown or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ftahirops/celltop/engine"
	"github.com/ftahirops/celltop/model"
)

// TimeLayout is the footer timestamp format.
const TimeLayout = "2006-01-02 15:04:05"

// Document is the JSON form of one view.
type Document struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Snapshot    *model.Snapshot `json:"snapshot"`
	View        engine.View     `json:"view"`
}

// WriteJSON encodes v as an indented JSON document.
func WriteJSON(w io.Writer, v engine.View, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{GeneratedAt: now, Snapshot: v.Snapshot, View: v})
}

// Markdown renders a ticket-friendly charging report.
func Markdown(v engine.View) string {
	var sb strings.Builder

	sb.WriteString("# Battery Charging Report\n\n")
	if v.LastUpdate.IsZero() {
		sb.WriteString("**Last Updated:** never\n\n")
	} else {
		sb.WriteString(fmt.Sprintf("**Last Updated:** %s\n\n", v.LastUpdate.Format(TimeLayout)))
	}
	sb.WriteString(fmt.Sprintf("**Filter:** %s (%d of %d cells)\n\n",
		engine.NewProcessFilter(v.Processes...), len(v.Readings), v.Total))

	// Metrics
	m := v.Metrics
	sb.WriteString("## Metrics\n\n")
	sb.WriteString(fmt.Sprintf("- **Active Cells:** %d\n", m.ActiveCount))
	sb.WriteString(fmt.Sprintf("- **Total Power:** %.1f W\n", m.TotalPowerW))
	if m.HasData() {
		sb.WriteString(fmt.Sprintf("- **Avg Temperature:** %.1f °C (%s)\n", m.AvgTemperatureC, m.TemperatureLabel()))
		sb.WriteString(fmt.Sprintf("- **Avg Capacity:** %.1f%% (%s)\n", m.AvgCapacityPercent, m.CapacityLabel()))
	} else {
		sb.WriteString("- **Avg Temperature:** no data\n")
		sb.WriteString("- **Avg Capacity:** no data\n")
	}

	// Alerts
	sb.WriteString("\n## Alerts\n\n")
	if v.AllNormal {
		sb.WriteString(fmt.Sprintf("- %s\n", model.AllNormalBanner))
	}
	for _, a := range v.Banner {
		icon := "WARNING"
		if a.Severity == "crit" {
			icon = "CRITICAL"
		}
		sb.WriteString(fmt.Sprintf("- **[%s]** %s (%s)\n", icon, a.Message, strings.Join(a.CellIDs, ", ")))
	}

	// Cells
	sb.WriteString("\n## Cells\n\n")
	if len(v.Readings) == 0 {
		sb.WriteString("No cells match the current filter.\n")
	} else {
		sb.WriteString("| Cell | Status | Process | Voltage (V) | Current (A) | Power (W) | Temp (°C) | Capacity (%) | Health |\n")
		sb.WriteString("|------|--------|---------|-------------|-------------|-----------|-----------|--------------|--------|\n")
		for _, c := range v.Readings {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %.1f | %.1f | %d | %d | %s |\n",
				c.CellID, c.Status, c.Process, c.VoltageV, c.CurrentA, c.PowerW,
				c.TemperatureC, c.CapacityPercent, c.Health))
		}
	}

	sb.WriteString("\n---\n*Generated by celltop*\n")
	return sb.String()
}

// SaveJSON writes v to dir/celltop-<stamp>.json and returns the path.
func SaveJSON(dir string, v engine.View, now time.Time) (string, error) {
	return save(dir, "json", now, func(w io.Writer) error { return WriteJSON(w, v, now) })
}

// SaveMarkdown writes v to dir/celltop-<stamp>.md and returns the path.
func SaveMarkdown(dir string, v engine.View, now time.Time) (string, error) {
	return save(dir, "md", now, func(w io.Writer) error {
		_, err := io.WriteString(w, Markdown(v))
		return err
	})
}

func save(dir, ext string, now time.Time, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("celltop-%s.%s", now.Format("20060102-150405"), ext))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	return path, nil
}

// Dir returns the default directory for saved reports.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".celltop", "reports")
}
