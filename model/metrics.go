package model

import (
	"fmt"
	"strings"
)

// DerivedMetrics holds the aggregates computed over a list of readings.
// Averages are only meaningful when Samples > 0.
type DerivedMetrics struct {
	Samples            int     `json:"samples"`
	ActiveCount        int     `json:"active_count"`
	TotalPowerW        float64 `json:"total_power_w"`
	AvgTemperatureC    float64 `json:"avg_temperature_c"`
	AvgCapacityPercent float64 `json:"avg_capacity_pct"`
}

// HasData reports whether the averages were computed over at least one reading.
func (m DerivedMetrics) HasData() bool {
	return m.Samples > 0
}

// Tile labels shown under the average temperature and capacity.
const (
	TileWarmC          = 35.0
	TileOptimalPercent = 80.0
)

// TemperatureLabel is "Normal" below TileWarmC, otherwise "High".
func (m DerivedMetrics) TemperatureLabel() string {
	if !m.HasData() {
		return "no data"
	}
	if m.AvgTemperatureC < TileWarmC {
		return "Normal"
	}
	return "High"
}

// CapacityLabel is "Optimal" above TileOptimalPercent, otherwise "Low".
func (m DerivedMetrics) CapacityLabel() string {
	if !m.HasData() {
		return "no data"
	}
	if m.AvgCapacityPercent > TileOptimalPercent {
		return "Optimal"
	}
	return "Low"
}

// AlertKind identifies one of the alert predicates.
type AlertKind string

const (
	AlertOverTemperature AlertKind = "over_temperature"
	AlertLowCapacity     AlertKind = "low_capacity"
	AlertErrorState      AlertKind = "error_state"
)

// Alert is one banner line produced from a non-empty alert subset.
type Alert struct {
	Kind     AlertKind `json:"kind"`
	Severity string    `json:"severity"` // "warn", "crit"
	Message  string    `json:"message"`
	CellIDs  []string  `json:"cell_ids"`
}

// AlertSet holds the readings matching each alert predicate.
// A reading can appear in more than one subset.
type AlertSet struct {
	OverTemperature []CellReading `json:"over_temperature"`
	LowCapacity     []CellReading `json:"low_capacity"`
	ErrorState      []CellReading `json:"error_state"`
}

// AllNormal reports whether no alert predicate matched.
func (a AlertSet) AllNormal() bool {
	return len(a.OverTemperature) == 0 && len(a.LowCapacity) == 0 && len(a.ErrorState) == 0
}

// Count returns the number of non-empty subsets.
func (a AlertSet) Count() int {
	n := 0
	for _, s := range [][]CellReading{a.OverTemperature, a.LowCapacity, a.ErrorState} {
		if len(s) > 0 {
			n++
		}
	}
	return n
}

// Alerts builds one banner message per non-empty subset, in fixed order.
func (a AlertSet) Alerts() []Alert {
	var out []Alert
	if n := len(a.OverTemperature); n > 0 {
		out = append(out, Alert{
			Kind:     AlertOverTemperature,
			Severity: "crit",
			Message:  fmt.Sprintf("High Temperature Alert: %d cell(s) running hot!", n),
			CellIDs:  cellIDs(a.OverTemperature),
		})
	}
	if n := len(a.LowCapacity); n > 0 {
		out = append(out, Alert{
			Kind:     AlertLowCapacity,
			Severity: "warn",
			Message:  fmt.Sprintf("Low Capacity Alert: %d cell(s) need attention!", n),
			CellIDs:  cellIDs(a.LowCapacity),
		})
	}
	if n := len(a.ErrorState); n > 0 {
		out = append(out, Alert{
			Kind:     AlertErrorState,
			Severity: "crit",
			Message:  fmt.Sprintf("Error Alert: %d cell(s) in error state!", n),
			CellIDs:  cellIDs(a.ErrorState),
		})
	}
	return out
}

// Banner returns the single-line summary of the alert set.
func (a AlertSet) Banner() string {
	if a.AllNormal() {
		return AllNormalBanner
	}
	alerts := a.Alerts()
	parts := make([]string, 0, len(alerts))
	for _, al := range alerts {
		parts = append(parts, al.Message+" ["+strings.Join(al.CellIDs, ", ")+"]")
	}
	return strings.Join(parts, "; ")
}

// AllNormalBanner is shown when no alert predicate matched.
const AllNormalBanner = "All systems operating normally!"

func cellIDs(cells []CellReading) []string {
	ids := make([]string, len(cells))
	for i, c := range cells {
		ids[i] = c.CellID
	}
	return ids
}

// Result bundles the evaluation of one snapshot.
type Result struct {
	Metrics DerivedMetrics `json:"metrics"`
	Alerts  AlertSet       `json:"alerts"`
}
