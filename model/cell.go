package model

import (
	"fmt"
	"time"
)

// CellCount is the number of cells in the charging bank.
const CellCount = 8

// Status is the charge state reported for a cell.
type Status string

const (
	StatusCharging Status = "Charging"
	StatusComplete Status = "Complete"
	StatusIdle     Status = "Idle"
	StatusError    Status = "Error"
)

// Process is the charging-phase label applied to a cell.
type Process string

const (
	ProcessCC      Process = "CC"
	ProcessCV      Process = "CV"
	ProcessTrickle Process = "Trickle"
	ProcessFast    Process = "Fast"
	ProcessNone    Process = "None"
)

// AllProcesses lists every process in display order.
var AllProcesses = []Process{ProcessCC, ProcessCV, ProcessTrickle, ProcessFast, ProcessNone}

// Description returns the one-line explanation shown on the process page.
func (p Process) Description() string {
	switch p {
	case ProcessCC:
		return "Constant Current: initial rapid charging phase with constant current flow"
	case ProcessCV:
		return "Constant Voltage: final charging phase maintaining constant voltage"
	case ProcessTrickle:
		return "Trickle Charge: maintenance charging mode for topped-off cells"
	case ProcessFast:
		return "Fast Charge: high-current charging protocol for rapid charging"
	case ProcessNone:
		return "None: no charging current applied"
	}
	return "unknown process"
}

// Health is a qualitative degradation indicator, distinct from Status.
type Health string

const (
	HealthExcellent Health = "Excellent"
	HealthGood      Health = "Good"
	HealthWarning   Health = "Warning"
	HealthCritical  Health = "Critical"
)

// AllHealth lists every health level from best to worst.
var AllHealth = []Health{HealthExcellent, HealthGood, HealthWarning, HealthCritical}

// CellReading is one cell's telemetry at snapshot time.
type CellReading struct {
	CellID          string    `json:"cell_id"`
	VoltageV        float64   `json:"voltage_v"`
	CurrentA        float64   `json:"current_a"`
	TemperatureC    int       `json:"temperature_c"`
	CapacityPercent int       `json:"capacity_pct"`
	Status          Status    `json:"status"`
	Process         Process   `json:"process"`
	Health          Health    `json:"health"`
	PowerW          float64   `json:"power_w"`
	LastUpdate      time.Time `json:"last_update"`
}

// CellID formats the stable identifier for the 1-based cell index.
func CellID(index int) string {
	return fmt.Sprintf("Cell_%02d", index)
}

// Snapshot holds one complete set of readings for all cells.
// A snapshot is never modified after the generator returns it.
type Snapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	Cells     []CellReading `json:"cells"`
}

// Len returns the number of readings in the snapshot; nil-safe.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Cells)
}
