package engine

import "github.com/ftahirops/celltop/model"

// Role selects the sampling profile used for a cell.
type Role int

const (
	RoleActive      Role = iota // cells actively charging
	RoleMaintenance             // idle or topped-off cells
)

func (r Role) String() string {
	switch r {
	case RoleActive:
		return "active"
	case RoleMaintenance:
		return "maintenance"
	}
	return "unknown"
}

// activeCells is the number of leading cells drawn from the active profile.
const activeCells = 4

// Voltage and current are stored with fixed precision.
const (
	voltagePlaces = 2
	currentPlaces = 1
	powerPlaces   = 1
)

// healthForcedAtC forces Warning health at or above this temperature.
const healthForcedAtC = 40

// temperatureRange applies to every role.
var temperatureRange = intRange{Min: 22, Max: 45}

type floatRange struct {
	Min, Max float64
}

type intRange struct {
	Min, Max int
}

type choice[T any] struct {
	Value  T
	Weight int
}

// SamplingProfile holds the range and weight parameters for one role.
type SamplingProfile struct {
	Voltage   floatRange
	Current   floatRange
	Capacity  intRange
	Statuses  []choice[model.Status]
	Processes []choice[model.Process]
}

// Profiles maps each role to its sampling parameters.
//
// The active status draw gives Charging twice the weight of Complete. That bias
// carries over from the original mock data and may have been an accident of
// list-based random choice rather than a deliberate weighting.
var Profiles = map[Role]SamplingProfile{
	RoleActive: {
		Voltage:  floatRange{Min: 3.9, Max: 4.2},
		Current:  floatRange{Min: 0.5, Max: 3.5},
		Capacity: intRange{Min: 60, Max: 99},
		Statuses: []choice[model.Status]{
			{Value: model.StatusCharging, Weight: 2},
			{Value: model.StatusComplete, Weight: 1},
		},
		Processes: []choice[model.Process]{
			{Value: model.ProcessCC, Weight: 1},
			{Value: model.ProcessCV, Weight: 1},
			{Value: model.ProcessFast, Weight: 1},
		},
	},
	RoleMaintenance: {
		Voltage:  floatRange{Min: 3.7, Max: 4.21},
		Current:  floatRange{Min: 0.0, Max: 1.0},
		Capacity: intRange{Min: 85, Max: 100},
		Statuses: []choice[model.Status]{
			{Value: model.StatusComplete, Weight: 1},
			{Value: model.StatusIdle, Weight: 1},
		},
		Processes: []choice[model.Process]{
			{Value: model.ProcessTrickle, Weight: 1},
			{Value: model.ProcessNone, Weight: 1},
		},
	},
}

// healthChoices is the uniform draw used below healthForcedAtC.
var healthChoices = []choice[model.Health]{
	{Value: model.HealthExcellent, Weight: 1},
	{Value: model.HealthGood, Weight: 1},
	{Value: model.HealthWarning, Weight: 1},
	{Value: model.HealthCritical, Weight: 1},
}

// RoleFor returns the role of the 1-based cell index.
func RoleFor(index int) Role {
	if index <= activeCells {
		return RoleActive
	}
	return RoleMaintenance
}
