package engine

import "github.com/ftahirops/celltop/model"

// Alert thresholds.
const (
	OverTemperatureC   = 40 // alert when strictly above
	LowCapacityPercent = 20 // alert when strictly below
)

// Evaluate derives aggregates and alert subsets from a list of readings.
// It is pure and total: an empty list yields zero counts and Samples == 0.
func Evaluate(readings []model.CellReading) (model.DerivedMetrics, model.AlertSet) {
	m := model.DerivedMetrics{Samples: len(readings)}
	alerts := model.AlertSet{
		OverTemperature: []model.CellReading{},
		LowCapacity:     []model.CellReading{},
		ErrorState:      []model.CellReading{},
	}

	powers := make([]float64, 0, len(readings))
	var tempSum, capSum int
	for _, r := range readings {
		if r.Status == model.StatusCharging {
			m.ActiveCount++
		}
		powers = append(powers, r.PowerW)
		tempSum += r.TemperatureC
		capSum += r.CapacityPercent

		if r.TemperatureC > OverTemperatureC {
			alerts.OverTemperature = append(alerts.OverTemperature, r)
		}
		if r.CapacityPercent < LowCapacityPercent {
			alerts.LowCapacity = append(alerts.LowCapacity, r)
		}
		if r.Status == model.StatusError {
			alerts.ErrorState = append(alerts.ErrorState, r)
		}
	}

	m.TotalPowerW = sumRounded(powers, powerPlaces)
	if m.Samples > 0 {
		m.AvgTemperatureC = float64(tempSum) / float64(m.Samples)
		m.AvgCapacityPercent = float64(capSum) / float64(m.Samples)
	}
	return m, alerts
}

// EvaluateSnapshot evaluates every reading of a snapshot; nil-safe.
func EvaluateSnapshot(snap *model.Snapshot) *model.Result {
	var cells []model.CellReading
	if snap != nil {
		cells = snap.Cells
	}
	m, a := Evaluate(cells)
	return &model.Result{Metrics: m, Alerts: a}
}
