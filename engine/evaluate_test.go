package engine

import (
	"testing"

	"github.com/ftahirops/celltop/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateTotals(t *testing.T) {
	readings := []model.CellReading{
		reading("Cell_01", model.ProcessCC, model.StatusCharging, 30, 70, 3.2),
		reading("Cell_02", model.ProcessCV, model.StatusComplete, 34, 90, 1.8),
	}
	m, _ := Evaluate(readings)

	assert.Equal(t, 2, m.Samples)
	assert.Equal(t, 1, m.ActiveCount)
	assert.Equal(t, 5.0, m.TotalPowerW)
	assert.Equal(t, 32.0, m.AvgTemperatureC)
	assert.Equal(t, 80.0, m.AvgCapacityPercent)
	assert.True(t, m.HasData())
}

func TestEvaluateCountsCharging(t *testing.T) {
	m, _ := Evaluate(mixedSnapshot().Cells)
	assert.Equal(t, 4, m.ActiveCount)
	assert.Equal(t, 31.1, m.TotalPowerW)
}

func TestEvaluateReadingInAllAlertSubsets(t *testing.T) {
	bad := reading("Cell_03", model.ProcessCC, model.StatusError, 41, 15, 0.5)
	readings := append(mixedSnapshot().Cells[:2], bad)

	_, alerts := Evaluate(readings)

	require.Len(t, alerts.OverTemperature, 1)
	require.Len(t, alerts.LowCapacity, 1)
	require.Len(t, alerts.ErrorState, 1)
	assert.Equal(t, "Cell_03", alerts.OverTemperature[0].CellID)
	assert.Equal(t, "Cell_03", alerts.LowCapacity[0].CellID)
	assert.Equal(t, "Cell_03", alerts.ErrorState[0].CellID)
	assert.False(t, alerts.AllNormal())
	assert.Equal(t, 3, alerts.Count())

	banner := alerts.Alerts()
	require.Len(t, banner, 3)
	assert.Equal(t, "High Temperature Alert: 1 cell(s) running hot!", banner[0].Message)
	assert.Equal(t, "Low Capacity Alert: 1 cell(s) need attention!", banner[1].Message)
	assert.Equal(t, "Error Alert: 1 cell(s) in error state!", banner[2].Message)
	for _, a := range banner {
		assert.Equal(t, []string{"Cell_03"}, a.CellIDs)
	}
}

func TestEvaluateAllNormal(t *testing.T) {
	_, alerts := Evaluate(mixedSnapshot().Cells)
	assert.True(t, alerts.AllNormal())
	assert.Empty(t, alerts.Alerts())
	assert.Equal(t, model.AllNormalBanner, alerts.Banner())
}

func TestEvaluateThresholdBoundaries(t *testing.T) {
	readings := []model.CellReading{
		reading("Cell_01", model.ProcessCC, model.StatusCharging, OverTemperatureC, LowCapacityPercent, 1),
	}
	_, alerts := Evaluate(readings)
	assert.True(t, alerts.AllNormal(), "readings on the threshold must not alert")

	readings[0].TemperatureC = OverTemperatureC + 1
	readings[0].CapacityPercent = LowCapacityPercent - 1
	_, alerts = Evaluate(readings)
	assert.Len(t, alerts.OverTemperature, 1)
	assert.Len(t, alerts.LowCapacity, 1)
	assert.Empty(t, alerts.ErrorState)
	assert.Equal(t, 2, alerts.Count())
}

func TestEvaluateEmpty(t *testing.T) {
	m, alerts := Evaluate(nil)
	assert.Equal(t, model.DerivedMetrics{}, m)
	assert.False(t, m.HasData())
	assert.True(t, alerts.AllNormal())

	r := EvaluateSnapshot(nil)
	assert.Equal(t, 0, r.Metrics.Samples)
}

func TestEvaluateIsPure(t *testing.T) {
	snap := NewGenerator(11).Generate()
	snap.Cells[2].TemperatureC = 44
	snap.Cells[6].Status = model.StatusError

	m1, a1 := Evaluate(snap.Cells)
	m2, a2 := Evaluate(snap.Cells)
	if diff := cmp.Diff(m1, m2); diff != "" {
		t.Errorf("metrics differ between calls:\n%s", diff)
	}
	if diff := cmp.Diff(a1, a2); diff != "" {
		t.Errorf("alerts differ between calls:\n%s", diff)
	}
	assert.Equal(t, 44, snap.Cells[2].TemperatureC, "input must not be modified")
}

func TestAlertBannerListsCells(t *testing.T) {
	readings := []model.CellReading{
		reading("Cell_02", model.ProcessCC, model.StatusCharging, 43, 70, 1),
		reading("Cell_05", model.ProcessTrickle, model.StatusIdle, 42, 90, 1),
	}
	_, alerts := Evaluate(readings)
	assert.Equal(t, "High Temperature Alert: 2 cell(s) running hot! [Cell_02, Cell_05]", alerts.Banner())
}
