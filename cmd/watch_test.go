package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftahirops/celltop/engine"
	"github.com/ftahirops/celltop/model"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixedTicker struct{ snap *model.Snapshot }

func (f fixedTicker) Tick() (*model.Snapshot, *model.Result) {
	return f.snap, engine.EvaluateSnapshot(f.snap)
}

func alertSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Timestamp: time.Date(2026, 5, 4, 10, 11, 12, 0, time.Local),
		Cells: []model.CellReading{
			{CellID: "Cell_01", VoltageV: 4.1, CurrentA: 2.0, PowerW: 8.2, TemperatureC: 43,
				CapacityPercent: 70, Status: model.StatusCharging, Process: model.ProcessCC, Health: model.HealthWarning},
			{CellID: "Cell_05", VoltageV: 3.9, CurrentA: 0.5, PowerW: 2.0, TemperatureC: 30,
				CapacityPercent: 15, Status: model.StatusIdle, Process: model.ProcessTrickle, Health: model.HealthGood},
		},
	}
}

func TestRenderWatch(t *testing.T) {
	s := engine.NewSession(fixedTicker{alertSnapshot()}, engine.SessionOptions{AutoRefresh: true})
	v := s.Refresh()

	var buf bytes.Buffer
	renderWatch(&buf, v, 2, 5)
	out := buf.String()
	assert.Contains(t, out, "#2/5")
	assert.Contains(t, out, "[AUTO 5s]")
	assert.Contains(t, out, "Cell_01")
	assert.Contains(t, out, "10.2 W")
	assert.Contains(t, out, "High Temperature Alert: 1 cell(s) running hot!")
	assert.Contains(t, out, "Low Capacity Alert: 1 cell(s) need attention!")
	assert.Contains(t, out, "Last Updated: 2026-05-04 10:11:12")
}

func TestRenderWatchEmptyFilter(t *testing.T) {
	s := engine.NewSession(fixedTicker{alertSnapshot()}, engine.SessionOptions{Processes: []model.Process{}})
	v := s.Refresh()

	var buf bytes.Buffer
	renderWatch(&buf, v, 1, 0)
	out := buf.String()
	assert.Contains(t, out, "[PAUSED]")
	assert.Contains(t, out, "No cells match the current filter.")
	assert.Contains(t, out, "no data")
	assert.Contains(t, out, model.AllNormalBanner)
}

func TestRunWatchStopsAfterCount(t *testing.T) {
	s := engine.NewSession(fixedTicker{alertSnapshot()}, engine.SessionOptions{
		Interval:    10 * time.Millisecond,
		AutoRefresh: true,
	})
	var buf bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, runWatch(ctx, &buf, s, 3))
	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, clearScreen))
	assert.Contains(t, out, "#3/3")
	assert.NotContains(t, out, "Stopped.")
}

func TestRunWatchPausedPrintsOnce(t *testing.T) {
	s := engine.NewSession(fixedTicker{alertSnapshot()}, engine.SessionOptions{Interval: time.Hour})
	var buf bytes.Buffer
	require.NoError(t, runWatch(context.Background(), &buf, s, 0))
	assert.Equal(t, 1, strings.Count(buf.String(), clearScreen))
}
