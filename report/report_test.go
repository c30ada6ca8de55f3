package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftahirops/celltop/engine"
	"github.com/ftahirops/celltop/model"
)

type fixedTicker struct{ snap *model.Snapshot }

func (f fixedTicker) Tick() (*model.Snapshot, *model.Result) {
	return f.snap, engine.EvaluateSnapshot(f.snap)
}

func cell(id string, p model.Process, st model.Status, temp, capPct int, power float64) model.CellReading {
	return model.CellReading{
		CellID: id, VoltageV: 4.1, CurrentA: 1.5, TemperatureC: temp, CapacityPercent: capPct,
		Status: st, Process: p, Health: model.HealthGood, PowerW: power,
	}
}

func viewOf(t *testing.T, procs []model.Process, cells ...model.CellReading) engine.View {
	t.Helper()
	snap := &model.Snapshot{Timestamp: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC), Cells: cells}
	s := engine.NewSession(fixedTicker{snap}, engine.SessionOptions{Processes: procs})
	return s.Refresh()
}

func TestMarkdownNormal(t *testing.T) {
	v := viewOf(t, nil,
		cell("Cell_01", model.ProcessCC, model.StatusCharging, 30, 90, 6.2),
		cell("Cell_05", model.ProcessTrickle, model.StatusIdle, 32, 95, 0.4),
	)
	md := Markdown(v)
	assert.Contains(t, md, "**Last Updated:** 2026-03-01 12:30:00")
	assert.Contains(t, md, "**Filter:** all (2 of 2 cells)")
	assert.Contains(t, md, "- **Active Cells:** 1")
	assert.Contains(t, md, "- **Total Power:** 6.6 W")
	assert.Contains(t, md, "(Normal)")
	assert.Contains(t, md, "(Optimal)")
	assert.Contains(t, md, model.AllNormalBanner)
	assert.Contains(t, md, "| Cell_01 | Charging | CC | 4.10 | 1.5 | 6.2 | 30 | 90 | Good |")
}

func TestMarkdownAlertsAndEmptyFilter(t *testing.T) {
	v := viewOf(t, []model.Process{},
		cell("Cell_01", model.ProcessCC, model.StatusError, 44, 10, 6.2),
	)
	md := Markdown(v)
	assert.Contains(t, md, "**Filter:** none (0 of 1 cells)")
	assert.Contains(t, md, "Avg Temperature:** no data")
	assert.Contains(t, md, "No cells match the current filter.")

	v = viewOf(t, nil, cell("Cell_01", model.ProcessCC, model.StatusError, 44, 10, 6.2))
	md = Markdown(v)
	assert.Contains(t, md, "**[CRITICAL]** High Temperature Alert: 1 cell(s) running hot! (Cell_01)")
	assert.Contains(t, md, "**[WARNING]** Low Capacity Alert: 1 cell(s) need attention! (Cell_01)")
	assert.Contains(t, md, "**[CRITICAL]** Error Alert: 1 cell(s) in error state! (Cell_01)")
	assert.NotContains(t, md, model.AllNormalBanner)
}

func TestWriteJSONIncludesSnapshot(t *testing.T) {
	v := viewOf(t, []model.Process{model.ProcessCV},
		cell("Cell_01", model.ProcessCC, model.StatusCharging, 30, 90, 6.2),
		cell("Cell_02", model.ProcessCV, model.StatusCharging, 31, 91, 5.0),
	)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, v, time.Unix(0, 0)))

	var doc struct {
		Snapshot model.Snapshot `json:"snapshot"`
		View     struct {
			Readings []model.CellReading `json:"readings"`
		} `json:"view"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Len(t, doc.Snapshot.Cells, 2)
	require.Len(t, doc.View.Readings, 1)
	assert.Equal(t, "Cell_02", doc.View.Readings[0].CellID)
}

func TestSaveFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	v := viewOf(t, nil, cell("Cell_01", model.ProcessCC, model.StatusCharging, 30, 90, 6.2))
	now := time.Date(2026, 3, 1, 12, 30, 5, 0, time.Local)

	p, err := SaveMarkdown(dir, v, now)
	require.NoError(t, err)
	assert.Equal(t, "celltop-20260301-123005.md", filepath.Base(p))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Battery Charging Report"))

	p, err = SaveJSON(dir, v, now)
	require.NoError(t, err)
	assert.Equal(t, ".json", filepath.Ext(p))
}
