package engine

import (
	"sync"
	"time"

	"github.com/ftahirops/celltop/model"
)

func reading(id string, process model.Process, status model.Status, tempC, capPct int, powerW float64) model.CellReading {
	return model.CellReading{
		CellID:          id,
		VoltageV:        4.0,
		CurrentA:        1.0,
		TemperatureC:    tempC,
		CapacityPercent: capPct,
		Status:          status,
		Process:         process,
		Health:          model.HealthGood,
		PowerW:          powerW,
	}
}

// mixedSnapshot has 3 CC readings and 5 others, all within normal limits.
func mixedSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Timestamp: time.Unix(1700000000, 0),
		Cells: []model.CellReading{
			reading("Cell_01", model.ProcessCC, model.StatusCharging, 30, 70, 8.0),
			reading("Cell_02", model.ProcessCV, model.StatusCharging, 31, 80, 4.1),
			reading("Cell_03", model.ProcessCC, model.StatusComplete, 32, 90, 2.0),
			reading("Cell_04", model.ProcessFast, model.StatusCharging, 33, 65, 12.3),
			reading("Cell_05", model.ProcessCC, model.StatusCharging, 34, 95, 3.5),
			reading("Cell_06", model.ProcessTrickle, model.StatusIdle, 35, 99, 0.4),
			reading("Cell_07", model.ProcessNone, model.StatusComplete, 36, 100, 0.0),
			reading("Cell_08", model.ProcessTrickle, model.StatusComplete, 37, 88, 0.8),
		},
	}
}

// stubTicker returns copies of a fixed snapshot with increasing timestamps.
type stubTicker struct {
	mu    sync.Mutex
	base  *model.Snapshot
	ticks int
}

func (t *stubTicker) Tick() (*model.Snapshot, *model.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ticks++
	snap := &model.Snapshot{
		Timestamp: t.base.Timestamp.Add(time.Duration(t.ticks) * time.Second),
		Cells:     append([]model.CellReading(nil), t.base.Cells...),
	}
	return snap, EvaluateSnapshot(snap)
}

func (t *stubTicker) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}
