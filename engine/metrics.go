package engine

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ftahirops/celltop/model"
)

// MetricsStore holds the latest snapshot for exporters.
type MetricsStore struct {
	mu     sync.RWMutex
	snap   *model.Snapshot
	result *model.Result
	ticks  uint64
	ts     time.Time
}

// NewMetricsStore creates a new store.
func NewMetricsStore() *MetricsStore {
	return &MetricsStore{}
}

// Update stores the latest sample.
func (s *MetricsStore) Update(snap *model.Snapshot, result *model.Result) {
	s.mu.Lock()
	s.snap = snap
	s.result = result
	s.ticks++
	s.ts = time.Now()
	s.mu.Unlock()
}

// Snapshot returns the latest stored sample.
func (s *MetricsStore) Snapshot() (*model.Snapshot, *model.Result, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.result, s.ts
}

// Handler exposes Prometheus metrics for the latest sample.
func (s *MetricsStore) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		snap, result, ticks := s.snap, s.result, s.ticks
		s.mu.RUnlock()
		if snap == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("# no data yet\n"))
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writePrometheus(w, snap, result, ticks)
	})
}

// instrumentedTicker updates a metrics store on each tick.
type instrumentedTicker struct {
	inner Ticker
	store *MetricsStore
}

// NewInstrumentedTicker wraps a ticker and updates the metrics store.
func NewInstrumentedTicker(inner Ticker, store *MetricsStore) Ticker {
	return &instrumentedTicker{inner: inner, store: store}
}

func (t *instrumentedTicker) Tick() (*model.Snapshot, *model.Result) {
	snap, result := t.inner.Tick()
	if snap != nil {
		t.store.Update(snap, result)
	}
	return snap, result
}

func writePrometheus(w io.Writer, snap *model.Snapshot, result *model.Result, ticks uint64) {
	write := func(format string, args ...interface{}) {
		_, _ = fmt.Fprintf(w, format, args...)
	}

	write("# TYPE celltop_up gauge\n")
	write("celltop_up 1\n")
	write("# TYPE celltop_refresh_total counter\n")
	write("celltop_refresh_total %d\n", ticks)
	write("# TYPE celltop_snapshot_timestamp_seconds gauge\n")
	write("celltop_snapshot_timestamp_seconds %d\n", snap.Timestamp.Unix())

	if result != nil {
		m := result.Metrics
		write("# TYPE celltop_active_cells gauge\n")
		write("celltop_active_cells %d\n", m.ActiveCount)
		write("# TYPE celltop_total_power_watts gauge\n")
		write("celltop_total_power_watts %f\n", m.TotalPowerW)
		if m.HasData() {
			write("# TYPE celltop_avg_temperature_celsius gauge\n")
			write("celltop_avg_temperature_celsius %f\n", m.AvgTemperatureC)
			write("# TYPE celltop_avg_capacity_percent gauge\n")
			write("celltop_avg_capacity_percent %f\n", m.AvgCapacityPercent)
		}

		a := result.Alerts
		write("# TYPE celltop_alert_cells gauge\n")
		write("celltop_alert_cells{kind=%q} %d\n", model.AlertOverTemperature, len(a.OverTemperature))
		write("celltop_alert_cells{kind=%q} %d\n", model.AlertLowCapacity, len(a.LowCapacity))
		write("celltop_alert_cells{kind=%q} %d\n", model.AlertErrorState, len(a.ErrorState))
	}

	write("# TYPE celltop_cell_voltage_volts gauge\n")
	write("# TYPE celltop_cell_current_amps gauge\n")
	write("# TYPE celltop_cell_temperature_celsius gauge\n")
	write("# TYPE celltop_cell_capacity_percent gauge\n")
	write("# TYPE celltop_cell_power_watts gauge\n")
	write("# TYPE celltop_cell_info gauge\n")
	for _, c := range snap.Cells {
		write("celltop_cell_voltage_volts{cell=%q} %f\n", c.CellID, c.VoltageV)
		write("celltop_cell_current_amps{cell=%q} %f\n", c.CellID, c.CurrentA)
		write("celltop_cell_temperature_celsius{cell=%q} %d\n", c.CellID, c.TemperatureC)
		write("celltop_cell_capacity_percent{cell=%q} %d\n", c.CellID, c.CapacityPercent)
		write("celltop_cell_power_watts{cell=%q} %f\n", c.CellID, c.PowerW)
		write("celltop_cell_info{cell=%q,status=%q,process=%q,health=%q} 1\n",
			c.CellID, c.Status, c.Process, c.Health)
	}
}
