package engine

import (
	"sync"
	"time"

	"github.com/ftahirops/celltop/model"
)

// DefaultInterval is the auto-refresh period.
const DefaultInterval = 5 * time.Second

// View is everything the presentation layer needs for one render.
type View struct {
	Snapshot   *model.Snapshot      `json:"-"`
	Readings   []model.CellReading  `json:"readings"`
	Total      int                  `json:"total_cells"`
	Metrics    model.DerivedMetrics `json:"metrics"`
	Alerts     model.AlertSet       `json:"alerts"`
	Banner     []model.Alert        `json:"banner"`
	AllNormal  bool                 `json:"all_normal"`
	Processes  []model.Process      `json:"processes"`
	LastUpdate time.Time            `json:"last_update"`
	Auto       bool                 `json:"auto_refresh"`
	Interval   time.Duration        `json:"interval_ns"`
}

// Session is the state of one dashboard session. It is created at session
// start, its snapshot is replaced wholesale on every Refresh, and it is
// dropped when the session ends.
type Session struct {
	ticker Ticker

	mu         sync.RWMutex
	current    *model.Snapshot
	lastUpdate time.Time
	filter     ProcessFilter
	auto       bool
	interval   time.Duration
}

// SessionOptions configures a new session.
type SessionOptions struct {
	Interval    time.Duration
	AutoRefresh bool
	Processes   []model.Process // nil selects every process
}

// NewSession creates a session. No snapshot exists until the first Refresh.
func NewSession(t Ticker, opts SessionOptions) *Session {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	filter := AllProcessesFilter()
	if opts.Processes != nil {
		filter = NewProcessFilter(opts.Processes...)
	}
	return &Session{
		ticker:   t,
		filter:   filter,
		auto:     opts.AutoRefresh,
		interval: interval,
	}
}

// Refresh replaces the current snapshot with a newly generated one.
func (s *Session) Refresh() View {
	snap, _ := s.ticker.Tick()
	if snap == nil {
		return s.View()
	}

	s.mu.Lock()
	s.current = snap
	s.lastUpdate = snap.Timestamp
	s.mu.Unlock()

	return s.View()
}

// Current returns the latest snapshot, or nil before the first refresh.
func (s *Session) Current() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// View applies the filter to the current snapshot and evaluates the result.
func (s *Session) View() View {
	return s.view(nil)
}

// ViewWith is View with f in place of the session filter. The session
// filter is left unchanged.
func (s *Session) ViewWith(f ProcessFilter) View {
	return s.view(&f)
}

func (s *Session) view(override *ProcessFilter) View {
	s.mu.RLock()
	snap := s.current
	filter := s.filter
	if override != nil {
		filter = *override
	}
	v := View{
		Snapshot:   snap,
		Total:      snap.Len(),
		Processes:  filter.Selected(),
		LastUpdate: s.lastUpdate,
		Auto:       s.auto,
		Interval:   s.interval,
	}
	s.mu.RUnlock()

	v.Readings = filter.Apply(snap)
	v.Metrics, v.Alerts = Evaluate(v.Readings)
	v.Banner = v.Alerts.Alerts()
	v.AllNormal = v.Alerts.AllNormal()
	return v
}

// Filter returns the current process filter.
func (s *Session) Filter() ProcessFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetFilter replaces the process filter.
func (s *Session) SetFilter(f ProcessFilter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// ToggleProcess flips one process in the filter.
func (s *Session) ToggleProcess(p model.Process) {
	s.mu.Lock()
	s.filter = s.filter.Toggle(p)
	s.mu.Unlock()
}

// AutoRefresh reports whether timed refresh is enabled.
func (s *Session) AutoRefresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auto
}

// SetAutoRefresh enables or disables timed refresh.
func (s *Session) SetAutoRefresh(on bool) {
	s.mu.Lock()
	s.auto = on
	s.mu.Unlock()
}

// Interval returns the auto-refresh period.
func (s *Session) Interval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval
}
