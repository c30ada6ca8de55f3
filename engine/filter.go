package engine

import (
	"fmt"
	"strings"

	"github.com/ftahirops/celltop/model"
)

// ProcessFilter is a multi-select over charging processes.
// The zero value selects nothing; use AllProcessesFilter for the default.
type ProcessFilter struct {
	selected map[model.Process]bool
}

// NewProcessFilter selects exactly the given processes.
func NewProcessFilter(processes ...model.Process) ProcessFilter {
	f := ProcessFilter{selected: make(map[model.Process]bool, len(processes))}
	for _, p := range processes {
		f.selected[p] = true
	}
	return f
}

// AllProcessesFilter selects every process.
func AllProcessesFilter() ProcessFilter {
	return NewProcessFilter(model.AllProcesses...)
}

// Contains reports whether p is selected.
func (f ProcessFilter) Contains(p model.Process) bool {
	return f.selected[p]
}

// Toggle returns a copy of the filter with p flipped.
func (f ProcessFilter) Toggle(p model.Process) ProcessFilter {
	out := NewProcessFilter(f.Selected()...)
	if out.selected[p] {
		delete(out.selected, p)
	} else {
		out.selected[p] = true
	}
	return out
}

// Selected returns the selected processes in display order.
func (f ProcessFilter) Selected() []model.Process {
	out := make([]model.Process, 0, len(f.selected))
	for _, p := range model.AllProcesses {
		if f.selected[p] {
			out = append(out, p)
		}
	}
	return out
}

// IsAll reports whether every process is selected.
func (f ProcessFilter) IsAll() bool {
	return len(f.Selected()) == len(model.AllProcesses)
}

// Apply keeps the readings whose process is selected, in snapshot order.
func (f ProcessFilter) Apply(snap *model.Snapshot) []model.CellReading {
	out := []model.CellReading{}
	if snap == nil {
		return out
	}
	for _, c := range snap.Cells {
		if f.selected[c.Process] {
			out = append(out, c)
		}
	}
	return out
}

func (f ProcessFilter) String() string {
	sel := f.Selected()
	switch {
	case len(sel) == 0:
		return "none"
	case f.IsAll():
		return "all"
	}
	names := make([]string, len(sel))
	for i, p := range sel {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}

// ParseProcesses converts process names (case-insensitive) into processes.
// Entries may themselves be comma-separated. No names yields an empty,
// non-nil selection.
func ParseProcesses(names []string) ([]model.Process, error) {
	out := []model.Process{}
	for _, raw := range names {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			p, ok := lookupProcess(name)
			if !ok {
				return nil, fmt.Errorf("unknown process %q", name)
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func lookupProcess(name string) (model.Process, bool) {
	for _, p := range model.AllProcesses {
		if strings.EqualFold(string(p), name) {
			return p, true
		}
	}
	return "", false
}
