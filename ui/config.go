package ui

import (
	"github.com/ftahirops/celltop/config"
	"github.com/ftahirops/celltop/engine"
)

// saveDefaultFilter persists the current process filter to the config file.
func saveDefaultFilter(path string, f engine.ProcessFilter) error {
	sel := f.Selected()
	names := make([]string, len(sel))
	for i, p := range sel {
		names[i] = string(p)
	}
	return config.SaveProcesses(path, names)
}
