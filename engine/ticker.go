package engine

import "github.com/ftahirops/celltop/model"

// Ticker abstracts a data source that can produce snapshots.
type Ticker interface {
	Tick() (*model.Snapshot, *model.Result)
}
