package engine

import (
	"sync"

	"github.com/ftahirops/celltop/model"
)

// Engine orchestrates generation and evaluation.
type Engine struct {
	gen    *Generator
	tickMu sync.Mutex // serializes Tick() calls
}

// NewEngine creates an engine whose generator uses seed (0 = clock-seeded).
func NewEngine(seed int64) *Engine {
	return &Engine{gen: NewGenerator(seed)}
}

// Tick generates a new snapshot and evaluates it as a whole.
func (e *Engine) Tick() (*model.Snapshot, *model.Result) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	snap := e.gen.Generate()
	return snap, EvaluateSnapshot(snap)
}
