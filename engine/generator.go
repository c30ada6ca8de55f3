package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ftahirops/celltop/model"
)

// Generator produces synthetic snapshots of the charging bank.
type Generator struct {
	mu  sync.Mutex // guards rng
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator creates a generator. A zero seed seeds from the clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Generate samples one reading per cell, Cell_01 through Cell_08 in order.
func (g *Generator) Generate() *model.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now()
	snap := &model.Snapshot{
		Timestamp: ts,
		Cells:     make([]model.CellReading, 0, model.CellCount),
	}
	for i := 1; i <= model.CellCount; i++ {
		snap.Cells = append(snap.Cells, g.sampleCell(i, ts))
	}
	return snap
}

func (g *Generator) sampleCell(index int, ts time.Time) model.CellReading {
	p := Profiles[RoleFor(index)]

	voltage := roundTo(g.uniform(p.Voltage), voltagePlaces)
	current := roundTo(g.uniform(p.Current), currentPlaces)
	capacity := g.intn(p.Capacity)
	status := pick(g.rng, p.Statuses)
	process := pick(g.rng, p.Processes)

	temperature := g.intn(temperatureRange)
	health := model.HealthWarning
	if temperature < healthForcedAtC {
		health = pick(g.rng, healthChoices)
	}

	return model.CellReading{
		CellID:          model.CellID(index),
		VoltageV:        voltage,
		CurrentA:        current,
		TemperatureC:    temperature,
		CapacityPercent: capacity,
		Status:          status,
		Process:         process,
		Health:          health,
		PowerW:          PowerW(voltage, current),
		LastUpdate:      ts,
	}
}

// PowerW returns voltage × current rounded to one decimal place.
func PowerW(voltage, current float64) float64 {
	return roundTo(voltage*current, powerPlaces)
}

func (g *Generator) uniform(r floatRange) float64 {
	return r.Min + g.rng.Float64()*(r.Max-r.Min)
}

// intn draws uniformly from the inclusive range.
func (g *Generator) intn(r intRange) int {
	return r.Min + g.rng.Intn(r.Max-r.Min+1)
}

// pick draws one value with probability proportional to its weight.
func pick[T any](rng *rand.Rand, choices []choice[T]) T {
	total := 0
	for _, c := range choices {
		total += c.Weight
	}
	n := rng.Intn(total)
	for _, c := range choices {
		if n < c.Weight {
			return c.Value
		}
		n -= c.Weight
	}
	return choices[len(choices)-1].Value
}
