package engine

import (
	"testing"

	"github.com/ftahirops/celltop/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterByProcess(t *testing.T) {
	snap := mixedSnapshot()
	filtered := NewProcessFilter(model.ProcessCC).Apply(snap)

	require.Len(t, filtered, 3)
	for _, c := range filtered {
		assert.Equal(t, model.ProcessCC, c.Process)
	}
	assert.Equal(t, []string{"Cell_01", "Cell_03", "Cell_05"},
		[]string{filtered[0].CellID, filtered[1].CellID, filtered[2].CellID})

	m, _ := Evaluate(filtered)
	assert.Equal(t, 3, m.Samples)
	assert.Equal(t, 2, m.ActiveCount)
	assert.Equal(t, 13.5, m.TotalPowerW)
	assert.Equal(t, 32.0, m.AvgTemperatureC)
	assert.InDelta(t, 85.0, m.AvgCapacityPercent, 1e-9)
}

func TestFilterDefaultSelectsAll(t *testing.T) {
	f := AllProcessesFilter()
	assert.True(t, f.IsAll())
	assert.Equal(t, "all", f.String())
	assert.Len(t, f.Apply(mixedSnapshot()), 8)
}

func TestFilterEmptySelection(t *testing.T) {
	f := NewProcessFilter()
	assert.Empty(t, f.Apply(mixedSnapshot()))
	assert.Equal(t, "none", f.String())

	var zero ProcessFilter
	assert.Empty(t, zero.Apply(mixedSnapshot()))
	assert.Empty(t, zero.Apply(nil))

	m, alerts := Evaluate(zero.Apply(mixedSnapshot()))
	assert.False(t, m.HasData())
	assert.True(t, alerts.AllNormal())
}

func TestFilterToggleReturnsCopy(t *testing.T) {
	f := NewProcessFilter(model.ProcessCC)
	g := f.Toggle(model.ProcessCV)

	assert.Equal(t, []model.Process{model.ProcessCC}, f.Selected())
	assert.Equal(t, []model.Process{model.ProcessCC, model.ProcessCV}, g.Selected())
	assert.Equal(t, "CC,CV", g.String())

	h := g.Toggle(model.ProcessCC)
	assert.Equal(t, []model.Process{model.ProcessCV}, h.Selected())
	assert.True(t, h.Contains(model.ProcessCV))
	assert.False(t, h.Contains(model.ProcessCC))
}

func TestParseProcesses(t *testing.T) {
	got, err := ParseProcesses([]string{"cc, Trickle", "FAST"})
	require.NoError(t, err)
	assert.Equal(t, []model.Process{model.ProcessCC, model.ProcessTrickle, model.ProcessFast}, got)

	got, err = ParseProcesses(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseProcesses([]string{"CC", "boost"})
	assert.EqualError(t, err, `unknown process "boost"`)
}
