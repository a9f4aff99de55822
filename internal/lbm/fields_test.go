package lbm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myousefi2016/scmp-3d-mpi/internal/grid"
)

func TestReduceRecoversEquilibriumState(t *testing.T) {
	g, err := grid.New(1, 4, 4, 4)
	require.NoError(t, err)

	fl := NewFields(g)
	fl.SetEquilibrium(g, 1.2, 0.05, -0.02, 0.01)
	fl.Reduce(g, 1e-6)

	g.ForEachInterior(func(i, j, k int) {
		idx3 := g.Idx3(i, j, k)
		assert.InDelta(t, 1.2, fl.Rho[idx3], 1e-9)
		assert.InDelta(t, 0.05, fl.U[idx3], 1e-9)
		assert.InDelta(t, -0.02, fl.V[idx3], 1e-9)
		assert.InDelta(t, 0.01, fl.W[idx3], 1e-9)
	})
}

func TestReduceClampsDivisorAtRhoFloorNotStoredRho(t *testing.T) {
	g, err := grid.New(1, 1, 1, 1)
	require.NoError(t, err)

	fl := NewFields(g)
	fl.SetEquilibrium(g, 0.0, 0, 0, 0)
	fl.Reduce(g, 1e-3)

	idx3 := g.Idx3(1, 1, 1)
	assert.Equal(t, 0.0, fl.Rho[idx3])
	assert.False(t, math.IsNaN(fl.U[idx3]))
}

func TestHasDivergenceDetectsNaNAndLowDensity(t *testing.T) {
	g, err := grid.New(1, 2, 2, 2)
	require.NoError(t, err)

	fl := NewFields(g)
	fl.SetEquilibrium(g, 1.0, 0, 0, 0)
	fl.Reduce(g, 1e-6)
	assert.False(t, fl.HasDivergence(g, 1e-6))

	fl.Rho[g.Idx3(1, 1, 1)] = math.NaN()
	assert.True(t, fl.HasDivergence(g, 1e-6))

	fl.Rho[g.Idx3(1, 1, 1)] = 0
	fl.U[g.Idx3(1, 1, 1)] = 0
	assert.True(t, fl.HasDivergence(g, 1e-6))
}
