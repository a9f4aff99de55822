package lbm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myousefi2016/scmp-3d-mpi/internal/grid"
)

func TestNewTauStabilityBound(t *testing.T) {
	_, err := NewTau(0)
	assert.Error(t, err, "nu=0 gives tau=0.5, which is not > 0.5")

	tau, err := NewTau(1.0)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, float64(tau), 1e-12)
}

func TestCollideIsNoOpAtEquilibrium(t *testing.T) {
	g, err := grid.New(1, 3, 3, 3)
	require.NoError(t, err)

	fl := NewFields(g)
	fl.SetEquilibrium(g, 1.0, 0.02, -0.01, 0.0)
	fl.Reduce(g, 1e-6)

	before := append([]float64(nil), fl.F()...)

	tau, err := NewTau(0.1)
	require.NoError(t, err)
	fl.Collide(g, tau)

	for i, v := range fl.F() {
		assert.InDelta(t, before[i], v, 1e-9, "index %d", i)
	}
}

func TestCollideRelaxesTowardEquilibrium(t *testing.T) {
	g, err := grid.New(1, 1, 1, 1)
	require.NoError(t, err)

	fl := NewFields(g)
	fl.SetEquilibrium(g, 1.0, 0, 0, 0)

	base := g.Idx4(1, 1, 1, 0, 19)
	fl.f[base] += 0.1 // perturb direction 0 away from equilibrium

	fl.Reduce(g, 1e-6)
	eqBefore := fl.f[base]

	tau, err := NewTau(2.0) // large tau, slow relaxation
	require.NoError(t, err)
	fl.Collide(g, tau)

	assert.Less(t, fl.f[base], eqBefore)
	assert.Greater(t, fl.f[base], eqBefore-0.1)
}
