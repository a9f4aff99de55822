package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() *raw {
	var r raw
	r.Grid.Nx, r.Grid.Ny, r.Grid.Nz = 8, 8, 8
	r.Process.Px, r.Process.Py, r.Process.Pz = 2, 2, 2
	r.Lattice.GhostLayers = 1
	r.Physics.Nu = 0.1
	r.Physics.RhoFloor = 1e-6
	r.Run.TotalSteps = 100
	r.Run.OutputEvery = 10
	r.Run.DivergenceCheckEvery = 5
	r.Output.Directory = "out"
	r.Output.BaseName = "run"
	return &r
}

func TestFromRawAcceptsValidConfig(t *testing.T) {
	cfg, err := fromRaw(validRaw())
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Nx)
	mx, my, mz := cfg.LocalInterior()
	assert.Equal(t, 4, mx)
	assert.Equal(t, 4, my)
	assert.Equal(t, 4, mz)
	assert.Greater(t, float64(cfg.Tau), 0.5)
}

func TestFromRawRejectsNonDivisibleGrid(t *testing.T) {
	r := validRaw()
	r.Grid.Nx = 9
	_, err := fromRaw(r)
	assert.ErrorContains(t, err, "Nx=9")
}

func TestFromRawRejectsBothTauAndNu(t *testing.T) {
	r := validRaw()
	r.Physics.Tau = 0.8
	_, err := fromRaw(r)
	assert.ErrorContains(t, err, "exactly one")
}

func TestFromRawRejectsNeitherTauNorNu(t *testing.T) {
	r := validRaw()
	r.Physics.Nu = 0
	_, err := fromRaw(r)
	assert.ErrorContains(t, err, "exactly one")
}

func TestFromRawRejectsUnstableTau(t *testing.T) {
	r := validRaw()
	r.Physics.Nu = 0
	r.Physics.Tau = 0.5
	_, err := fromRaw(r)
	assert.Error(t, err)
}

func TestFromRawRejectsMissingOutputDirectory(t *testing.T) {
	r := validRaw()
	r.Output.Directory = ""
	_, err := fromRaw(r)
	assert.ErrorContains(t, err, "Directory")
}

func TestFromRawRejectsZeroGhostLayers(t *testing.T) {
	r := validRaw()
	r.Lattice.GhostLayers = 0
	_, err := fromRaw(r)
	assert.ErrorContains(t, err, "GhostLayers")
}
