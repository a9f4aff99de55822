package halo

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myousefi2016/scmp-3d-mpi/internal/grid"
	"github.com/myousefi2016/scmp-3d-mpi/internal/lattice"
	"github.com/myousefi2016/scmp-3d-mpi/internal/mpi/mpitest"
	"github.com/myousefi2016/scmp-3d-mpi/internal/topology"
)

// TestScalarExchangeFillsGhostsFromNeighbor runs a 2x1x1 periodic ring and
// checks that after one exchange, each rank's ghost voxels hold its
// neighbor's interior value, matching the ghost-fill invariant of §4.3.
func TestScalarExchangeFillsGhostsFromNeighbor(t *testing.T) {
	comms := mpitest.New(2)
	shape := topology.Shape{Px: 2, Py: 1, Pz: 1, PeriodicX: true}

	topos := make([]*topology.Topology, 2)
	for r := 0; r < 2; r++ {
		topo, err := topology.New(comms[r], shape)
		require.NoError(t, err)
		topos[r] = topo
	}

	g, err := grid.New(1, 3, 3, 3)
	require.NoError(t, err)

	fields := make([][]float64, 2)
	for r := 0; r < 2; r++ {
		f := make([]float64, g.Voxels())
		g.ForEachInterior(func(i, j, k int) {
			f[g.Idx3(i, j, k)] = float64(r + 1)
		})
		fields[r] = f
	}

	var wg sync.WaitGroup
	wg.Add(2)
	for r := 0; r < 2; r++ {
		go func(r int) {
			defer wg.Done()
			ex := New(g, topos[r])
			require.NoError(t, ex.Scalar(fields[r]))
		}(r)
	}
	wg.Wait()

	westGhostI := g.GhostSlabX(1, 0)
	eastGhostI := g.GhostSlabX(-1, 0)

	assert.Equal(t, 2.0, fields[0][g.Idx3(eastGhostI, 2, 2)])
	assert.Equal(t, 2.0, fields[0][g.Idx3(westGhostI, 2, 2)])
	assert.Equal(t, 1.0, fields[1][g.Idx3(eastGhostI, 2, 2)])
	assert.Equal(t, 1.0, fields[1][g.Idx3(westGhostI, 2, 2)])
}

func TestDistributionExchangeRoundTripsAllDirections(t *testing.T) {
	comms := mpitest.New(2)
	shape := topology.Shape{Px: 2, Py: 1, Pz: 1, PeriodicX: true}

	topos := make([]*topology.Topology, 2)
	for r := 0; r < 2; r++ {
		topo, err := topology.New(comms[r], shape)
		require.NoError(t, err)
		topos[r] = topo
	}

	g, err := grid.New(1, 2, 2, 2)
	require.NoError(t, err)

	dists := make([][]float64, 2)
	for r := 0; r < 2; r++ {
		f := make([]float64, g.Voxels()*lattice.Q)
		g.ForEachInterior(func(i, j, k int) {
			base := g.Idx4(i, j, k, 0, lattice.Q)
			for a := 0; a < lattice.Q; a++ {
				f[base+a] = float64(r*100 + a)
			}
		})
		dists[r] = f
	}

	var wg sync.WaitGroup
	wg.Add(2)
	for r := 0; r < 2; r++ {
		go func(r int) {
			defer wg.Done()
			ex := New(g, topos[r])
			require.NoError(t, ex.Distribution(dists[r]))
		}(r)
	}
	wg.Wait()

	eastGhostI := g.GhostSlabX(-1, 0)
	base := g.Idx4(eastGhostI, g.N, g.N, 0, lattice.Q)
	for a := 0; a < lattice.Q; a++ {
		assert.Equal(t, float64(100+a), dists[0][base+a], "direction %d", a)
	}
}
