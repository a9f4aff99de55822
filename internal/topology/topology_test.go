package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myousefi2016/scmp-3d-mpi/internal/mpi"
	"github.com/myousefi2016/scmp-3d-mpi/internal/mpi/mpitest"
)

func TestNewRejectsMismatchedSize(t *testing.T) {
	comms := mpitest.New(2)
	_, err := New(comms[0], Shape{Px: 2, Py: 2, Pz: 1})
	assert.Error(t, err)
}

func TestNeighborsNonPeriodic(t *testing.T) {
	comms := mpitest.New(27)
	shape := Shape{Px: 3, Py: 3, Pz: 3}

	middle, err := New(comms[rankOf(1, 1, 1, 3, 3)], shape)
	require.NoError(t, err)
	for f := West; f <= Top; f++ {
		assert.NotEqual(t, mpi.NoNeighbor, middle.Neighbor[f], "face %s", f)
	}
	assert.Empty(t, middle.BoundaryFaces())

	corner, err := New(comms[rankOf(0, 0, 0, 3, 3)], shape)
	require.NoError(t, err)
	assert.Equal(t, mpi.NoNeighbor, corner.Neighbor[West])
	assert.Equal(t, mpi.NoNeighbor, corner.Neighbor[South])
	assert.Equal(t, mpi.NoNeighbor, corner.Neighbor[Bottom])
	assert.NotEqual(t, mpi.NoNeighbor, corner.Neighbor[East])
	assert.ElementsMatch(t, []Face{West, South, Bottom}, corner.BoundaryFaces())
}

func TestNeighborsPeriodicWrap(t *testing.T) {
	comms := mpitest.New(4)
	shape := Shape{Px: 4, Py: 1, Pz: 1, PeriodicX: true, PeriodicY: true, PeriodicZ: true}

	topo, err := New(comms[0], shape)
	require.NoError(t, err)
	assert.Equal(t, 3, topo.Neighbor[West])
	assert.Equal(t, 1, topo.Neighbor[East])
	assert.Empty(t, topo.BoundaryFaces())
}

func TestCoordsRoundTrip(t *testing.T) {
	Px, Py := 3, 4
	for rank := 0; rank < 60; rank++ {
		px, py, pz := coordsOf(rank, Px, Py)
		assert.Equal(t, rank, rankOf(px, py, pz, Px, Py))
	}
}
