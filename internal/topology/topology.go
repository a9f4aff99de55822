// Package topology builds the Cartesian process grid described in §4.1 and
// resolves each rank's six face neighbors. gompi (see internal/mpi) does not
// expose MPI_Cart_create/MPI_Cart_shift directly, so this package computes
// Cartesian coordinates and neighbor ranks itself from plain rank arithmetic
// — the same row-major scheme internal/grid uses for voxel indices, applied
// one level up to ranks instead of voxels.
package topology

import (
	"fmt"

	"github.com/myousefi2016/scmp-3d-mpi/internal/mpi"
)

// Face identifies one of the six faces of a subdomain.
type Face int

const (
	West Face = iota
	East
	South
	North
	Bottom
	Top
)

func (f Face) String() string {
	switch f {
	case West:
		return "WEST"
	case East:
		return "EAST"
	case South:
		return "SOUTH"
	case North:
		return "NORTH"
	case Bottom:
		return "BOTTOM"
	case Top:
		return "TOP"
	default:
		return "UNKNOWN"
	}
}

// Shape is the Cartesian process-grid shape and per-axis periodicity.
type Shape struct {
	Px, Py, Pz                   int
	PeriodicX, PeriodicY, PeriodicZ bool
}

// Topology is the Cartesian communicator abstraction of §4.1: a rank's
// coordinates in the process grid and its six face neighbor ranks.
type Topology struct {
	Comm  mpi.Comm
	Shape Shape

	MyID   int
	Px, Py, Pz int // this rank's coordinates

	Neighbor [6]int // indexed by Face; mpi.NoNeighbor if none
}

// New builds the topology for the calling rank. comm.Size() must equal
// shape.Px*shape.Py*shape.Pz.
func New(comm mpi.Comm, shape Shape) (*Topology, error) {
	want := shape.Px * shape.Py * shape.Pz
	if got := comm.Size(); got != want {
		return nil, fmt.Errorf("topology: process grid %dx%dx%d needs %d ranks, got %d",
			shape.Px, shape.Py, shape.Pz, want, got)
	}

	myid := comm.Rank()
	px, py, pz := coordsOf(myid, shape.Px, shape.Py)

	t := &Topology{
		Comm:  comm,
		Shape: shape,
		MyID:  myid,
		Px:    px, Py: py, Pz: pz,
	}

	t.Neighbor[West] = t.shift(-1, 0, 0)
	t.Neighbor[East] = t.shift(1, 0, 0)
	t.Neighbor[South] = t.shift(0, -1, 0)
	t.Neighbor[North] = t.shift(0, 1, 0)
	t.Neighbor[Bottom] = t.shift(0, 0, -1)
	t.Neighbor[Top] = t.shift(0, 0, 1)

	return t, nil
}

// rankOf linearizes (px,py,pz) the same way internal/grid linearizes voxels:
// x varies fastest, then y, then z.
func rankOf(px, py, pz, Px, Py int) int {
	return px + py*Px + pz*Px*Py
}

func coordsOf(rank, Px, Py int) (px, py, pz int) {
	pz = rank / (Px * Py)
	rem := rank % (Px * Py)
	py = rem / Px
	px = rem % Px
	return
}

// shift resolves the neighbor rank one step along (dx,dy,dz) (exactly one of
// which is nonzero), honoring per-axis periodicity, and returns
// mpi.NoNeighbor if the shift falls off a non-periodic edge.
func (t *Topology) shift(dx, dy, dz int) int {
	px, py, pz := t.Px+dx, t.Py+dy, t.Pz+dz

	px, okx := wrap(px, t.Shape.Px, t.Shape.PeriodicX)
	py, oky := wrap(py, t.Shape.Py, t.Shape.PeriodicY)
	pz, okz := wrap(pz, t.Shape.Pz, t.Shape.PeriodicZ)

	if !okx || !oky || !okz {
		return mpi.NoNeighbor
	}
	return rankOf(px, py, pz, t.Shape.Px, t.Shape.Py)
}

func wrap(c, extent int, periodic bool) (int, bool) {
	if c >= 0 && c < extent {
		return c, true
	}
	if !periodic {
		return 0, false
	}
	return ((c % extent) + extent) % extent, true
}

// BoundaryFaces returns the faces on which this rank has no neighbor —
// i.e., the faces where it sits on a non-periodic domain boundary.
func (t *Topology) BoundaryFaces() []Face {
	var faces []Face
	for f := West; f <= Top; f++ {
		if t.Neighbor[f] == mpi.NoNeighbor {
			faces = append(faces, f)
		}
	}
	return faces
}
