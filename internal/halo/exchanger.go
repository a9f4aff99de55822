// Package halo implements the six-phase ghost-layer exchange protocol of
// §4.3: for each layer, send/receive +Z, -Z, +X, -X, +Y, -Y in that fixed
// order, so that corner and edge ghost voxels are filled correctly by
// transitive exchange through two face hops.
//
// The original C++ source (original_source/src/exchangePDF.cpp) allocates a
// fresh MXP*MYP*MZP transpose buffer on every call and rebuilds MPI strided
// datatypes inside the per-direction loop. Per §9's removed-pattern notes,
// this Exchanger instead owns one scratch buffer and two pack buffers,
// allocated once in New and reused for every Scalar/Distribution call.
package halo

import (
	"fmt"

	"github.com/myousefi2016/scmp-3d-mpi/internal/grid"
	"github.com/myousefi2016/scmp-3d-mpi/internal/lattice"
	"github.com/myousefi2016/scmp-3d-mpi/internal/mpi"
	"github.com/myousefi2016/scmp-3d-mpi/internal/topology"
)

// Tag numbers, one pair per direction, matching the six-phase ordering of
// §4.3 and the 111..666 scheme of original_source/src/exchangePDF.cpp so
// that a +/- exchange between the same two ranks never collides.
const (
	tagTop    = 111
	tagBottom = 222
	tagEast   = 333
	tagWest   = 444
	tagNorth  = 555
	tagSouth  = 666
)

// Exchanger performs halo exchange over a fixed Grid/Topology pair. It owns
// all scratch memory used by the distribution-mode exchange so that no
// allocation happens inside the per-step hot path.
type Exchanger struct {
	grid *grid.Grid
	topo *topology.Topology

	// scratch holds one full scalar field (MXP*MYP*MZP doubles), used as
	// the gather/scatter staging buffer for one distribution direction
	// at a time.
	scratch []float64

	// packX/packY hold one strided face slab gathered into contiguous
	// memory before it is handed to Comm.SendRecv. Sized to one X- or
	// Y-face slab respectively.
	packX []float64
	packY []float64

	// recvX/recvY/recvZ receive one face slab from Comm.SendRecv; the X and
	// Y slabs are scattered back into the field from here.
	recvX []float64
	recvY []float64
	recvZ []float64
}

// New builds an Exchanger for the given grid and topology, allocating its
// scratch buffers once.
func New(g *grid.Grid, t *topology.Topology) *Exchanger {
	return &Exchanger{
		grid:    g,
		topo:    t,
		scratch: make([]float64, g.Voxels()),
		packX:   make([]float64, g.MYP*g.MZP),
		packY:   make([]float64, g.MXP*g.MZP),
		recvX:   make([]float64, g.MYP*g.MZP),
		recvY:   make([]float64, g.MXP*g.MZP),
		recvZ:   make([]float64, g.MXP*g.MYP),
	}
}

// Scalar exchanges one contiguous MXP*MYP*MZP field in place, following the
// six-phase ordering of §4.3.
func (e *Exchanger) Scalar(field []float64) error {
	if len(field) != e.grid.Voxels() {
		return fmt.Errorf("halo: scalar field has %d elements, want %d", len(field), e.grid.Voxels())
	}
	return e.exchangeBuffer(field)
}

// Distribution exchanges the Q-component distribution field f
// (MXP*MYP*MZP*Q doubles, innermost stride a) in place. Each direction a is
// gathered into the retained scratch buffer, exchanged as a scalar field,
// and scattered back — bit-identical to, but without the per-call
// allocation of, the original's per-direction PDF3d transpose.
func (e *Exchanger) Distribution(f []float64) error {
	g := e.grid
	want := g.Voxels() * lattice.Q
	if len(f) != want {
		return fmt.Errorf("halo: distribution field has %d elements, want %d", len(f), want)
	}

	for a := 0; a < lattice.Q; a++ {
		for k := 0; k < g.MZP; k++ {
			for j := 0; j < g.MYP; j++ {
				for i := 0; i < g.MXP; i++ {
					e.scratch[g.Idx3(i, j, k)] = f[g.Idx4(i, j, k, a, lattice.Q)]
				}
			}
		}

		if err := e.exchangeBuffer(e.scratch); err != nil {
			return fmt.Errorf("halo: distribution direction %d: %w", a, err)
		}

		for k := 0; k < g.MZP; k++ {
			for j := 0; j < g.MYP; j++ {
				for i := 0; i < g.MXP; i++ {
					f[g.Idx4(i, j, k, a, lattice.Q)] = e.scratch[g.Idx3(i, j, k)]
				}
			}
		}
	}
	return nil
}

// exchangeBuffer runs the fixed six-phase sweep over buf, which must be a
// scalar field of size MXP*MYP*MZP (either the caller's own field, for
// Scalar, or the retained scratch buffer, for one Distribution direction).
func (e *Exchanger) exchangeBuffer(buf []float64) error {
	g := e.grid
	n := g.N

	for ell := 0; ell < n; ell++ {
		if err := e.zPhase(buf, ell, +1, topology.Top, topology.Bottom, tagTop); err != nil {
			return err
		}
		if err := e.zPhase(buf, ell, -1, topology.Bottom, topology.Top, tagBottom); err != nil {
			return err
		}
		if err := e.xPhase(buf, ell, +1, topology.East, topology.West, tagEast); err != nil {
			return err
		}
		if err := e.xPhase(buf, ell, -1, topology.West, topology.East, tagWest); err != nil {
			return err
		}
		if err := e.yPhase(buf, ell, +1, topology.North, topology.South, tagNorth); err != nil {
			return err
		}
		if err := e.yPhase(buf, ell, -1, topology.South, topology.North, tagSouth); err != nil {
			return err
		}
	}
	return nil
}

// zPhase sends the Z-slab ell layers in from the face named by sign to
// sendFace's neighbor, and receives into the matching ghost slab from
// recvFace's neighbor. Z-slabs are contiguous (MXP*MYP doubles), so no
// packing is needed.
func (e *Exchanger) zPhase(buf []float64, ell, sign int, sendFace, recvFace topology.Face, tag int) error {
	g := e.grid
	sendK := g.InteriorSlabZ(sign, ell)
	recvK := g.GhostSlabZ(sign, ell)

	dest := e.topo.Neighbor[sendFace]
	src := e.topo.Neighbor[recvFace]

	no := g.MXP * g.MYP
	send := buf[sendK*no : sendK*no+no]
	recv := e.recvZ[:no]

	if err := e.topo.Comm.SendRecv(send, dest, tag, recv, src, tag); err != nil {
		return err
	}
	if src != mpi.NoNeighbor {
		copy(buf[recvK*no:recvK*no+no], recv)
	}
	return nil
}

// xPhase is the X-axis analog of zPhase. X-slabs are strided (one element
// every MXP, MYP*MZP repetitions), so they are packed into e.packX before
// sending and unpacked from e.recvX after receiving.
func (e *Exchanger) xPhase(buf []float64, ell, sign int, sendFace, recvFace topology.Face, tag int) error {
	g := e.grid
	sendI := g.InteriorSlabX(sign, ell)
	recvI := g.GhostSlabX(sign, ell)

	dest := e.topo.Neighbor[sendFace]
	src := e.topo.Neighbor[recvFace]

	n := g.MYP * g.MZP
	if dest != mpi.NoNeighbor {
		packX(buf, g, sendI, e.packX[:n])
	}

	if err := e.topo.Comm.SendRecv(e.packX[:n], dest, tag, e.recvX[:n], src, tag); err != nil {
		return err
	}
	if src != mpi.NoNeighbor {
		unpackX(buf, g, recvI, e.recvX[:n])
	}
	return nil
}

// yPhase is the Y-axis analog of zPhase/xPhase. Y-slabs are MXP contiguous
// elements repeated MZP times with stride MXP*MYP.
func (e *Exchanger) yPhase(buf []float64, ell, sign int, sendFace, recvFace topology.Face, tag int) error {
	g := e.grid
	sendJ := g.InteriorSlabY(sign, ell)
	recvJ := g.GhostSlabY(sign, ell)

	dest := e.topo.Neighbor[sendFace]
	src := e.topo.Neighbor[recvFace]

	n := g.MXP * g.MZP
	if dest != mpi.NoNeighbor {
		packY(buf, g, sendJ, e.packY[:n])
	}

	if err := e.topo.Comm.SendRecv(e.packY[:n], dest, tag, e.recvY[:n], src, tag); err != nil {
		return err
	}
	if src != mpi.NoNeighbor {
		unpackY(buf, g, recvJ, e.recvY[:n])
	}
	return nil
}

func packX(buf []float64, g *grid.Grid, i int, out []float64) {
	p := 0
	for k := 0; k < g.MZP; k++ {
		for j := 0; j < g.MYP; j++ {
			out[p] = buf[g.Idx3(i, j, k)]
			p++
		}
	}
}

func unpackX(buf []float64, g *grid.Grid, i int, in []float64) {
	p := 0
	for k := 0; k < g.MZP; k++ {
		for j := 0; j < g.MYP; j++ {
			buf[g.Idx3(i, j, k)] = in[p]
			p++
		}
	}
}

func packY(buf []float64, g *grid.Grid, j int, out []float64) {
	p := 0
	for k := 0; k < g.MZP; k++ {
		base := g.Idx3(0, j, k)
		copy(out[p:p+g.MXP], buf[base:base+g.MXP])
		p += g.MXP
	}
}

func unpackY(buf []float64, g *grid.Grid, j int, in []float64) {
	p := 0
	for k := 0; k < g.MZP; k++ {
		base := g.Idx3(0, j, k)
		copy(buf[base:base+g.MXP], in[p:p+g.MXP])
		p += g.MXP
	}
}
