// Package lbm implements the LB time-step pipeline: macroscopic reduction,
// BGK collision, and streaming over the D3Q19 stencil (§4.4, §4.5). The
// split between Reduce, Collide, and Stream mirrors the teacher's own
// collide()/stream() split in
// _examples/BoltyTheDog-boltzmann-sim/main.go, generalized from the 9
// D2Q9 direction arrays to one Q-strided distribution slice and from a
// flat [][]float64 canvas to the padded 3D/4D index arithmetic grid.Grid
// defines.
package lbm

import (
	"math"

	"github.com/myousefi2016/scmp-3d-mpi/internal/grid"
	"github.com/myousefi2016/scmp-3d-mpi/internal/lattice"
)

// Fields holds one rank's padded state: the distribution function and the
// macroscopic variables it reduces to. f and fNext are double-buffered so
// that Stream never reads and writes the same slice (§4.4 "non-aliasing").
type Fields struct {
	Rho, U, V, W []float64
	f, fNext     []float64
}

// NewFields allocates all arrays for g, once, as §3 "Lifecycles" requires.
func NewFields(g *grid.Grid) *Fields {
	n := g.Voxels()
	return &Fields{
		Rho:   make([]float64, n),
		U:     make([]float64, n),
		V:     make([]float64, n),
		W:     make([]float64, n),
		f:     make([]float64, n*lattice.Q),
		fNext: make([]float64, n*lattice.Q),
	}
}

// F returns the current distribution slice, for the halo exchanger and for
// tests that want to seed or inspect it directly.
func (fl *Fields) F() []float64 { return fl.f }

// SetEquilibrium initializes every voxel (interior and ghost) of f, and of
// the fNext buffer Stream swaps in, to the equilibrium distribution for the
// given (rho, ux, uy, uz), the standard way to start a quiescent or
// uniform-flow run (§8 scenarios 1-2).
func (fl *Fields) SetEquilibrium(g *grid.Grid, rho, ux, uy, uz float64) {
	for idx := 0; idx < g.Voxels(); idx++ {
		fl.Rho[idx] = rho
		fl.U[idx] = ux
		fl.V[idx] = uy
		fl.W[idx] = uz
	}
	for k := 0; k < g.MZP; k++ {
		for j := 0; j < g.MYP; j++ {
			for i := 0; i < g.MXP; i++ {
				base := g.Idx4(i, j, k, 0, lattice.Q)
				equilibriumInto(fl.f[base:base+lattice.Q], rho, ux, uy, uz)
				copy(fl.fNext[base:base+lattice.Q], fl.f[base:base+lattice.Q])
			}
		}
	}
}

func equilibriumInto(out []float64, rho, ux, uy, uz float64) {
	u2 := ux*ux + uy*uy + uz*uz
	for a := 0; a < lattice.Q; a++ {
		cu := lattice.Dot(a, ux, uy, uz)
		out[a] = lattice.Weights[a] * rho * (1 + 3*cu + 4.5*cu*cu - 1.5*u2)
	}
}

// Reduce computes the authoritative (rho, u, v, w) over every interior
// voxel from the current distribution (§4.5 step 1). rhoFloor clamps the
// density used as the velocity divisor so a near-vacuum voxel cannot divide
// by (near) zero.
func (fl *Fields) Reduce(g *grid.Grid, rhoFloor float64) {
	g.ForEachInterior(func(i, j, k int) {
		base := g.Idx4(i, j, k, 0, lattice.Q)
		fa := fl.f[base : base+lattice.Q]

		var rho, mx, my, mz float64
		for a := 0; a < lattice.Q; a++ {
			c := lattice.Velocities[a]
			rho += fa[a]
			mx += float64(c[0]) * fa[a]
			my += float64(c[1]) * fa[a]
			mz += float64(c[2]) * fa[a]
		}

		idx3 := g.Idx3(i, j, k)
		fl.Rho[idx3] = rho

		denom := rho
		if denom < rhoFloor {
			denom = rhoFloor
		}
		fl.U[idx3] = mx / denom
		fl.V[idx3] = my / denom
		fl.W[idx3] = mz / denom
	})
}

// HasDivergence reports whether any interior voxel has a NaN macroscopic
// value or a density below rhoFloor — the local half of the periodic
// divergence check in §4.6/§7; the caller combines this across ranks with
// mpi.Comm.AllreduceAny.
func (fl *Fields) HasDivergence(g *grid.Grid, rhoFloor float64) bool {
	bad := false
	g.ForEachInterior(func(i, j, k int) {
		idx3 := g.Idx3(i, j, k)
		if math.IsNaN(fl.Rho[idx3]) || math.IsNaN(fl.U[idx3]) || math.IsNaN(fl.V[idx3]) || math.IsNaN(fl.W[idx3]) {
			bad = true
		}
		if fl.Rho[idx3] < rhoFloor {
			bad = true
		}
	})
	return bad
}
