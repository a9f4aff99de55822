package boundary

import (
	"github.com/myousefi2016/scmp-3d-mpi/internal/grid"
	"github.com/myousefi2016/scmp-3d-mpi/internal/lattice"
	"github.com/myousefi2016/scmp-3d-mpi/internal/lbm"
	"github.com/myousefi2016/scmp-3d-mpi/internal/topology"
)

// InletOutlet is a worked example of the Hook interface: a constant-velocity
// inlet on the WEST face and a zero-gradient outlet on the EAST face. It is
// not part of the default solver path — it exists to show the hook surface
// end-to-end, the way
// _examples/BoltyTheDog-boltzmann-sim/main.go's stream() hand-writes a
// constant-equilibrium injection on its left edge ("Left boundary - incoming
// flow": nE/nNE/nSE set to the equilibrium values for a fixed velocity) and
// a zero-gradient copy on its right edge ("Right boundary - outflow"). This
// is the same idea generalized to D3Q19/3D and expressed through the ghost
// layer rather than by special-casing the stream step.
type InletOutlet struct {
	// Rho, Ux, Uy, Uz describe the inflow condition imposed at WEST.
	Rho, Ux, Uy, Uz float64
}

// Apply writes equilibrium-at-(Rho,Ux,Uy,Uz) into the WEST ghost layer
// (distribution stage) and a zero-gradient copy of the adjacent interior
// plane into the EAST ghost layer (macroscopic stage), for whichever of
// those two faces are in faces.
func (io InletOutlet) Apply(stage Stage, g *grid.Grid, fields *lbm.Fields, faces []topology.Face) error {
	for _, face := range faces {
		switch {
		case face == topology.West && stage == AfterDistribution:
			io.fillInlet(g, fields)
		case face == topology.East && stage == AfterMacroscopic:
			io.fillOutlet(g, fields)
		}
	}
	return nil
}

func (io InletOutlet) fillInlet(g *grid.Grid, fields *lbm.Fields) {
	var eq [lattice.Q]float64
	eqValues(eq[:], io.Rho, io.Ux, io.Uy, io.Uz)

	for ell := 0; ell < g.N; ell++ {
		ghostI := g.GhostSlabX(1, ell)
		for k := 0; k < g.MZP; k++ {
			for j := 0; j < g.MYP; j++ {
				base := g.Idx4(ghostI, j, k, 0, lattice.Q)
				copy(fields.F()[base:base+lattice.Q], eq[:])
			}
		}
	}
}

func (io InletOutlet) fillOutlet(g *grid.Grid, fields *lbm.Fields) {
	for ell := 0; ell < g.N; ell++ {
		ghostI := g.GhostSlabX(-1, ell)
		interiorI := g.InteriorSlabX(1, 0)
		for k := 0; k < g.MZP; k++ {
			for j := 0; j < g.MYP; j++ {
				fields.Rho[g.Idx3(ghostI, j, k)] = fields.Rho[g.Idx3(interiorI, j, k)]
				fields.U[g.Idx3(ghostI, j, k)] = fields.U[g.Idx3(interiorI, j, k)]
				fields.V[g.Idx3(ghostI, j, k)] = fields.V[g.Idx3(interiorI, j, k)]
				fields.W[g.Idx3(ghostI, j, k)] = fields.W[g.Idx3(interiorI, j, k)]
			}
		}
	}
}

func eqValues(out []float64, rho, ux, uy, uz float64) {
	u2 := ux*ux + uy*uy + uz*uz
	for a := 0; a < lattice.Q; a++ {
		cu := lattice.Dot(a, ux, uy, uz)
		out[a] = lattice.Weights[a] * rho * (1 + 3*cu + 4.5*cu*cu - 1.5*u2)
	}
}
