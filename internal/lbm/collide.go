package lbm

import (
	"fmt"

	"github.com/myousefi2016/scmp-3d-mpi/internal/grid"
	"github.com/myousefi2016/scmp-3d-mpi/internal/lattice"
)

// Tau is the BGK relaxation time, tau = 3*nu + 0.5 (§4.5 step 3). It is
// validated once at startup, not on every step, per §7's "Configuration
// error" timing requirement.
type Tau float64

// NewTau derives tau from kinematic viscosity nu and checks the stability
// bound tau > 0.5.
func NewTau(nu float64) (Tau, error) {
	tau := Tau(3*nu + 0.5)
	return tau, tau.Validate()
}

// Validate checks the BGK stability bound.
func (t Tau) Validate() error {
	if t <= 0.5 {
		return fmt.Errorf("lbm: tau=%v must be > 0.5 for BGK stability", float64(t))
	}
	return nil
}

// Collide overwrites f at every interior voxel with its post-collision
// value, using the (rho, u, v, w) already produced by Reduce and
// subsequently halo-exchanged (§4.6 step 6: collision runs after the
// macroscopic halo exchange, consuming — not recomputing — those fields).
func (fl *Fields) Collide(g *grid.Grid, tau Tau) {
	omega := 1.0 / float64(tau)

	var eq [lattice.Q]float64

	g.ForEachInterior(func(i, j, k int) {
		idx3 := g.Idx3(i, j, k)
		rho := fl.Rho[idx3]
		ux, uy, uz := fl.U[idx3], fl.V[idx3], fl.W[idx3]

		equilibriumInto(eq[:], rho, ux, uy, uz)

		base := g.Idx4(i, j, k, 0, lattice.Q)
		fa := fl.f[base : base+lattice.Q]
		for a := 0; a < lattice.Q; a++ {
			fa[a] -= omega * (fa[a] - eq[a])
		}
	})
}
