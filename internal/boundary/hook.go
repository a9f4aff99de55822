// Package boundary defines the pluggable boundary-condition hook of §6. The
// hook is invoked once per step after the distribution halo exchange and
// once after the macroscopic halo exchange, and is handed the padded fields
// of the owning rank plus the list of faces that sit on a non-periodic
// domain boundary (i.e. have no neighbor to exchange with).
//
// The catalogue of concrete conditions (walls, general inflow/outflow
// profiles) is out of scope per spec §1; this package ships only the
// default no-op hook §6 requires and one worked example, InletOutlet, that
// demonstrates the Hook interface end-to-end.
package boundary

import (
	"github.com/myousefi2016/scmp-3d-mpi/internal/grid"
	"github.com/myousefi2016/scmp-3d-mpi/internal/lbm"
	"github.com/myousefi2016/scmp-3d-mpi/internal/topology"
)

// Stage identifies which of the two per-step hook invocations is running,
// since a hook that only needs to act on the distribution field (or only on
// the macroscopic fields) can skip the other.
type Stage int

const (
	// AfterDistribution runs right after the distribution halo exchange
	// (§4.6 step 2), before streaming.
	AfterDistribution Stage = iota
	// AfterMacroscopic runs right after the macroscopic halo exchange
	// (§4.6, between steps 5 and 6).
	AfterMacroscopic
)

// Hook populates ghost slabs on domain-boundary faces. Implementations must
// only write to ghost voxels on the faces listed in Faces; interior voxels
// and non-boundary ghost faces are owned by the halo exchanger.
type Hook interface {
	Apply(stage Stage, g *grid.Grid, fields *lbm.Fields, faces []topology.Face) error
}

// Default is the periodic/no-op hook §6 requires: it does nothing, because
// a fully periodic domain has no boundary faces to begin with, and a
// non-periodic run with no hook configured simply leaves those ghost
// voxels at whatever SetEquilibrium initialized them to.
type Default struct{}

// Apply implements Hook by doing nothing.
func (Default) Apply(Stage, *grid.Grid, *lbm.Fields, []topology.Face) error {
	return nil
}
