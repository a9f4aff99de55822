// Package solver wires grid, topology, halo exchange, the LB fields, a
// boundary hook, and snapshot output into the per-step pipeline §4.6
// defines, the same orchestration role
// _examples/BoltyTheDog-boltzmann-sim/main.go's run loop plays for its 2D
// D2Q9 solver (call stream, call collide, output on a cadence) generalized
// to the distributed, ghost-layered 3D case.
package solver

import (
	"fmt"

	"github.com/myousefi2016/scmp-3d-mpi/internal/boundary"
	"github.com/myousefi2016/scmp-3d-mpi/internal/config"
	"github.com/myousefi2016/scmp-3d-mpi/internal/grid"
	"github.com/myousefi2016/scmp-3d-mpi/internal/halo"
	"github.com/myousefi2016/scmp-3d-mpi/internal/lbm"
	"github.com/myousefi2016/scmp-3d-mpi/internal/mpi"
	"github.com/myousefi2016/scmp-3d-mpi/internal/snapshot"
	"github.com/myousefi2016/scmp-3d-mpi/internal/topology"
)

// Solver owns every piece of per-rank state needed to advance the
// simulation and to write its own slice of each snapshot.
type Solver struct {
	cfg  *config.Config
	grid *grid.Grid
	topo *topology.Topology
	ex   *halo.Exchanger
	hook boundary.Hook
	snap *snapshot.Writer

	Fields *lbm.Fields

	boundaryFaces []topology.Face
}

// New builds a Solver for the calling rank. hook may be nil, in which case
// boundary.Default{} is used (§6's required no-op default).
func New(cfg *config.Config, topo *topology.Topology, hook boundary.Hook) (*Solver, error) {
	mx, my, mz := cfg.LocalInterior()
	g, err := grid.New(cfg.GhostLayers, mx, my, mz)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}

	if hook == nil {
		hook = boundary.Default{}
	}

	offset := snapshot.Offset{
		X: topo.Px * mx,
		Y: topo.Py * my,
		Z: topo.Pz * mz,
	}
	global := snapshot.GlobalShape{Nx: cfg.Nx, Ny: cfg.Ny, Nz: cfg.Nz}

	return &Solver{
		cfg:           cfg,
		grid:          g,
		topo:          topo,
		ex:            halo.New(g, topo),
		hook:          hook,
		snap:          snapshot.New(cfg.OutputDir, cfg.OutputBase, global, offset),
		Fields:        lbm.NewFields(g),
		boundaryFaces: topo.BoundaryFaces(),
	}, nil
}

// Grid returns this rank's padded subdomain shape.
func (s *Solver) Grid() *grid.Grid { return s.grid }

// Init seeds every voxel (interior and ghost) to the equilibrium
// distribution for a uniform (rho, ux, uy, uz) state, the initial condition
// every §8 scenario starts from.
func (s *Solver) Init(rho, ux, uy, uz float64) {
	s.Fields.SetEquilibrium(s.grid, rho, ux, uy, uz)
}

// Step advances the simulation by one time step, following the fixed order
// of §4.6: exchange distributions, apply the distribution-stage boundary
// hook, stream, reduce macroscopics, exchange macroscopics, apply the
// macroscopic-stage boundary hook, then collide.
func (s *Solver) Step() error {
	if err := s.ex.Distribution(s.Fields.F()); err != nil {
		return fmt.Errorf("solver: distribution exchange: %w", err)
	}
	if err := s.hook.Apply(boundary.AfterDistribution, s.grid, s.Fields, s.boundaryFaces); err != nil {
		return fmt.Errorf("solver: boundary hook (distribution): %w", err)
	}

	s.Fields.Stream(s.grid)
	s.Fields.Reduce(s.grid, s.cfg.RhoFloor)

	if err := s.exchangeMacroscopics(); err != nil {
		return err
	}
	if err := s.hook.Apply(boundary.AfterMacroscopic, s.grid, s.Fields, s.boundaryFaces); err != nil {
		return fmt.Errorf("solver: boundary hook (macroscopic): %w", err)
	}

	s.Fields.Collide(s.grid, s.cfg.Tau)
	return nil
}

func (s *Solver) exchangeMacroscopics() error {
	for _, field := range []struct {
		name string
		data []float64
	}{
		{"rho", s.Fields.Rho},
		{"u", s.Fields.U},
		{"v", s.Fields.V},
		{"w", s.Fields.W},
	} {
		if err := s.ex.Scalar(field.data); err != nil {
			return fmt.Errorf("solver: macroscopic exchange (%s): %w", field.name, err)
		}
	}
	return nil
}

// CheckDivergence runs the local half of the divergence check and combines
// it across every rank via AllreduceAny, per §4.6/§7's periodic check.
func (s *Solver) CheckDivergence(comm mpi.Comm) bool {
	local := s.Fields.HasDivergence(s.grid, s.cfg.RhoFloor)
	return comm.AllreduceAny(local)
}

// Snapshot writes this rank's slice of the current state at the given step.
// Every rank must call this for the same step: the underlying Writer
// coordinates the collective file creation across s.topo.Comm.
func (s *Solver) Snapshot(step int) error {
	return s.snap.Write(s.grid, s.Fields, step, s.topo.Comm)
}
