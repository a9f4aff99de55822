// Package config loads and validates the solver's run configuration from an
// INI-style file, grounded on
// _examples/phil-mansfield-gotetra/render/io/config.go and
// design/io/config.go, which load their own simulation parameters through
// gopkg.in/gcfg.v1 with the same "one [Section], one field per parameter"
// layout used here.
package config

import (
	"fmt"
	"math"

	gcfg "gopkg.in/gcfg.v1"

	"github.com/myousefi2016/scmp-3d-mpi/internal/lbm"
	"github.com/myousefi2016/scmp-3d-mpi/internal/topology"
)

// raw mirrors the INI file shape; gcfg fills it in directly from section/key
// names. Exported fields matching §6's "Configuration (external, abstract)"
// list one-for-one.
type raw struct {
	Grid struct {
		Nx, Ny, Nz int
	}
	Process struct {
		Px, Py, Pz                      int
		PeriodicX, PeriodicY, PeriodicZ bool
	}
	Lattice struct {
		GhostLayers int
	}
	Physics struct {
		Tau      float64
		Nu       float64
		RhoFloor float64
	}
	Run struct {
		TotalSteps           int
		OutputEvery          int
		DivergenceCheckEvery int
	}
	Output struct {
		Directory string
		BaseName  string
	}
}

// Config is the validated, ready-to-use run configuration.
type Config struct {
	Nx, Ny, Nz int
	Shape      topology.Shape
	GhostLayers int

	Tau      lbm.Tau
	RhoFloor float64

	TotalSteps           int
	OutputEvery          int
	DivergenceCheckEvery int

	OutputDir  string
	OutputBase string
}

// Load reads and validates the configuration at path. Validation happens
// here, before any array is allocated, and every error names the offending
// field, per §7 "Configuration error".
func Load(path string) (*Config, error) {
	var r raw
	if err := gcfg.ReadFileInto(&r, path); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return fromRaw(&r)
}

func fromRaw(r *raw) (*Config, error) {
	cfg := &Config{
		Nx: r.Grid.Nx, Ny: r.Grid.Ny, Nz: r.Grid.Nz,
		Shape: topology.Shape{
			Px: r.Process.Px, Py: r.Process.Py, Pz: r.Process.Pz,
			PeriodicX: r.Process.PeriodicX,
			PeriodicY: r.Process.PeriodicY,
			PeriodicZ: r.Process.PeriodicZ,
		},
		GhostLayers:          r.Lattice.GhostLayers,
		RhoFloor:             r.Physics.RhoFloor,
		TotalSteps:           r.Run.TotalSteps,
		OutputEvery:          r.Run.OutputEvery,
		DivergenceCheckEvery: r.Run.DivergenceCheckEvery,
		OutputDir:            r.Output.Directory,
		OutputBase:           r.Output.BaseName,
	}

	if cfg.Nx <= 0 || cfg.Ny <= 0 || cfg.Nz <= 0 {
		return nil, fmt.Errorf("config: [Grid] Nx,Ny,Nz must be positive, got (%d,%d,%d)", cfg.Nx, cfg.Ny, cfg.Nz)
	}
	if cfg.Shape.Px <= 0 || cfg.Shape.Py <= 0 || cfg.Shape.Pz <= 0 {
		return nil, fmt.Errorf("config: [Process] Px,Py,Pz must be positive, got (%d,%d,%d)", cfg.Shape.Px, cfg.Shape.Py, cfg.Shape.Pz)
	}
	if cfg.Nx%cfg.Shape.Px != 0 {
		return nil, fmt.Errorf("config: [Grid] Nx=%d not divisible by [Process] Px=%d", cfg.Nx, cfg.Shape.Px)
	}
	if cfg.Ny%cfg.Shape.Py != 0 {
		return nil, fmt.Errorf("config: [Grid] Ny=%d not divisible by [Process] Py=%d", cfg.Ny, cfg.Shape.Py)
	}
	if cfg.Nz%cfg.Shape.Pz != 0 {
		return nil, fmt.Errorf("config: [Grid] Nz=%d not divisible by [Process] Pz=%d", cfg.Nz, cfg.Shape.Pz)
	}
	if cfg.GhostLayers < 1 {
		return nil, fmt.Errorf("config: [Lattice] GhostLayers=%d must be >= 1", cfg.GhostLayers)
	}

	haveTau := r.Physics.Tau != 0
	haveNu := r.Physics.Nu != 0
	switch {
	case haveTau && haveNu:
		return nil, fmt.Errorf("config: [Physics] set exactly one of Tau or Nu, not both")
	case haveTau:
		cfg.Tau = lbm.Tau(r.Physics.Tau)
	case haveNu:
		tau, err := lbm.NewTau(r.Physics.Nu)
		if err != nil {
			return nil, fmt.Errorf("config: [Physics] Nu=%v: %w", r.Physics.Nu, err)
		}
		cfg.Tau = tau
	default:
		return nil, fmt.Errorf("config: [Physics] set exactly one of Tau or Nu")
	}
	if err := cfg.Tau.Validate(); err != nil {
		return nil, fmt.Errorf("config: [Physics] %w", err)
	}

	if cfg.RhoFloor <= 0 || math.IsNaN(cfg.RhoFloor) {
		return nil, fmt.Errorf("config: [Physics] RhoFloor=%v must be a positive finite number", cfg.RhoFloor)
	}
	if cfg.TotalSteps <= 0 {
		return nil, fmt.Errorf("config: [Run] TotalSteps=%d must be positive", cfg.TotalSteps)
	}
	if cfg.OutputEvery <= 0 {
		return nil, fmt.Errorf("config: [Run] OutputEvery=%d must be positive", cfg.OutputEvery)
	}
	if cfg.DivergenceCheckEvery <= 0 {
		return nil, fmt.Errorf("config: [Run] DivergenceCheckEvery=%d must be positive", cfg.DivergenceCheckEvery)
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("config: [Output] Directory must be set")
	}
	if cfg.OutputBase == "" {
		return nil, fmt.Errorf("config: [Output] BaseName must be set")
	}

	return cfg, nil
}

// LocalInterior returns each rank's interior voxel counts (MX,MY,MZ). The
// result is the same for every rank, since each process-grid axis evenly
// divides its Grid dimension.
func (c *Config) LocalInterior() (mx, my, mz int) {
	return c.Nx / c.Shape.Px, c.Ny / c.Shape.Py, c.Nz / c.Shape.Pz
}
