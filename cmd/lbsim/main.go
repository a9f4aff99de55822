// Command lbsim runs the distributed D3Q19 lattice-Boltzmann solver
// described in SPEC_FULL.md. Its flag/log.Fatalf shape follows
// _examples/BoltyTheDog-boltzmann-sim/main.go's own func main(); its
// MPI bring-up follows
// other_examples/monobearotaku-mpi-but-golnag__main.go's
// mpi.Start/mpi.NewCommunicator(nil) pair.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	gompi "github.com/sbromberger/gompi"

	"github.com/myousefi2016/scmp-3d-mpi/internal/config"
	"github.com/myousefi2016/scmp-3d-mpi/internal/mpi"
	"github.com/myousefi2016/scmp-3d-mpi/internal/solver"
	"github.com/myousefi2016/scmp-3d-mpi/internal/topology"
)

func main() {
	configPath := flag.String("config", "", "path to the run configuration (INI)")
	flag.Parse()

	if *configPath == "" {
		log.Fatal("lbsim: -config is required")
	}

	gompi.Start(true)
	defer gompi.Stop()

	comm := mpi.New(gompi.NewCommunicator(nil))

	logger := log.New(os.Stdout, "", log.LstdFlags)
	logger.SetPrefix(fmt.Sprintf("[rank %d] ", comm.Rank()))

	if err := run(comm, logger, *configPath); err != nil {
		comm.Abortf("%v", err)
	}
}

func run(comm mpi.Comm, logger *log.Logger, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	shape := cfg.Shape
	topo, err := topology.New(comm, shape)
	if err != nil {
		return err
	}

	s, err := solver.New(cfg, topo, nil)
	if err != nil {
		return err
	}
	s.Init(1.0, 0, 0, 0)

	rank := comm.Rank()
	logger.Printf("starting run: grid=%dx%dx%d process-grid=%dx%dx%d steps=%d",
		cfg.Nx, cfg.Ny, cfg.Nz, shape.Px, shape.Py, shape.Pz, cfg.TotalSteps)

	for step := 1; step <= cfg.TotalSteps; step++ {
		if err := s.Step(); err != nil {
			return err
		}

		if step%cfg.DivergenceCheckEvery == 0 {
			if s.CheckDivergence(comm) {
				comm.Abortf("divergence detected at step %d", step)
			}
		}

		if step%cfg.OutputEvery == 0 {
			if err := s.Snapshot(step); err != nil {
				return err
			}
			if rank == 0 {
				logger.Printf("wrote snapshot at step %d", step)
			}
		}
	}

	comm.Barrier()
	if rank == 0 {
		logger.Printf("run complete")
	}
	return nil
}
