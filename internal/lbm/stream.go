package lbm

import (
	"runtime"
	"sync"

	"github.com/myousefi2016/scmp-3d-mpi/internal/grid"
	"github.com/myousefi2016/scmp-3d-mpi/internal/lattice"
)

// Stream advects every interior voxel's distribution one lattice step along
// each direction's velocity (§4.4): fNext(i,j,k,a) = f(i-cx,j-cy,k-cz,a).
// f must already hold a halo-exchanged, boundary-hooked distribution so the
// voxels just outside the interior are valid sources. Stream writes into the
// retained fNext buffer and swaps it into place, the same double-buffering
// the teacher's stream() forgoes (the 2D teacher streams in a carefully
// chosen sweep order instead) but which §4.4 calls out as the safe general
// strategy for an arbitrary stencil.
//
// Work is sharded across goroutines by X-slab, mirroring the teacher's
// parallelCollide's runtime.NumCPU()/sync.WaitGroup split — the one
// intra-rank parallelism §5 permits, so long as it doesn't reorder the halo
// exchange phases, which Stream never touches.
func (fl *Fields) Stream(g *grid.Grid) {
	workers := runtime.NumCPU()
	if workers > g.MX {
		workers = g.MX
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (g.MX + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		loI := g.N + w*chunk
		hiI := loI + chunk
		if hiI > g.N+g.MX {
			hiI = g.N + g.MX
		}
		if loI >= hiI {
			continue
		}
		wg.Add(1)
		go func(loI, hiI int) {
			defer wg.Done()
			fl.streamRange(g, loI, hiI)
		}(loI, hiI)
	}
	wg.Wait()

	fl.f, fl.fNext = fl.fNext, fl.f
}

func (fl *Fields) streamRange(g *grid.Grid, loI, hiI int) {
	for k := g.N; k < g.N+g.MZ; k++ {
		for j := g.N; j < g.N+g.MY; j++ {
			for i := loI; i < hiI; i++ {
				dst := g.Idx4(i, j, k, 0, lattice.Q)
				for a := 0; a < lattice.Q; a++ {
					c := lattice.Velocities[a]
					src := g.Idx4(i-c[0], j-c[1], k-c[2], a, lattice.Q)
					fl.fNext[dst+a] = fl.f[src]
				}
			}
		}
	}
}
