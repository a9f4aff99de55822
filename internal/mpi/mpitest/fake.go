// Package mpitest provides an in-process fake of mpi.Comm for tests, built
// out of Go channels the way
// other_examples/sanderblue-algorithms__ring_all_reduce.go wires its ring of
// goroutines together with one channel per neighbor pair. It lets the halo
// exchange and topology property tests in §8 run many simulated ranks inside
// a single test binary instead of requiring an mpirun-launched job.
package mpitest

import (
	"fmt"
	"sync"

	"github.com/myousefi2016/scmp-3d-mpi/internal/mpi"
)

type key struct {
	from, to, tag int
}

// World is a set of ranks that can send/receive among each other over
// buffered channels keyed by (from, to, tag).
type World struct {
	mu    sync.Mutex
	boxes map[key]chan []float64
	size  int
}

// New creates a World of the given size and returns one Comm per rank.
func New(size int) []mpi.Comm {
	w := &World{boxes: make(map[key]chan []float64), size: size}
	comms := make([]mpi.Comm, size)
	barrier := newBarrier(size)
	for r := 0; r < size; r++ {
		comms[r] = &fakeComm{world: w, rank: r, barrier: barrier}
	}
	return comms
}

func (w *World) box(from, to, tag int) chan []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	k := key{from, to, tag}
	ch, ok := w.boxes[k]
	if !ok {
		ch = make(chan []float64, 1)
		w.boxes[k] = ch
	}
	return ch
}

type fakeComm struct {
	world   *World
	rank    int
	barrier *barrier
}

func (f *fakeComm) Rank() int { return f.rank }
func (f *fakeComm) Size() int { return f.world.size }
func (f *fakeComm) Barrier()  { f.barrier.wait() }

func (f *fakeComm) SendRecv(send []float64, dest, sendTag int, recv []float64, src, recvTag int) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if dest == mpi.NoNeighbor {
			return
		}
		buf := make([]float64, len(send))
		copy(buf, send)
		f.world.box(f.rank, dest, sendTag) <- buf
	}()

	if src != mpi.NoNeighbor {
		got := <-f.world.box(src, f.rank, recvTag)
		if len(got) != len(recv) {
			<-done
			return fmt.Errorf("mpitest: rank %d recv from %d tag %d: expected %d doubles, got %d",
				f.rank, src, recvTag, len(recv), len(got))
		}
		copy(recv, got)
	}
	<-done
	return nil
}

func (f *fakeComm) AllreduceAny(flag bool) bool {
	return f.barrier.reduceAny(f.rank, flag)
}

func (f *fakeComm) Abortf(format string, args ...interface{}) {
	panic(fmt.Sprintf("rank %d aborted: %s", f.rank, fmt.Sprintf(format, args...)))
}

// barrier is a reusable rendezvous point for all ranks in a World, also used
// to sequence AllreduceAny so every rank's flag is visible before any rank
// reads the combined result.
type barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	n       int
	arrived int
	flags   []bool
	gen     int
}

func newBarrier(n int) *barrier {
	b := &barrier{n: n, flags: make([]bool, n)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *barrier) wait() {
	b.mu.Lock()
	gen := b.gen
	b.arrived++
	if b.arrived == b.n {
		b.arrived = 0
		b.gen++
		b.cond.Broadcast()
	} else {
		for gen == b.gen {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
}

func (b *barrier) reduceAny(rank int, flag bool) bool {
	b.mu.Lock()
	b.flags[rank] = flag
	gen := b.gen
	b.arrived++
	if b.arrived == b.n {
		b.arrived = 0
		b.gen++
		b.cond.Broadcast()
	} else {
		for gen == b.gen {
			b.cond.Wait()
		}
	}
	any := false
	for _, v := range b.flags {
		if v {
			any = true
			break
		}
	}
	b.mu.Unlock()
	return any
}
