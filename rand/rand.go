package rand

import (
	"sync"

	"github.com/seehuhn/mt19937"
)

// A Generator uses a goroutine to populate batches of random numbers from a
// Mersenne twister. Every draw in a run must come from one Generator so that
// a seed reproduces the run exactly. Close stops the goroutine; the Generator
// must not be used after that.
type Generator struct {
	ch      chan int64
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func startGenerator(r *mt19937.MT19937) *Generator {
	g := &Generator{
		ch:      make(chan int64, 1024),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go func() {
		defer close(g.stopped)
		for {
			select {
			case g.ch <- r.Int63():
			case <-g.done:
				return
			}
		}
	}()

	return g
}

// NewGenerator starts a new background PRNG based on the given seed
func NewGenerator(seed int64) (*Generator, error) {
	r := mt19937.New()
	r.Seed(seed)
	return startGenerator(r), nil
}

// Close stops the background goroutine and waits for it to exit. It is safe
// to call more than once.
func (g *Generator) Close() {
	g.once.Do(func() {
		close(g.done)
	})
	<-g.stopped
}

// Int63 provides the same interface as Go's math/rand, but with pre-generation.
func (g *Generator) Int63() int64 {
	return <-g.ch
}

// Int63n is a copy of the current Go code
func (g *Generator) Int63n(n int64) int64 {
	if n <= 0 {
		panic("invalid argument to Int63n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int63() & (n - 1)
	}

	max := int64((1 << 63) - 1 - (1<<63)%uint64(n))
	v := g.Int63()
	for v > max {
		v = g.Int63()
	}

	return v % n
}

// Intn returns a uniform int in [0, n)
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		panic("invalid argument to Intn")
	}
	return int(g.Int63n(int64(n)))
}

// Float64 uses the commented, simpler implementation since we don't have the
// same support requirements for users
func (g *Generator) Float64() float64 {
	// See the Go lang comments for Rand Float64 implementation for details
	return float64(g.Int63n(1<<53)) / (1 << 53)
}

// Shuffle is a Fisher-Yates shuffle of n elements using swap
func (g *Generator) Shuffle(n int, swap func(i, j int)) {
	if n < 0 {
		panic("invalid argument to Shuffle")
	}

	for i := n - 1; i > 0; i-- {
		j := g.Intn(i + 1)
		swap(i, j)
	}
}
