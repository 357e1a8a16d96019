package openpose

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Pool is a simple runtime pool holding multiple instances of the same Model
// so they can be shared between goroutines
type Pool struct {
	// pool of runtimes
	runtimes chan *Runtime
	// all holds every runtime created so settings can be applied to them
	// whilst some are checked out
	all []*Runtime
	// size of pool
	size int
	// mu guards closed against concurrent Return and Close
	mu     sync.Mutex
	closed bool
}

// NewPool creates a new runtime pool of the given size
func NewPool(size int, modelFile string) (*Pool, error) {

	if size < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", size)
	}

	p := &Pool{
		runtimes: make(chan *Runtime, size),
		all:      make([]*Runtime, 0, size),
		size:     size,
	}

	for i := 0; i < size; i++ {
		rt, err := NewRuntime(modelFile)

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			p.Close()
			return nil, err
		}

		p.all = append(p.all, rt)

		// attach to pool
		p.Return(rt)
	}

	return p, nil
}

// Get a runtime from the pool, blocks until one is available.  Returns nil
// once the pool is closed.
func (p *Pool) Get() *Runtime {
	return <-p.runtimes
}

// Return a runtime to the pool.  If the pool has been closed whilst the
// runtime was checked out it is closed instead.
func (p *Pool) Return(runtime *Runtime) {

	if runtime == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = runtime.Close()
		return
	}

	select {
	case p.runtimes <- runtime:
	default:
		// pool is full
	}
}

// Size returns the number of runtimes in the pool
func (p *Pool) Size() int {
	return p.size
}

// SetBackendAndTarget sets the preferred backend and target on all runtimes
// in the pool.  Call before the pool is in use.
func (p *Pool) SetBackendAndTarget(backend gocv.NetBackendType, target gocv.NetTargetType) error {

	for _, rt := range p.all {
		if err := rt.SetBackend(backend); err != nil {
			return err
		}

		if err := rt.SetTarget(target); err != nil {
			return err
		}
	}

	return nil
}

// Close the pool and the idle runtimes in it.  Runtimes still checked out are
// closed when they are returned.
func (p *Pool) Close() {

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true
	close(p.runtimes)

	for rt := range p.runtimes {
		_ = rt.Close()
	}
}
