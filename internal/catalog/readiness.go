package catalog

import (
	"sync"
	"sync/atomic"
	"time"
)

type State int32

const (
	Pending State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Readiness is a single-assignment signal for one catalog load. The first
// settle wins; later calls are ignored.
type Readiness struct {
	done  chan struct{}
	once  sync.Once
	state atomic.Int32
	err   error
}

func newReadiness() *Readiness {
	return &Readiness{done: make(chan struct{})}
}

func (r *Readiness) settle(err error) bool {
	settled := false
	r.once.Do(func() {
		r.err = err
		if err != nil {
			r.state.Store(int32(Failed))
		} else {
			r.state.Store(int32(Ready))
		}
		close(r.done)
		settled = true
	})
	return settled
}

func (r *Readiness) State() State {
	return State(r.state.Load())
}

// Done is closed once the load settles, successfully or not.
func (r *Readiness) Done() <-chan struct{} {
	return r.done
}

// Err is the load failure, if any. Only meaningful after Done is closed.
func (r *Readiness) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait reports whether the load settled within timeout. A non-positive
// timeout only checks the current state.
func (r *Readiness) Wait(timeout time.Duration) bool {
	select {
	case <-r.done:
		return true
	default:
	}
	if timeout <= 0 {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-r.done:
		return true
	case <-timer.C:
		return false
	}
}
