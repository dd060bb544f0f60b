package provider

import (
	"context"
	"sync"

	"github.com/torfstack/revsync/internal/util"
)

type State int

const (
	StateUnknown State = iota
	StateNotReady
	StateReady
)

func (s State) String() string {
	switch s {
	case StateNotReady:
		return "not-ready"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Readiness combines the data-loaded signal and configuration completeness.
// The state is unknown until both inputs have been seen and is re-evaluated on
// every input. Wait latches: once it has let a caller through, it never
// blocks again.
type Readiness struct {
	mu          sync.Mutex
	dataLoaded  bool
	cfgKnown    bool
	cfgComplete bool
	state       State
	latched     bool
	changed     chan struct{}

	// notifyMu orders deliveries; published is the last state subscribers saw.
	notifyMu    sync.Mutex
	published   State
	subscribers *util.SyncSlice[func(bool)]
}

func NewReadiness() *Readiness {
	return &Readiness{
		changed:     make(chan struct{}),
		subscribers: util.NewSyncSlice[func(bool)](),
	}
}

// DataLoaded records that all application data has been loaded once.
func (r *Readiness) DataLoaded() {
	r.update(func() { r.dataLoaded = true })
}

// ConfigChanged records whether the latest configuration is complete.
func (r *Readiness) ConfigChanged(complete bool) {
	r.update(func() {
		r.cfgKnown = true
		r.cfgComplete = complete
	})
}

func (r *Readiness) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Readiness) IsReady() bool {
	return r.State() == StateReady
}

// Subscribe calls fn with the readiness whenever it changes. Calls are
// serialized and the last one always carries the current readiness. fn must
// not feed inputs back into r.
func (r *Readiness) Subscribe(fn func(ready bool)) {
	r.subscribers.Add(fn)
}

// Wait blocks until the state is ready or ctx is done.
func (r *Readiness) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		if r.latched || r.state == StateReady {
			r.latched = true
			r.mu.Unlock()
			return nil
		}
		changed := r.changed
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

func (r *Readiness) update(apply func()) {
	r.mu.Lock()
	prev := r.state
	apply()
	switch {
	case !r.dataLoaded || !r.cfgKnown:
		r.state = StateUnknown
	case r.cfgComplete:
		r.state = StateReady
	default:
		r.state = StateNotReady
	}
	if r.state != prev {
		close(r.changed)
		r.changed = make(chan struct{})
	}
	r.mu.Unlock()

	r.notify()
}

// notify delivers the current state, read under notifyMu, if it differs from
// what subscribers saw last. The last caller to take notifyMu sees the final state.
func (r *Readiness) notify() {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	next := r.State()
	if next == StateUnknown {
		return
	}
	if r.published != StateUnknown && (r.published == StateReady) == (next == StateReady) {
		return
	}
	r.published = next
	for _, fn := range r.subscribers.Items() {
		fn(next == StateReady)
	}
}
