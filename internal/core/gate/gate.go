package gate

import (
	"context"
	"fmt"
	"sync"

	"github.com/quangvu/fetchd/internal/core/domain"
	"github.com/quangvu/fetchd/internal/fetch/metrics"
)

// Gate bounds simultaneous in-flight jobs per user and operation class.
// Excess requests queue in FIFO order and are not counted against the bound
// until promoted. One user's backlog never throttles another's: state is
// keyed per user, guarded by a single mutex over the small bookkeeping maps.
type Gate struct {
	mu     sync.Mutex
	limits map[domain.OperationClass]int
	users  map[domain.OperationClass]map[string]*userState
}

type userState struct {
	active int
	queue  []chan struct{}
}

// New creates a gate with per-class slot limits.
func New(limits map[domain.OperationClass]int) *Gate {
	users := make(map[domain.OperationClass]map[string]*userState, len(limits))
	for class := range limits {
		users[class] = make(map[string]*userState)
	}
	return &Gate{limits: limits, users: users}
}

// Acquire grants a slot, suspending the caller in FIFO order when the user
// is at the bound. The returned release must be called exactly once on every
// exit path of the guarded operation; it is idempotent to double calls.
func (g *Gate) Acquire(
	ctx context.Context,
	class domain.OperationClass,
	userID string,
) (func(), error) {
	limit, ok := g.limits[class]
	if !ok {
		// Unknown class is a programming error, same as an unknown provider.
		panic(fmt.Sprintf("unknown operation class: %s", class))
	}

	g.mu.Lock()
	st := g.users[class][userID]
	if st == nil {
		st = &userState{}
		g.users[class][userID] = st
	}

	if st.active < limit {
		st.active++
		metrics.GateActive.WithLabelValues(string(class)).Inc()
		g.mu.Unlock()
		return g.releaseFunc(class, userID), nil
	}

	// At the bound: queue and suspend. The buffered channel lets release
	// hand the slot over without blocking or growing the call stack.
	ready := make(chan struct{}, 1)
	st.queue = append(st.queue, ready)
	metrics.GateQueued.WithLabelValues(string(class)).Inc()
	g.mu.Unlock()

	select {
	case <-ready:
		metrics.GateQueued.WithLabelValues(string(class)).Dec()
		return g.releaseFunc(class, userID), nil
	case <-ctx.Done():
		g.mu.Lock()
		if g.removeWaiter(class, userID, ready) {
			metrics.GateQueued.WithLabelValues(string(class)).Dec()
			g.mu.Unlock()
			return nil, ctx.Err()
		}
		g.mu.Unlock()
		// The slot was handed over while we were cancelling; give it back.
		metrics.GateQueued.WithLabelValues(string(class)).Dec()
		g.releaseFunc(class, userID)()
		return nil, ctx.Err()
	}
}

// Status reports the user's current slot usage, for pre-emptive rejection
// before committing to a queue wait.
func (g *Gate) Status(class domain.OperationClass, userID string) (active, queued int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.users[class][userID]
	if st == nil {
		return 0, 0
	}
	return st.active, len(st.queue)
}

// releaseFunc builds the single-use release for a granted slot. On release,
// the oldest queued waiter inherits the slot; the active count transfers
// rather than dipping and re-growing.
func (g *Gate) releaseFunc(class domain.OperationClass, userID string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			st := g.users[class][userID]
			if st == nil {
				return
			}
			if len(st.queue) > 0 {
				ready := st.queue[0]
				st.queue = st.queue[1:]
				ready <- struct{}{} // buffered: never blocks release
				return
			}
			st.active--
			metrics.GateActive.WithLabelValues(string(class)).Dec()
			if st.active == 0 {
				delete(g.users[class], userID)
			}
		})
	}
}

// removeWaiter drops a cancelled waiter from the FIFO queue. Returns false
// when the waiter is no longer queued, meaning a slot handoff raced the
// cancellation. Caller holds the mutex.
func (g *Gate) removeWaiter(
	class domain.OperationClass,
	userID string,
	ready chan struct{},
) bool {
	st := g.users[class][userID]
	if st == nil {
		return false
	}
	for i, w := range st.queue {
		if w == ready {
			st.queue = append(st.queue[:i], st.queue[i+1:]...)
			return true
		}
	}
	return false
}
