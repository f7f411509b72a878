package library

import "sync"

// Event identifies a sync lifecycle notification.
type Event int

const (
	// EventSyncing fires when a pass starts.
	EventSyncing Event = iota
	// EventSynced fires when a pass finishes, on every exit path.
	EventSynced
	// EventUpdated fires after a pass that changed local data.
	EventUpdated
)

// Notifier delivers fire-and-forget lifecycle events to subscribers. The
// engine has no knowledge of who subscribes; callbacks run synchronously on
// the syncing goroutine and must not block.
type Notifier struct {
	mu   sync.Mutex
	subs map[Event][]func()
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[Event][]func())}
}

// Subscribe registers a callback for an event. There is no unsubscribe;
// subscribers live as long as the engine.
func (n *Notifier) Subscribe(e Event, fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs[e] = append(n.subs[e], fn)
}

func (n *Notifier) fire(e Event) {
	n.mu.Lock()
	fns := make([]func(), len(n.subs[e]))
	copy(fns, n.subs[e])
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
