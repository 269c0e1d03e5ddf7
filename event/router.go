package event

// Handler processes notifications within a context T
// Owners of tasks implement this to observe them asynchronously
type Handler[T any] interface {
	// HandleEvent processes a single notification
	// Called synchronously during the dispatch phase, never during a poll
	HandleEvent(ctx T, ev Event)

	// EventKinds returns the kinds this handler processes
	EventKinds() []Kind
}

// HandlerFunc adapts a function to Handler for the given kinds
type HandlerFunc[T any] struct {
	Kinds []Kind
	Fn    func(ctx T, ev Event)
}

func (h HandlerFunc[T]) HandleEvent(ctx T, ev Event) { h.Fn(ctx, ev) }
func (h HandlerFunc[T]) EventKinds() []Kind          { return h.Kinds }

// Router dispatches notifications to registered handlers
//
// Architecture:
//   - Single-threaded dispatch
//   - Multiple handlers can register for the same kind
//   - Handlers are invoked in registration order
type Router[T any] struct {
	handlers map[Kind][]Handler[T]
	queue    *Queue
}

// NewRouter creates a router draining the given queue
func NewRouter[T any](queue *Queue) *Router[T] {
	return &Router[T]{
		handlers: make(map[Kind][]Handler[T]),
		queue:    queue,
	}
}

// Register adds a handler for its declared kinds
func (r *Router[T]) Register(handler Handler[T]) {
	for _, k := range handler.EventKinds() {
		r.handlers[k] = append(r.handlers[k], handler)
	}
}

// DispatchAll consumes pending notifications and routes them in FIFO order
// Notifications pushed by handlers during dispatch are left for the next call
// Returns the number of notifications consumed
func (r *Router[T]) DispatchAll(ctx T) int {
	events := r.queue.Consume()
	for _, ev := range events {
		for _, h := range r.handlers[ev.Kind] {
			h.HandleEvent(ctx, ev)
		}
	}
	return len(events)
}

// HandlerCount returns the number of handlers registered for the given kind
func (r *Router[T]) HandlerCount(k Kind) int {
	return len(r.handlers[k])
}
