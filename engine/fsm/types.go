package fsm

// StateID is a unique identifier for a node
type StateID int

// StateNone marks a machine that has not been initialized
const StateNone StateID = -1

// Machine is a flat finite state machine runtime
// T is the context type passed to actions and guards (e.g. the owning task)
//
// One Update runs the active node's OnUpdate actions, then takes at most one transition:
// the first whose guard passes, in the order transitions were added
type Machine[T any] struct {
	// Graph data, immutable after Init
	nodes map[StateID]*Node[T]

	// Runtime state
	activeID StateID

	// OnChange runs on every state change, before the target's OnEnter actions
	OnChange func(ctx T, from, to StateID)
}

// Node represents a state
type Node[T any] struct {
	ID   StateID
	Name string

	// Lifecycle actions
	OnEnter  []ActionFunc[T]
	OnUpdate []ActionFunc[T]

	// Transitions in evaluation priority
	Transitions []Transition[T]
}

// Transition defines a link between states
type Transition[T any] struct {
	TargetID StateID
	Guard    GuardFunc[T] // nil = always true
}

// GuardFunc returns true if the transition should occur
// Guards must not have side effects; OnUpdate actions compute what guards read
type GuardFunc[T any] func(ctx T) bool

// ActionFunc executes a side effect
type ActionFunc[T any] func(ctx T)
