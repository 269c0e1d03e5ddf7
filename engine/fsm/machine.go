package fsm

import "fmt"

// NewMachine creates an empty machine
func NewMachine[T any]() *Machine[T] {
	return &Machine[T]{
		nodes:    make(map[StateID]*Node[T]),
		activeID: StateNone,
	}
}

// Init enters the initial state, running its OnEnter actions
func (m *Machine[T]) Init(ctx T, initialID StateID) error {
	node, ok := m.nodes[initialID]
	if !ok {
		return fmt.Errorf("fsm: initial state %d not found", initialID)
	}
	from := m.activeID
	m.activeID = initialID
	if m.OnChange != nil {
		m.OnChange(ctx, from, initialID)
	}
	for _, action := range node.OnEnter {
		action(ctx)
	}
	return nil
}

// Update runs the active node's OnUpdate actions, then the first passing transition
// Returns true when a transition was taken
func (m *Machine[T]) Update(ctx T) bool {
	node, ok := m.nodes[m.activeID]
	if !ok {
		return false
	}
	for _, action := range node.OnUpdate {
		action(ctx)
	}
	for _, trans := range node.Transitions {
		if trans.Guard == nil || trans.Guard(ctx) {
			m.Goto(ctx, trans.TargetID)
			return true
		}
	}
	return false
}

// Goto changes state, running OnChange and the target's OnEnter actions
// A transition to the active state is a no-op
func (m *Machine[T]) Goto(ctx T, targetID StateID) {
	if m.activeID == targetID {
		return
	}
	target, ok := m.nodes[targetID]
	if !ok {
		panic(fmt.Sprintf("fsm: transition to unknown state %d", targetID))
	}

	from := m.activeID
	m.activeID = targetID
	if m.OnChange != nil {
		m.OnChange(ctx, from, targetID)
	}
	for _, action := range target.OnEnter {
		action(ctx)
	}
}

// Restore makes id active without running any action
func (m *Machine[T]) Restore(id StateID) {
	if _, ok := m.nodes[id]; !ok {
		panic(fmt.Sprintf("fsm: restore to unknown state %d", id))
	}
	m.activeID = id
}

// State returns the active state, StateNone before Init
func (m *Machine[T]) State() StateID {
	return m.activeID
}

// Has reports whether id has a node
func (m *Machine[T]) Has(id StateID) bool {
	_, ok := m.nodes[id]
	return ok
}
