package fsm

import "fmt"

// AddState adds a node to the machine
func (m *Machine[T]) AddState(id StateID, name string) *Node[T] {
	node := &Node[T]{ID: id, Name: name}
	m.nodes[id] = node
	return node
}

// AddTransition adds a transition to a specific node
func (m *Machine[T]) AddTransition(sourceID StateID, t Transition[T]) {
	if node, ok := m.nodes[sourceID]; ok {
		node.Transitions = append(node.Transitions, t)
	}
}

// Validate checks that every id in want has a node and every transition targets a node
func (m *Machine[T]) Validate(want ...StateID) error {
	for _, id := range want {
		if _, ok := m.nodes[id]; !ok {
			return fmt.Errorf("fsm: state %d has no node", id)
		}
	}
	for id, node := range m.nodes {
		for _, t := range node.Transitions {
			if _, ok := m.nodes[t.TargetID]; !ok {
				return fmt.Errorf("fsm: %s transitions to missing state %d", node.Name, t.TargetID)
			}
		}
		if node.ID != id {
			return fmt.Errorf("fsm: node %s registered under id %d", node.Name, id)
		}
	}
	return nil
}
