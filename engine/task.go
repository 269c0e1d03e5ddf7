package engine

import (
	"github.com/google/uuid"

	"github.com/lixenwraith/navcore/event"
)

// Task is a behavior advanced by the Scheduler
//
// Contract:
//   - Timeslice is called once per cycle and must return after a small, bounded amount of work
//     (no blocking I/O, no sleeping). true means finished: the scheduler removes the task
//   - Start is called exactly once when the task is added, before its first Timeslice
//   - Stop is called exactly once when the task is removed, for any reason; it must release
//     exclusively owned actuators (command them to zero power)
//   - Notifications go through a Sink and are observed only after the cycle's polls complete
//   - Order relative to sibling tasks within a cycle is unspecified
type Task interface {
	ID() uuid.UUID
	Name() string
	Start()
	Stop()
	Timeslice() bool
}

// Sink accepts notifications from tasks
// Implemented by Scheduler; tests substitute a recorder
type Sink interface {
	Queue(ev event.Event)
}

// Base provides identity for a task
// Embed in task structs to satisfy ID and Name
type Base struct {
	id   uuid.UUID
	name string
}

// NewBase assigns a fresh identity
func NewBase(name string) Base {
	return Base{id: uuid.New(), name: name}
}

// ID returns the task identity carried in its notifications
func (b Base) ID() uuid.UUID { return b.id }

// Name returns the human readable task name
func (b Base) Name() string { return b.name }
