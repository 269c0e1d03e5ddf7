package engine

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/lixenwraith/navcore/core"
	"github.com/lixenwraith/navcore/event"
	"github.com/lixenwraith/navcore/parameter"
	"github.com/lixenwraith/navcore/status"
)

// Scheduler advances tasks cooperatively on a single goroutine
//
// A cycle (Tick) has two phases:
//  1. Poll: every active task's Timeslice runs to completion, in registration order
//  2. Dispatch: notifications queued during the poll phase are routed to handlers
//
// Not safe for concurrent use except Queue, Cycle and Pending, which may be called from any goroutine
type Scheduler struct {
	tasks  []*entry
	queue  *event.Queue
	router *event.Router[*Scheduler]
	clock  TimeProvider
	cycle  atomic.Uint64

	// Cached metric pointers
	statCycles    *atomic.Int64
	statTasks     *atomic.Int64
	statFaults    *atomic.Int64
	statQueuePeak *atomic.Int64
	statOverflow  *atomic.Int64
}

type entry struct {
	task    Task
	removed bool
}

// NewScheduler creates a scheduler publishing metrics to reg
func NewScheduler(clock TimeProvider, reg *status.Registry) *Scheduler {
	q := event.NewQueue()
	return &Scheduler{
		queue:      q,
		router:     event.NewRouter[*Scheduler](q),
		clock:      clock,
		statCycles: reg.Ints.Get("engine.cycles"),
		statTasks:  reg.Ints.Get("engine.tasks"),
		statFaults: reg.Ints.Get("engine.faults"),

		statQueuePeak: reg.Ints.Get("engine.queue_peak"),
		statOverflow:  reg.Ints.Get("engine.queue_overflow"),
	}
}

// RegisterHandler adds a notification handler, invoked during the dispatch phase
func (s *Scheduler) RegisterHandler(h event.Handler[*Scheduler]) {
	s.router.Register(h)
}

// AddTask activates a task and runs its Start hook synchronously
// A task added during a cycle is first polled on the next cycle
func (s *Scheduler) AddTask(t Task) {
	if s.find(t.ID()) != nil {
		return
	}
	if r, stack := core.Recover(t.Start); r != nil {
		log.Printf("sched: task %s start panicked: %v\n%s", t.Name(), r, stack)
		s.fault(t, r)
		return
	}
	s.tasks = append(s.tasks, &entry{task: t})
	s.statTasks.Store(int64(s.Len()))
	log.Printf("sched: added task %s (%s)", t.Name(), t.ID())
}

// RemoveTask deactivates a task and runs its Stop hook synchronously
// Idempotent; returns false when the task was not active
func (s *Scheduler) RemoveTask(id uuid.UUID) bool {
	e := s.find(id)
	if e == nil {
		return false
	}
	s.remove(e)
	return true
}

// Queue accepts a notification, stamping cycle and time when unset
// Never drops: a backlog past parameter.EventQueueSize is counted in engine.queue_overflow
func (s *Scheduler) Queue(ev event.Event) {
	if ev.Cycle == 0 {
		ev.Cycle = s.cycle.Load()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.clock.Now()
	}
	n := s.queue.Push(ev)
	if n > parameter.EventQueueSize {
		if s.statOverflow.Add(1) == 1 {
			log.Printf("sched: notification backlog %d exceeds %d, queue growing", n, parameter.EventQueueSize)
		}
	}
}

// Tick runs one poll phase followed by one dispatch phase
func (s *Scheduler) Tick() {
	cycle := s.cycle.Add(1)

	// Snapshot: tasks added during this phase wait for the next cycle
	active := s.tasks[:len(s.tasks):len(s.tasks)]
	for _, e := range active {
		if e.removed {
			continue
		}
		if s.poll(e) && !e.removed {
			s.remove(e)
			s.Queue(event.Event{Kind: event.KindTaskDone, Source: e.task.ID()})
		}
	}
	s.compact()

	s.router.DispatchAll(s)
	s.compact()

	s.statCycles.Store(int64(cycle))
	s.statTasks.Store(int64(s.Len()))
	s.statQueuePeak.Store(int64(s.queue.Peak()))
}

// StopAll removes every task, running Stop hooks in reverse registration order
func (s *Scheduler) StopAll() {
	for i := len(s.tasks) - 1; i >= 0; i-- {
		if e := s.tasks[i]; !e.removed {
			s.remove(e)
		}
	}
	s.compact()
	s.statTasks.Store(0)
}

// Tasks returns the active tasks in poll order
func (s *Scheduler) Tasks() []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, e := range s.tasks {
		if !e.removed {
			out = append(out, e.task)
		}
	}
	return out
}

// Len returns the number of active tasks
func (s *Scheduler) Len() int {
	n := 0
	for _, e := range s.tasks {
		if !e.removed {
			n++
		}
	}
	return n
}

// Cycle returns the number of completed or in-progress ticks
func (s *Scheduler) Cycle() uint64 {
	return s.cycle.Load()
}

// Pending returns the number of queued, undispatched notifications
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// poll runs one Timeslice, converting a panic into a fault and removal
func (s *Scheduler) poll(e *entry) (done bool) {
	r, stack := core.Recover(func() { done = e.task.Timeslice() })
	if r == nil {
		return done
	}
	log.Printf("sched: task %s panicked: %v\n%s", e.task.Name(), r, stack)
	s.remove(e)
	s.fault(e.task, r)
	return false
}

func (s *Scheduler) remove(e *entry) {
	e.removed = true
	if r, stack := core.Recover(e.task.Stop); r != nil {
		log.Printf("sched: task %s stop panicked: %v\n%s", e.task.Name(), r, stack)
		s.statFaults.Add(1)
	}
	log.Printf("sched: removed task %s (%s)", e.task.Name(), e.task.ID())
}

func (s *Scheduler) fault(t Task, r any) {
	s.statFaults.Add(1)
	s.Queue(event.Event{
		Kind:    event.KindTaskFault,
		Source:  t.ID(),
		Payload: event.FaultPayload{Task: t.Name(), Reason: fmt.Sprint(r)},
	})
}

func (s *Scheduler) find(id uuid.UUID) *entry {
	i := slices.IndexFunc(s.tasks, func(e *entry) bool { return !e.removed && e.task.ID() == id })
	if i < 0 {
		return nil
	}
	return s.tasks[i]
}

func (s *Scheduler) compact() {
	s.tasks = slices.DeleteFunc(s.tasks, func(e *entry) bool { return e.removed })
}
