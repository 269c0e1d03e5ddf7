// Package mission owns the approach task and sequences attempts
package mission

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lixenwraith/navcore/engine"
	"github.com/lixenwraith/navcore/event"
	"github.com/lixenwraith/navcore/input"
	"github.com/lixenwraith/navcore/navigation"
	"github.com/lixenwraith/navcore/status"
	"github.com/lixenwraith/navcore/telemetry"
	"github.com/lixenwraith/navcore/vumark"
)

// Outcome is the mission result
type Outcome int

const (
	Idle Outcome = iota
	Running
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Idle:
		return "IDLE"
	case Running:
		return "RUNNING"
	case Succeeded:
		return "SUCCEEDED"
	case Failed:
		return "FAILED"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Factory builds an approach task in WAITING using method
type Factory func(method navigation.FindMethod) *navigation.ApproachTask

// Config tunes the orchestrator
type Config struct {
	// MaxRetries is the number of further attempts after a timeout
	MaxRetries int
	// Order is the find method rotation used for retries
	Order []navigation.FindMethod
	// Initial is the find method of the first attempt
	Initial navigation.FindMethod
}

// Orchestrator is the owner of the approach task
//
// As a task it watches the pad: B begins a waiting approach, X cycles the find method.
// As a handler it reacts to the approach outcome:
//   - FOUND_TARGET: removes the task, mission succeeded
//   - TIMEOUT: arms a new attempt with the next find method until retries run out
//   - TASK_FAULT: mission failed
type Orchestrator struct {
	engine.Base
	cfg       Config
	factory   Factory
	pad       input.Gamepad
	edge      *input.Edge
	telemetry telemetry.Sink

	method   navigation.FindMethod
	attempt  int
	current  *navigation.ApproachTask
	outcome  Outcome
	lastMark vumark.Mark

	doneOnce sync.Once
	done     chan struct{}

	statOutcome *status.AtomicString
	statAttempt *atomic.Int64
	statMethod  *status.AtomicString
	statMark    *status.AtomicString
}

// NewOrchestrator creates an idle orchestrator; pad and sink may be nil
func NewOrchestrator(cfg Config, factory Factory, pad input.Gamepad, sink telemetry.Sink, reg *status.Registry) *Orchestrator {
	if len(cfg.Order) == 0 {
		cfg.Order = []navigation.FindMethod{navigation.ApproachStraight, navigation.RotateRight, navigation.RotateLeft}
	}
	if sink == nil {
		sink = telemetry.Discard
	}
	o := &Orchestrator{
		Base:        engine.NewBase("mission"),
		cfg:         cfg,
		factory:     factory,
		pad:         pad,
		telemetry:   sink,
		method:      cfg.Initial,
		done:        make(chan struct{}),
		statOutcome: reg.Strings.Get("mission.outcome"),
		statAttempt: reg.Ints.Get("mission.attempt"),
		statMethod:  reg.Strings.Get("mission.find_method"),
		statMark:    reg.Strings.Get("mission.vumark"),
	}
	if pad != nil {
		o.edge = input.NewEdge(pad)
	}
	o.setOutcome(Idle)
	o.statMethod.Store(o.method.String())
	return o
}

// Arm adds a WAITING approach task to s; it reports telemetry until begun
func (o *Orchestrator) Arm(s *engine.Scheduler) {
	if o.current != nil {
		return
	}
	o.attempt++
	o.statAttempt.Store(int64(o.attempt))
	o.current = o.factory(o.method)
	s.AddTask(o.current)
	log.Printf("mission: attempt %d armed with %s", o.attempt, o.method)
}

// Launch arms if needed and begins the approach
func (o *Orchestrator) Launch(s *engine.Scheduler) {
	o.Arm(s)
	o.begin()
}

// Current returns the active approach task, nil between attempts
func (o *Orchestrator) Current() *navigation.ApproachTask { return o.current }

func (o *Orchestrator) Outcome() Outcome              { return o.outcome }
func (o *Orchestrator) Attempt() int                  { return o.attempt }
func (o *Orchestrator) Method() navigation.FindMethod { return o.method }
func (o *Orchestrator) LastMark() vumark.Mark         { return o.lastMark }

// Done is closed once the mission succeeds or fails
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

func (o *Orchestrator) Start() {}
func (o *Orchestrator) Stop()  {}

// Timeslice reads operator input
func (o *Orchestrator) Timeslice() bool {
	if o.edge == nil {
		return false
	}
	if o.edge.Changed(input.ButtonX) {
		o.setMethod(o.method.Next())
		if o.current != nil {
			o.current.SetFindMethod(o.method)
		}
	}
	if o.edge.Changed(input.ButtonB) {
		o.begin()
	}
	return false
}

func (o *Orchestrator) EventKinds() []event.Kind {
	return []event.Kind{
		event.KindFoundTarget,
		event.KindTimeout,
		event.KindTaskFault,
		event.KindVuMarkLeft,
		event.KindVuMarkCenter,
		event.KindVuMarkRight,
		event.KindVuMarkUnknown,
	}
}

func (o *Orchestrator) HandleEvent(s *engine.Scheduler, ev event.Event) {
	if mark, ok := vumark.MarkOf(ev.Kind); ok {
		if mark != o.lastMark {
			o.telemetry.AddLine("mission: vumark " + mark.String())
		}
		o.lastMark = mark
		o.statMark.Store(mark.String())
		return
	}

	if !o.owns(ev.Source) {
		return
	}

	switch ev.Kind {
	case event.KindFoundTarget:
		s.RemoveTask(o.current.ID())
		o.current = nil
		o.finish(Succeeded)

	case event.KindTimeout:
		// The task finished itself; the scheduler removes it
		o.current = nil
		if o.attempt > o.cfg.MaxRetries {
			o.finish(Failed)
			return
		}
		o.setMethod(o.nextMethod())
		o.telemetry.AddLine(fmt.Sprintf("mission: retrying with %s", o.method))
		o.Launch(s)

	case event.KindTaskFault:
		s.RemoveTask(o.current.ID())
		o.current = nil
		o.finish(Failed)
	}
}

func (o *Orchestrator) begin() {
	if o.current == nil || o.current.State() != navigation.Waiting {
		return
	}
	o.current.Begin()
	o.setOutcome(Running)
}

func (o *Orchestrator) owns(id uuid.UUID) bool {
	return o.current != nil && o.current.ID() == id
}

func (o *Orchestrator) nextMethod() navigation.FindMethod {
	for i, m := range o.cfg.Order {
		if m == o.method {
			return o.cfg.Order[(i+1)%len(o.cfg.Order)]
		}
	}
	return o.cfg.Order[0]
}

func (o *Orchestrator) setMethod(m navigation.FindMethod) {
	o.method = m
	o.statMethod.Store(m.String())
}

func (o *Orchestrator) finish(out Outcome) {
	o.setOutcome(out)
	o.telemetry.AddLine(fmt.Sprintf("mission: %s after %d attempt(s)", out, o.attempt))
	o.doneOnce.Do(func() { close(o.done) })
}

func (o *Orchestrator) setOutcome(out Outcome) {
	o.outcome = out
	o.statOutcome.Store(out.String())
	log.Printf("mission: %s", out)
}

var (
	_ engine.Task                      = (*Orchestrator)(nil)
	_ event.Handler[*engine.Scheduler] = (*Orchestrator)(nil)
)
