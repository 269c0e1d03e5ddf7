// Package vumark periodically classifies a marker and reports it as a notification
package vumark

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/navcore/engine"
	"github.com/lixenwraith/navcore/event"
	"github.com/lixenwraith/navcore/status"
)

// Mark is a marker classification
type Mark int

const (
	Unknown Mark = iota
	Left
	Center
	Right
)

func (m Mark) String() string {
	switch m {
	case Unknown:
		return "UNKNOWN"
	case Left:
		return "LEFT"
	case Center:
		return "CENTER"
	case Right:
		return "RIGHT"
	default:
		return fmt.Sprintf("Mark(%d)", int(m))
	}
}

// ParseMark resolves a marker name such as "left" or "LEFT"
func ParseMark(s string) (Mark, error) {
	for m := Unknown; m <= Right; m++ {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return Unknown, fmt.Errorf("unknown mark %q", s)
}

// Kind returns the notification kind reporting m
func (m Mark) Kind() event.Kind {
	switch m {
	case Left:
		return event.KindVuMarkLeft
	case Center:
		return event.KindVuMarkCenter
	case Right:
		return event.KindVuMarkRight
	default:
		return event.KindVuMarkUnknown
	}
}

// MarkOf converts a notification kind back to a Mark
func MarkOf(k event.Kind) (Mark, bool) {
	switch k {
	case event.KindVuMarkLeft:
		return Left, true
	case event.KindVuMarkCenter:
		return Center, true
	case event.KindVuMarkRight:
		return Right, true
	case event.KindVuMarkUnknown:
		return Unknown, true
	}
	return Unknown, false
}

// Classifier reads the current marker; must not block
type Classifier interface {
	Classify() Mark
}

// ClassifierFunc adapts a function to Classifier
type ClassifierFunc func() Mark

func (f ClassifierFunc) Classify() Mark { return f() }

// Task classifies once per poll interval and queues the result
// Never finishes on its own; the owner removes it
type Task struct {
	engine.Base
	classifier Classifier
	sink       engine.Sink
	clock      engine.TimeProvider
	rate       time.Duration
	timer      *engine.Timer

	statMark  *status.AtomicString
	statPolls *atomic.Int64
}

// NewTask creates a marker task polling every rate
func NewTask(c Classifier, sink engine.Sink, clock engine.TimeProvider, rate time.Duration, reg *status.Registry) *Task {
	return &Task{
		Base:       engine.NewBase("vumark"),
		classifier: c,
		sink:       sink,
		clock:      clock,
		rate:       rate,
		statMark:   reg.Strings.Get("vumark.mark"),
		statPolls:  reg.Ints.Get("vumark.polls"),
	}
}

func (t *Task) Start() {
	t.timer = engine.ArmTimer(t.clock)
}

func (t *Task) Stop() {}

func (t *Task) Timeslice() bool {
	if t.timer == nil || !t.timer.Exceeded(t.rate) {
		return false
	}
	mark := t.classifier.Classify()
	t.statMark.Store(mark.String())
	t.statPolls.Add(1)
	log.Printf("vumark: classified %s", mark)
	t.sink.Queue(event.Event{Kind: mark.Kind(), Source: t.ID()})
	t.timer = engine.ArmTimer(t.clock)
	return false
}

var _ engine.Task = (*Task)(nil)
