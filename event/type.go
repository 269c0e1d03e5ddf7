package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a notification
type Kind int

const (
	// KindFoundTarget signals the approach finished stopped and aligned with its target
	// Trigger: ApproachTask entering ALIGNED
	// Consumer: mission.Orchestrator, audio | Payload: navigation.ArrivalPayload
	KindFoundTarget Kind = iota + 1

	// KindTimeout signals the approach deadline elapsed before alignment
	// Trigger: ApproachTask timer check | Payload: navigation.TimeoutPayload
	KindTimeout

	// KindVuMarkLeft, KindVuMarkCenter, KindVuMarkRight and KindVuMarkUnknown report a marker classification
	// Trigger: vumark.Task every poll interval | Payload: nil
	KindVuMarkLeft
	KindVuMarkCenter
	KindVuMarkRight
	KindVuMarkUnknown

	// KindTaskFault signals a task panicked during Timeslice and was removed
	// Trigger: engine.Scheduler | Payload: FaultPayload
	KindTaskFault

	// KindTaskDone signals a task reported completion and was removed
	// Trigger: engine.Scheduler | Payload: nil
	KindTaskDone
)

var kindNames = map[Kind]string{
	KindFoundTarget:   "FOUND_TARGET",
	KindTimeout:       "TIMEOUT",
	KindVuMarkLeft:    "VUMARK_LEFT",
	KindVuMarkCenter:  "VUMARK_CENTER",
	KindVuMarkRight:   "VUMARK_RIGHT",
	KindVuMarkUnknown: "VUMARK_UNKNOWN",
	KindTaskFault:     "TASK_FAULT",
	KindTaskDone:      "TASK_DONE",
}

// AllKinds returns every defined kind in declaration order
func AllKinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := KindFoundTarget; k <= KindTaskDone; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is a notification produced during a scheduler cycle
// Source is the ID of the task that produced it (uuid.Nil for the scheduler itself)
type Event struct {
	Kind      Kind
	Source    uuid.UUID
	Payload   any
	Cycle     uint64
	Timestamp time.Time
}

func (e Event) String() string {
	return fmt.Sprintf("%s from %s at cycle %d", e.Kind, e.Source, e.Cycle)
}

// FaultPayload describes a recovered task panic
type FaultPayload struct {
	Task   string `json:"task"`
	Reason string `json:"reason"`
}
