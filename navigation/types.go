package navigation

import (
	"fmt"
	"strings"
	"time"
)

// Target is a tracked image target; its value is the tracker id
type Target int

const (
	BlueNear Target = iota
	RedFar
	BlueFar
	RedNear
	targetCount
)

var targetNames = [targetCount]string{"BLUE_NEAR", "RED_FAR", "BLUE_FAR", "RED_NEAR"}

func (t Target) String() string {
	if t >= 0 && t < targetCount {
		return targetNames[t]
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// ID returns the tracker id of the target
func (t Target) ID() int { return int(t) }

// ParseTarget accepts names in any case with '-' or '_'
func ParseTarget(s string) (Target, error) {
	name := normalizeName(s)
	for i, n := range targetNames {
		if n == name {
			return Target(i), nil
		}
	}
	return 0, fmt.Errorf("unknown target %q", s)
}

// FindMethod is the search strategy used while the target has not been acquired
type FindMethod int

const (
	ApproachStraight FindMethod = iota
	RotateRight
	RotateLeft
	findMethodCount
)

var findMethodNames = [findMethodCount]string{"APPROACH_STRAIGHT", "ROTATE_RIGHT", "ROTATE_LEFT"}

func (m FindMethod) String() string {
	if m >= 0 && m < findMethodCount {
		return findMethodNames[m]
	}
	return fmt.Sprintf("FindMethod(%d)", int(m))
}

// Next cycles through the strategies in declaration order
func (m FindMethod) Next() FindMethod {
	return (m + 1) % findMethodCount
}

// ParseFindMethod accepts names in any case with '-' or '_'
func ParseFindMethod(s string) (FindMethod, error) {
	name := normalizeName(s)
	for i, n := range findMethodNames {
		if n == name {
			return FindMethod(i), nil
		}
	}
	return 0, fmt.Errorf("unknown find method %q", s)
}

// State is the approach controller state; exactly one is active
type State int

const (
	Waiting State = iota
	FindTarget
	LostTarget
	InitialApproach
	FinalApproach
	AtTarget
	Aligned
	stateCount
)

var stateNames = [stateCount]string{
	"WAITING", "FIND_TARGET", "LOST_TARGET", "INITIAL_APPROACH", "FINAL_APPROACH", "AT_TARGET", "ALIGNED",
}

func (s State) String() string {
	if s >= 0 && s < stateCount {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// States returns the closed state set in declaration order
func States() []State {
	out := make([]State, 0, stateCount)
	for s := Waiting; s < stateCount; s++ {
		out = append(out, s)
	}
	return out
}

func normalizeName(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
}

// ArrivalPayload accompanies event.KindFoundTarget
type ArrivalPayload struct {
	Target  Target        `json:"target"`
	Elapsed time.Duration `json:"elapsed"`
	Pose    Pose          `json:"pose"`
}

// TimeoutPayload accompanies event.KindTimeout
type TimeoutPayload struct {
	Target     Target        `json:"target"`
	State      State         `json:"state"`
	FindMethod FindMethod    `json:"find_method"`
	Elapsed    time.Duration `json:"elapsed"`
}

func (t Target) MarshalText() ([]byte, error)     { return []byte(t.String()), nil }
func (m FindMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (s State) MarshalText() ([]byte, error)      { return []byte(s.String()), nil }
