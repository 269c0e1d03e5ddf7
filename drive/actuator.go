package drive

import "fmt"

// Channel identifies one drive motor
type Channel int

const (
	Left Channel = iota
	Right
)

func (c Channel) String() string {
	switch c {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// Direction is the mounting orientation of a motor
// Reverse motors have their commanded power negated by the actuator
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// ParseDirection converts "forward"/"reverse" into a Direction
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward", "":
		return Forward, nil
	case "reverse":
		return Reverse, nil
	default:
		return Forward, fmt.Errorf("unknown direction %q", s)
	}
}

// RunMode selects the motor controller's regulation mode
type RunMode int

const (
	RunWithoutEncoder RunMode = iota
	RunUsingEncoder
)

// Actuator is the physical motor layer
// SetDirection and SetMode are configuration calls made once at initialization;
// SetPower is the hot-loop call and receives values in [-1, 1]
type Actuator interface {
	SetPower(ch Channel, power float64) error
	SetDirection(ch Channel, dir Direction) error
	SetMode(ch Channel, mode RunMode) error
}

// Command is a pair of wheel powers, each in [-1, 1]
// Passed by value; the mixer never retains a caller's Command
type Command struct {
	Left  float64
	Right float64
}

func (c Command) String() string {
	return fmt.Sprintf("L[%+5.2f], R[%+5.2f]", c.Left, c.Right)
}

// Clip saturates v into [lo, hi]
func Clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
