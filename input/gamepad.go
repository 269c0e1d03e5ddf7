package input

import (
	"fmt"
	"sync"
)

// Button identifies a digital pad input
type Button uint8

const (
	ButtonA Button = iota // pause
	ButtonB               // begin approach
	ButtonX               // cycle find method
	ButtonY
	ButtonStart
	buttonCount
)

var buttonNames = [buttonCount]string{"A", "B", "X", "Y", "START"}

func (b Button) String() string {
	if b < buttonCount {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// Axis identifies an analog pad input in [-1, 1]
// Stick Y follows gamepad convention: pushing forward reads negative
type Axis uint8

const (
	LeftStickX Axis = iota
	LeftStickY
	RightStickX
	axisCount
)

var axisNames = [axisCount]string{"LX", "LY", "RX"}

func (a Axis) String() string {
	if a < axisCount {
		return axisNames[a]
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// Gamepad is the human-input contract read by tasks once per cycle
// Implementations must be safe to read from the scheduler goroutine while
// another goroutine feeds them
type Gamepad interface {
	Button(b Button) bool
	Axis(a Axis) float64
}

// StaticPad holds values set directly, for tests and headless runs
type StaticPad struct {
	mu      sync.RWMutex
	buttons [buttonCount]bool
	axes    [axisCount]float64
}

func (p *StaticPad) Button(b Button) bool {
	if b >= buttonCount {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.buttons[b]
}

func (p *StaticPad) Axis(a Axis) float64 {
	if a >= axisCount {
		return 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.axes[a]
}

func (p *StaticPad) SetButton(b Button, down bool) {
	if b >= buttonCount {
		return
	}
	p.mu.Lock()
	p.buttons[b] = down
	p.mu.Unlock()
}

func (p *StaticPad) SetAxis(a Axis, v float64) {
	if a >= axisCount {
		return
	}
	p.mu.Lock()
	p.axes[a] = v
	p.mu.Unlock()
}

// Edge reports button changes between successive polls
// Owned by a single reader; a latched button reports one edge per toggle
type Edge struct {
	pad  Gamepad
	last [buttonCount]bool
}

// NewEdge creates an edge detector primed with the pad's current state
func NewEdge(pad Gamepad) *Edge {
	e := &Edge{pad: pad}
	for b := Button(0); b < buttonCount; b++ {
		e.last[b] = pad.Button(b)
	}
	return e
}

// Changed reports whether b differs from the previous call for b
func (e *Edge) Changed(b Button) bool {
	if b >= buttonCount {
		return false
	}
	cur := e.pad.Button(b)
	changed := cur != e.last[b]
	e.last[b] = cur
	return changed
}
