package input

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/navcore/parameter"
)

// KeyboardPad is a Gamepad fed by terminal key events
//
// Terminals report presses only, so:
//   - Buttons are latched: each press toggles the button
//   - Axes hold their driven value for parameter.KeyHoldWindow after the last press,
//     then read 0; key repeat keeps a held key active
//
// Safe for concurrent use: the console goroutine feeds HandleKey while the scheduler reads
type KeyboardPad struct {
	mu      sync.Mutex
	table   *KeyTable
	now     func() time.Time
	hold    time.Duration
	buttons [buttonCount]bool
	axes    [axisCount]float64
	pressed [axisCount]time.Time
}

// NewKeyboardPad creates a pad using table, or the default table when nil
func NewKeyboardPad(table *KeyTable) *KeyboardPad {
	if table == nil {
		table = DefaultKeyTable()
	}
	return &KeyboardPad{
		table: table,
		now:   time.Now,
		hold:  parameter.KeyHoldWindow,
	}
}

// SetClock replaces the time source used for axis hold
func (p *KeyboardPad) SetClock(now func() time.Time) {
	p.mu.Lock()
	p.now = now
	p.mu.Unlock()
}

// HandleKey applies one key event and reports what it did
func (p *KeyboardPad) HandleKey(key tcell.Key, r rune) IntentType {
	var entry KeyEntry
	var ok bool
	if key == tcell.KeyRune {
		entry, ok = p.table.Runes[r]
	} else {
		entry, ok = p.table.SpecialKeys[key]
	}
	if !ok {
		return IntentNone
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch entry.Behavior {
	case BehaviorSystem:
		return entry.Intent
	case BehaviorButton:
		if entry.Button < buttonCount {
			p.buttons[entry.Button] = !p.buttons[entry.Button]
		}
		return IntentButton
	case BehaviorAxis:
		if entry.Axis < axisCount {
			p.axes[entry.Axis] = entry.Sign
			p.pressed[entry.Axis] = p.now()
		}
		return IntentAxis
	}
	return IntentNone
}

// HandleEvent applies a tcell key event; other events are ignored
func (p *KeyboardPad) HandleEvent(ev tcell.Event) IntentType {
	kev, ok := ev.(*tcell.EventKey)
	if !ok {
		return IntentNone
	}
	return p.HandleKey(kev.Key(), kev.Rune())
}

func (p *KeyboardPad) Button(b Button) bool {
	if b >= buttonCount {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buttons[b]
}

func (p *KeyboardPad) Axis(a Axis) float64 {
	if a >= axisCount {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.axes[a] == 0 || p.now().Sub(p.pressed[a]) > p.hold {
		return 0
	}
	return p.axes[a]
}

// Release zeroes every axis immediately
func (p *KeyboardPad) Release() {
	p.mu.Lock()
	p.axes = [axisCount]float64{}
	p.mu.Unlock()
}

var (
	_ Gamepad = (*KeyboardPad)(nil)
	_ Gamepad = (*StaticPad)(nil)
)
