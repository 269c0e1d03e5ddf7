package input

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

// TestKeyboardPadButtonsLatch tests that each press toggles a button
func TestKeyboardPadButtonsLatch(t *testing.T) {
	pad := NewKeyboardPad(nil)

	if got := pad.HandleKey(tcell.KeyRune, 'a'); got != IntentButton {
		t.Fatalf("Expected IntentButton, got %v", got)
	}
	if !pad.Button(ButtonA) {
		t.Errorf("Expected A latched after first press")
	}
	pad.HandleKey(tcell.KeyRune, 'a')
	if pad.Button(ButtonA) {
		t.Errorf("Expected A released after second press")
	}
}

// TestKeyboardPadQuit tests system intents
func TestKeyboardPadQuit(t *testing.T) {
	pad := NewKeyboardPad(nil)

	if got := pad.HandleKey(tcell.KeyRune, 'q'); got != IntentQuit {
		t.Errorf("Expected IntentQuit for q, got %v", got)
	}
	if got := pad.HandleKey(tcell.KeyCtrlC, 0); got != IntentQuit {
		t.Errorf("Expected IntentQuit for Ctrl+C, got %v", got)
	}
	if got := pad.HandleKey(tcell.KeyRune, '#'); got != IntentNone {
		t.Errorf("Expected IntentNone for unbound key, got %v", got)
	}
}

// TestKeyboardPadAxisHold tests that an axis holds for the window then reads zero
func TestKeyboardPadAxisHold(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pad := NewKeyboardPad(nil)
	pad.SetClock(func() time.Time { return now })

	pad.HandleKey(tcell.KeyRune, 'w')
	if got := pad.Axis(LeftStickY); got != -1 {
		t.Errorf("Expected LeftStickY -1 after w, got %v", got)
	}

	now = now.Add(100 * time.Millisecond)
	if got := pad.Axis(LeftStickY); got != -1 {
		t.Errorf("Expected axis held inside window, got %v", got)
	}

	now = now.Add(time.Second)
	if got := pad.Axis(LeftStickY); got != 0 {
		t.Errorf("Expected axis released after window, got %v", got)
	}

	pad.HandleKey(tcell.KeyRight, 0)
	pad.Release()
	if got := pad.Axis(RightStickX); got != 0 {
		t.Errorf("Expected Release to zero axes, got %v", got)
	}
}

// TestKeyboardPadEvent tests feeding tcell events
func TestKeyboardPadEvent(t *testing.T) {
	pad := NewKeyboardPad(nil)

	ev := tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModNone)
	if got := pad.HandleEvent(ev); got != IntentButton {
		t.Errorf("Expected IntentButton, got %v", got)
	}
	if !pad.Button(ButtonB) {
		t.Errorf("Expected B latched")
	}
	if got := pad.HandleEvent(tcell.NewEventResize(80, 24)); got != IntentNone {
		t.Errorf("Expected resize ignored, got %v", got)
	}
}

// TestEdge tests single edge per toggle
func TestEdge(t *testing.T) {
	pad := &StaticPad{}
	edge := NewEdge(pad)

	if edge.Changed(ButtonB) {
		t.Errorf("Expected no edge before any change")
	}
	pad.SetButton(ButtonB, true)
	if !edge.Changed(ButtonB) {
		t.Errorf("Expected edge after press")
	}
	if edge.Changed(ButtonB) {
		t.Errorf("Expected edge reported once")
	}
	pad.SetButton(ButtonB, false)
	if !edge.Changed(ButtonB) {
		t.Errorf("Expected edge after release")
	}
}

// TestLoadKeyConfig tests keymap overrides
func TestLoadKeyConfig(t *testing.T) {
	data := []byte(`
[runes]
p = "pause"
a = "none"
space = "begin"

[keys]
"ctrl+q" = "quit"
`)
	override, err := LoadKeyConfig(data)
	if err != nil {
		t.Fatalf("LoadKeyConfig failed: %v", err)
	}
	pad := NewKeyboardPad(MergeKeyTable(DefaultKeyTable(), override))

	if got := pad.HandleKey(tcell.KeyRune, 'a'); got != IntentNone {
		t.Errorf("Expected a unbound, got %v", got)
	}
	pad.HandleKey(tcell.KeyRune, 'p')
	if !pad.Button(ButtonA) {
		t.Errorf("Expected p to toggle pause")
	}
	pad.HandleKey(tcell.KeyRune, ' ')
	if !pad.Button(ButtonB) {
		t.Errorf("Expected space to toggle begin")
	}
	if got := pad.HandleKey(tcell.KeyCtrlQ, 0); got != IntentQuit {
		t.Errorf("Expected Ctrl+Q to quit, got %v", got)
	}

	bad := []string{
		"[runes]\nx = \"fly\"\n",
		"[runes]\nxy = \"pause\"\n",
		"[keys]\n\"hyper\" = \"quit\"\n",
		"[runes\n",
	}
	for _, b := range bad {
		if _, err := LoadKeyConfig([]byte(b)); err == nil {
			t.Errorf("Expected error for %q", b)
		}
	}
}
