package input

import (
	"maps"

	"github.com/gdamore/tcell/v2"
)

// KeyBehavior classifies how a key is processed
type KeyBehavior uint8

const (
	BehaviorNone   KeyBehavior = iota
	BehaviorButton             // toggles a latched button
	BehaviorAxis               // drives an axis toward Sign
	BehaviorSystem             // emits IntentType directly
)

// KeyEntry describes a key's behavior without function pointers
type KeyEntry struct {
	Behavior KeyBehavior
	Button   Button
	Axis     Axis
	Sign     float64
	Intent   IntentType
}

// KeyTable maps keys to pad actions
type KeyTable struct {
	// Special keys (Ctrl+*, arrows)
	SpecialKeys map[tcell.Key]KeyEntry

	// Printable rune bindings
	Runes map[rune]KeyEntry
}

// DefaultKeyTable returns the default bindings
//
//	a pause    b begin    f find method    q quit
//	w/s or up/down     axial
//	j/l                strafe
//	e/r or left/right  yaw
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		SpecialKeys: map[tcell.Key]KeyEntry{
			tcell.KeyCtrlC: {Behavior: BehaviorSystem, Intent: IntentQuit},
			tcell.KeyUp:    {Behavior: BehaviorAxis, Axis: LeftStickY, Sign: -1},
			tcell.KeyDown:  {Behavior: BehaviorAxis, Axis: LeftStickY, Sign: 1},
			tcell.KeyLeft:  {Behavior: BehaviorAxis, Axis: RightStickX, Sign: -1},
			tcell.KeyRight: {Behavior: BehaviorAxis, Axis: RightStickX, Sign: 1},
		},
		Runes: map[rune]KeyEntry{
			'q': {Behavior: BehaviorSystem, Intent: IntentQuit},
			'a': {Behavior: BehaviorButton, Button: ButtonA},
			'b': {Behavior: BehaviorButton, Button: ButtonB},
			'f': {Behavior: BehaviorButton, Button: ButtonX},
			'y': {Behavior: BehaviorButton, Button: ButtonY},
			'w': {Behavior: BehaviorAxis, Axis: LeftStickY, Sign: -1},
			's': {Behavior: BehaviorAxis, Axis: LeftStickY, Sign: 1},
			'j': {Behavior: BehaviorAxis, Axis: LeftStickX, Sign: -1},
			'l': {Behavior: BehaviorAxis, Axis: LeftStickX, Sign: 1},
			'e': {Behavior: BehaviorAxis, Axis: RightStickX, Sign: -1},
			'r': {Behavior: BehaviorAxis, Axis: RightStickX, Sign: 1},
		},
	}
}

// Clone returns a deep copy safe to mutate
func (kt *KeyTable) Clone() *KeyTable {
	return &KeyTable{
		SpecialKeys: maps.Clone(kt.SpecialKeys),
		Runes:       maps.Clone(kt.Runes),
	}
}
