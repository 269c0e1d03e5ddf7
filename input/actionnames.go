package input

// actionRegistry maps canonical action names to KeyEntry structs
// Used by the keymap config loader to resolve TOML action strings to bindings
var actionRegistry = map[string]KeyEntry{
	// Unbind sentinel
	"none": {},

	"quit": {Behavior: BehaviorSystem, Intent: IntentQuit},

	// Latched buttons
	"pause":       {Behavior: BehaviorButton, Button: ButtonA},
	"begin":       {Behavior: BehaviorButton, Button: ButtonB},
	"find_method": {Behavior: BehaviorButton, Button: ButtonX},
	"button_y":    {Behavior: BehaviorButton, Button: ButtonY},
	"start":       {Behavior: BehaviorButton, Button: ButtonStart},

	// Axes
	"forward":      {Behavior: BehaviorAxis, Axis: LeftStickY, Sign: -1},
	"backward":     {Behavior: BehaviorAxis, Axis: LeftStickY, Sign: 1},
	"strafe_left":  {Behavior: BehaviorAxis, Axis: LeftStickX, Sign: -1},
	"strafe_right": {Behavior: BehaviorAxis, Axis: LeftStickX, Sign: 1},
	"yaw_left":     {Behavior: BehaviorAxis, Axis: RightStickX, Sign: -1},
	"yaw_right":    {Behavior: BehaviorAxis, Axis: RightStickX, Sign: 1},
}

// ActionEntry returns the binding for a canonical action name
func ActionEntry(name string) (KeyEntry, bool) {
	e, ok := actionRegistry[name]
	return e, ok
}
