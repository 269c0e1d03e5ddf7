package input

// IntentType is the result of feeding one key to a KeyboardPad
type IntentType uint8

const (
	IntentNone   IntentType = iota
	IntentQuit              // q, Ctrl+C
	IntentButton            // a latched button toggled
	IntentAxis              // an axis was driven
)
