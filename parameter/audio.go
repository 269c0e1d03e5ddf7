package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100

	// AudioBufferDuration is the speaker buffer; bounds cue latency
	AudioBufferDuration = 100 * time.Millisecond

	// AudioMinCueGap suppresses a repeated cue arriving sooner than this
	AudioMinCueGap = 250 * time.Millisecond
)

// Arrival Chime (rising two-tone)
const (
	ArrivalNote1Duration = 120 * time.Millisecond
	ArrivalNote2Duration = 280 * time.Millisecond
	ArrivalAttack        = 5 * time.Millisecond
	ArrivalNote1Release  = 40 * time.Millisecond
	ArrivalNote2Release  = 200 * time.Millisecond
)

// Timeout Buzz
const (
	TimeoutBuzzDuration = 400 * time.Millisecond
	TimeoutBuzzAttack   = 10 * time.Millisecond
	TimeoutBuzzRelease  = 120 * time.Millisecond
)

// Fault Buzz (three short pulses)
const (
	FaultPulseDuration = 80 * time.Millisecond
	FaultPulseGap      = 60 * time.Millisecond
	FaultPulseAttack   = 5 * time.Millisecond
	FaultPulseRelease  = 20 * time.Millisecond
)
