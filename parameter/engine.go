package parameter

import "time"

// Control Loop Timing
const (
	// TickInterval is the scheduler cycle interval (50 Hz)
	TickInterval = 20 * time.Millisecond

	// MaxTickLag is the number of intervals the loop may fall behind before the deadline is re-anchored
	MaxTickLag = 2
)

// Notification Queue Limits
const (
	// EventQueueSize is the preallocated notification capacity; a larger backlog grows
	// the queue and is logged by the scheduler
	EventQueueSize = 256
)

// Telemetry
const (
	// TelemetryBufferLines is the number of telemetry lines retained for the console
	TelemetryBufferLines = 64

	// TelemetryStreamID is the SSE stream name telemetry lines are published on
	TelemetryStreamID = "telemetry"

	// EventStreamID is the SSE stream name notifications are published on
	EventStreamID = "events"
)

// Human Input
const (
	// KeyHoldWindow is how long a keyboard axis press stays active without a repeat
	KeyHoldWindow = 250 * time.Millisecond
)
