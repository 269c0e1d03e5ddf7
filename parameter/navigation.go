package parameter

import "time"

// Approach State Machine
const (
	// DefaultTimeout bounds a navigation attempt once Begin is called
	DefaultTimeout = 30 * time.Second

	// InitialApproachDistance is the cruise control standoff (mm) that ends INITIAL_APPROACH
	InitialApproachDistance = 200.0

	// FinalApproachDistance is the cruise control standoff (mm) that ends FINAL_APPROACH
	// Must not exceed InitialApproachDistance
	FinalApproachDistance = 200.0

	// AlignTolerance is the robot bearing (degrees) considered aligned in AT_TARGET
	AlignTolerance = 1.5

	// FindStraightSpeed is the axial power used by the APPROACH_STRAIGHT find method
	FindStraightSpeed = 0.3

	// SearchTurnSpeed is the yaw power used by rotating find methods and LOST_TARGET
	SearchTurnSpeed = 0.06

	// AlignTurnSpeed is the yaw power used to square up in AT_TARGET
	AlignTurnSpeed = 0.10
)

// Cruise Control
const (
	// YawGain converts relative bearing error (degrees) into yaw power
	YawGain = 0.018

	// LateralGain converts strafe offset (mm) into lateral power
	LateralGain = 0.0027

	// AxialGain converts standoff distance error (mm) into axial power
	AxialGain = 0.0017

	// CloseAxial is the standoff distance error (mm) considered arrived
	CloseAxial = 20.0

	// CloseLateral is the strafe offset (mm) considered on axis
	CloseLateral = 10.0

	// CloseYaw is the relative bearing (degrees) considered pointed at the target
	CloseYaw = 5.0
)

// Mission
const (
	// MaxRetries is the number of additional navigation attempts after a timeout
	MaxRetries = 2
)

// Marker Classification
const (
	// VuMarkPollRate is the interval between marker classifications
	VuMarkPollRate = 2 * time.Second
)
