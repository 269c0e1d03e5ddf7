package parameter

// Drivetrain
const (
	// PivotMultiplier scales down the inner wheel during RotateRobot, tightening the turn radius
	PivotMultiplier = 1.5

	// MaxPower is the magnitude limit of any axis intent or wheel command
	MaxPower = 1.0
)

// Simulation
const (
	// SimWheelSpeed is the wheel surface speed (mm/s) at full power
	SimWheelSpeed = 600.0

	// SimTrackWidth is the distance (mm) between wheel contact points
	SimTrackWidth = 400.0

	// SimFieldOfView is the half angle (degrees) within which the target is visible
	SimFieldOfView = 35.0

	// SimVisibleRange is the maximum distance (mm) at which the target is tracked
	SimVisibleRange = 3000.0
)
