package drive

// Drivetrain is the motion interface tasks command
// Speeds are unitless power fractions; out-of-range values are clamped, never rejected
type Drivetrain interface {
	// Straight drives forward (positive) or backward
	Straight(speed float64)

	// TurnLeft rotates counter-clockwise in place
	TurnLeft(speed float64)

	// TurnRight rotates clockwise in place
	TurnRight(speed float64)

	// Stop commands zero power on every owned motor
	Stop()

	// MoveRobot mixes three motion axes into wheel powers
	MoveRobot(axial, lateral, yaw float64)

	// RotateRobot pivots using the asymmetric pivot path
	RotateRobot(speed float64)
}
