package navigation

import (
	"fmt"
	"math"

	"github.com/lixenwraith/navcore/parameter"
	"github.com/lixenwraith/navcore/telemetry"
)

// PoseSource is the vision tracking subsystem
// Calls must not block; Pose is only meaningful after Visible returned true this cycle
type PoseSource interface {
	// Visible reports whether target id is tracked this cycle
	Visible(id int) bool
	// Pose returns the robot pose relative to the most recently visible target
	Pose() Pose
	// Refresh rescans every target, reporting whether any is visible
	Refresh() bool
}

// Mover is the part of a drivetrain the facade commands during cruise control
type Mover interface {
	MoveRobot(axial, lateral, yaw float64)
}

// Navigator is the navigation surface the approach controller consumes
type Navigator interface {
	TargetIsVisible(id int) bool
	RelativeBearing() float64
	RobotBearing() float64
	Distance() float64
	Strafe() float64
	// CruiseControl drives toward a standoff distance and reports whether it is reached
	CruiseControl(standoff float64) bool
	// Refresh rescans all targets without changing the tracked target
	Refresh() bool
	// AddTelemetry writes the current tracking state to the telemetry sink
	AddTelemetry()
}

// Gains tunes CruiseControl
type Gains struct {
	Yaw     float64 // power per degree of relative bearing
	Lateral float64 // power per mm of strafe
	Axial   float64 // power per mm of range error

	// Close-enough tolerances
	CloseAxial   float64
	CloseLateral float64
	CloseYaw     float64
}

// DefaultGains returns the tuned defaults
func DefaultGains() Gains {
	return Gains{
		Yaw:          parameter.YawGain,
		Lateral:      parameter.LateralGain,
		Axial:        parameter.AxialGain,
		CloseAxial:   parameter.CloseAxial,
		CloseLateral: parameter.CloseLateral,
		CloseYaw:     parameter.CloseYaw,
	}
}

// Facade adapts a PoseSource to Navigator
// Read-shared by any number of tasks; only one should drive through CruiseControl
type Facade struct {
	src   PoseSource
	mover Mover
	sink  telemetry.Sink
	gains Gains

	visible bool
	pose    Pose
}

// NewFacade creates a facade; sink may be nil
func NewFacade(src PoseSource, mover Mover, sink telemetry.Sink, gains Gains) *Facade {
	if sink == nil {
		sink = telemetry.Discard
	}
	return &Facade{src: src, mover: mover, sink: sink, gains: gains}
}

// TargetIsVisible checks target id and, when visible, latches its pose
func (f *Facade) TargetIsVisible(id int) bool {
	f.visible = f.src.Visible(id)
	if f.visible {
		f.pose = f.src.Pose()
	}
	return f.visible
}

func (f *Facade) RelativeBearing() float64 { return f.pose.RelativeBearing }
func (f *Facade) RobotBearing() float64    { return f.pose.RobotBearing }
func (f *Facade) Distance() float64        { return f.pose.Distance }
func (f *Facade) Strafe() float64          { return f.pose.Strafe }

func (f *Facade) Refresh() bool {
	f.visible = f.src.Refresh()
	if f.visible {
		f.pose = f.src.Pose()
	}
	return f.visible
}

// CruiseControl closes range to standoff while centering on the target axis
//
//	yaw     = -relative bearing * Yaw      (bearing is clockwise positive, yaw counter-clockwise)
//	lateral =  strafe * Lateral
//	axial   = (distance - standoff) * Axial
func (f *Facade) CruiseControl(standoff float64) bool {
	axialErr := f.pose.Distance - standoff
	lateralErr := f.pose.Strafe
	yawErr := f.pose.RelativeBearing

	f.mover.MoveRobot(axialErr*f.gains.Axial, lateralErr*f.gains.Lateral, -yawErr*f.gains.Yaw)

	return math.Abs(axialErr) < f.gains.CloseAxial &&
		math.Abs(lateralErr) < f.gains.CloseLateral &&
		math.Abs(yawErr) < f.gains.CloseYaw
}

func (f *Facade) AddTelemetry() {
	if !f.visible {
		f.sink.AddLine("nav: target not visible")
		return
	}
	f.sink.AddLine(fmt.Sprintf("nav: range %.0fmm strafe %+.0fmm bearing %+.1f robot %+.1f",
		f.pose.Distance, f.pose.Strafe, f.pose.RelativeBearing, f.pose.RobotBearing))
}

var _ Navigator = (*Facade)(nil)
