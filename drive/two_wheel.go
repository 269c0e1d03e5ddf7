package drive

import (
	"log"
	"math"
	"sync/atomic"

	"github.com/lixenwraith/navcore/parameter"
	"github.com/lixenwraith/navcore/status"
)

// Options configures a TwoWheelDrive
type Options struct {
	// PivotMultiplier divides the trailing wheel power on the pivot rotation path
	PivotMultiplier float64
	LeftDirection   Direction
	RightDirection  Direction
	// Diagnostics enables one log record per mixer write
	Diagnostics bool
}

// DefaultOptions returns the standard mounting: left forward, right reversed
func DefaultOptions() Options {
	return Options{
		PivotMultiplier: parameter.PivotMultiplier,
		LeftDirection:   Forward,
		RightDirection:  Reverse,
		Diagnostics:     true,
	}
}

// TwoWheelDrive mixes axial, lateral and yaw intent into left/right wheel powers
// It exclusively owns both drive channels of its actuator while a task commands it
type TwoWheelDrive struct {
	act  Actuator
	opts Options

	axial   float64
	lateral float64
	yaw     float64
	last    Command

	// Cached metric pointers
	statLeft   *status.AtomicFloat
	statRight  *status.AtomicFloat
	statAxial  *status.AtomicFloat
	statYaw    *status.AtomicFloat
	statErrors *atomic.Int64
}

// NewTwoWheelDrive binds a mixer to an actuator, publishing metrics to reg
func NewTwoWheelDrive(act Actuator, opts Options, reg *status.Registry) *TwoWheelDrive {
	if opts.PivotMultiplier <= 0 {
		opts.PivotMultiplier = parameter.PivotMultiplier
	}
	return &TwoWheelDrive{
		act:        act,
		opts:       opts,
		statLeft:   reg.Floats.Get("drive.left"),
		statRight:  reg.Floats.Get("drive.right"),
		statAxial:  reg.Floats.Get("drive.axial"),
		statYaw:    reg.Floats.Get("drive.yaw"),
		statErrors: reg.Ints.Get("drive.actuator_errors"),
	}
}

// Init configures motor directions and regulation mode, then commands zero motion
func (d *TwoWheelDrive) Init() error {
	if err := d.act.SetDirection(Left, d.opts.LeftDirection); err != nil {
		return err
	}
	if err := d.act.SetDirection(Right, d.opts.RightDirection); err != nil {
		return err
	}
	if err := d.act.SetMode(Left, RunUsingEncoder); err != nil {
		return err
	}
	if err := d.act.SetMode(Right, RunUsingEncoder); err != nil {
		return err
	}
	d.MoveRobot(0, 0, 0)
	return nil
}

// SetAxial stores forward (+) / backward (-) intent, clamped to [-1, 1]
func (d *TwoWheelDrive) SetAxial(v float64) { d.axial = Clip(v, -parameter.MaxPower, parameter.MaxPower) }

// SetLateral stores right (+) / left (-) strafe intent, clamped to [-1, 1]
func (d *TwoWheelDrive) SetLateral(v float64) {
	d.lateral = Clip(v, -parameter.MaxPower, parameter.MaxPower)
}

// SetYaw stores counter-clockwise (+) / clockwise (-) intent, clamped to [-1, 1]
func (d *TwoWheelDrive) SetYaw(v float64) { d.yaw = Clip(v, -parameter.MaxPower, parameter.MaxPower) }

func (d *TwoWheelDrive) Axial() float64   { return d.axial }
func (d *TwoWheelDrive) Lateral() float64 { return d.lateral }
func (d *TwoWheelDrive) Yaw() float64     { return d.yaw }

// Mix computes wheel powers from the stored intent without touching the actuator
//
// A two-wheel base cannot strafe; lateral intent is folded onto a single wheel,
// which turns the robot toward the strafe side while moving
func (d *TwoWheelDrive) Mix() Command {
	var left, right float64
	if d.lateral < 0 {
		left = -d.yaw + d.axial
		right = d.yaw + d.axial + math.Abs(d.lateral)
	} else {
		left = -d.yaw + d.axial + d.lateral
		right = d.yaw + d.axial
	}

	// Scale both by the same factor so the turn ratio survives saturation
	if m := math.Max(math.Abs(left), math.Abs(right)); m > 1.0 {
		left /= m
		right /= m
	}
	return Command{Left: left, Right: right}
}

// MoveRobot sets all three axes, mixes and writes the result
func (d *TwoWheelDrive) MoveRobot(axial, lateral, yaw float64) {
	d.SetAxial(axial)
	d.SetLateral(lateral)
	d.SetYaw(yaw)
	d.Apply()
}

// Apply mixes the currently stored intent and writes it
func (d *TwoWheelDrive) Apply() {
	cmd := d.Mix()
	if d.opts.Diagnostics {
		log.Printf("drive: Axes A[%+5.2f], L[%+5.2f], Y[%+5.2f]", d.axial, d.lateral, d.yaw)
	}
	d.write(cmd)
}

// RotateRobot pivots in place with the trailing wheel slowed by the pivot multiplier
// Negative speed turns left (counter-clockwise), positive turns right
func (d *TwoWheelDrive) RotateRobot(speed float64) {
	speed = Clip(speed, -parameter.MaxPower, parameter.MaxPower)
	var cmd Command
	if speed < 0 {
		cmd = Command{Left: speed / d.opts.PivotMultiplier, Right: -speed}
	} else {
		cmd = Command{Left: speed, Right: -speed / d.opts.PivotMultiplier}
	}
	d.write(cmd)
}

func (d *TwoWheelDrive) Straight(speed float64)  { d.MoveRobot(speed, 0, 0) }
func (d *TwoWheelDrive) TurnLeft(speed float64)  { d.MoveRobot(0, 0, speed) }
func (d *TwoWheelDrive) TurnRight(speed float64) { d.MoveRobot(0, 0, -speed) }
func (d *TwoWheelDrive) Stop()                   { d.MoveRobot(0, 0, 0) }

// Last returns the most recently written command
func (d *TwoWheelDrive) Last() Command {
	return d.last
}

// write sends a command to both channels; failures are logged and counted, never returned
func (d *TwoWheelDrive) write(cmd Command) {
	d.last = cmd
	if d.opts.Diagnostics {
		log.Printf("drive: Wheels %s", cmd)
	}
	if err := d.act.SetPower(Left, cmd.Left); err != nil {
		d.statErrors.Add(1)
		log.Printf("drive: set %s power: %v", Left, err)
	}
	if err := d.act.SetPower(Right, cmd.Right); err != nil {
		d.statErrors.Add(1)
		log.Printf("drive: set %s power: %v", Right, err)
	}
	d.statLeft.Store(cmd.Left)
	d.statRight.Store(cmd.Right)
	d.statAxial.Store(d.axial)
	d.statYaw.Store(d.yaw)
}

var _ Drivetrain = (*TwoWheelDrive)(nil)
