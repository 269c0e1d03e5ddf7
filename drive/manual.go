package drive

import (
	"github.com/lixenwraith/navcore/engine"
	"github.com/lixenwraith/navcore/input"
)

// Mover is the part of the mixer manual driving needs
type Mover interface {
	MoveRobot(axial, lateral, yaw float64)
	Stop()
}

// ManualDrive maps pad sticks onto motion axes and drives
//
//	left stick Y (negated)  -> axial
//	left stick X            -> lateral
//	right stick X (negated) -> yaw
func ManualDrive(m Mover, pad input.Gamepad) {
	axial := -pad.Axis(input.LeftStickY)
	lateral := pad.Axis(input.LeftStickX)
	yaw := -pad.Axis(input.RightStickX)
	m.MoveRobot(axial, lateral, yaw)
}

// TeleopTask applies ManualDrive every cycle until removed
type TeleopTask struct {
	engine.Base
	mover Mover
	pad   input.Gamepad
}

// NewTeleopTask creates a manual driving task
func NewTeleopTask(m Mover, pad input.Gamepad) *TeleopTask {
	return &TeleopTask{
		Base:  engine.NewBase("teleop"),
		mover: m,
		pad:   pad,
	}
}

func (t *TeleopTask) Start() {
	t.mover.Stop()
}

func (t *TeleopTask) Stop() {
	t.mover.Stop()
}

func (t *TeleopTask) Timeslice() bool {
	ManualDrive(t.mover, t.pad)
	return false
}

var _ engine.Task = (*TeleopTask)(nil)
