package sim

import (
	"time"

	"github.com/lixenwraith/navcore/engine"
)

// StepTask advances the model once per scheduler cycle
type StepTask struct {
	engine.Base
	robot *Robot
	dt    time.Duration
}

// NewStepTask integrates robot by dt every cycle
func NewStepTask(robot *Robot, dt time.Duration) *StepTask {
	return &StepTask{Base: engine.NewBase("sim"), robot: robot, dt: dt}
}

func (t *StepTask) Start() {}
func (t *StepTask) Stop()  {}

func (t *StepTask) Timeslice() bool {
	t.robot.Step(t.dt)
	return false
}
