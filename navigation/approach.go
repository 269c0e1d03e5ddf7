package navigation

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/navcore/drive"
	"github.com/lixenwraith/navcore/engine"
	"github.com/lixenwraith/navcore/engine/fsm"
	"github.com/lixenwraith/navcore/event"
	"github.com/lixenwraith/navcore/input"
	"github.com/lixenwraith/navcore/parameter"
	"github.com/lixenwraith/navcore/status"
	"github.com/lixenwraith/navcore/telemetry"
)

// Config is the construction-time tuning of an ApproachTask
type Config struct {
	Target     Target
	Timeout    time.Duration
	FindMethod FindMethod

	// Range thresholds handed to CruiseControl
	InitialApproachDistance float64
	FinalApproachDistance   float64

	// AlignTolerance is the robot bearing magnitude accepted as aligned
	AlignTolerance float64

	FindStraightSpeed float64
	SearchTurnSpeed   float64
	AlignTurnSpeed    float64
}

// DefaultConfig returns the tuned defaults for target
func DefaultConfig(target Target) Config {
	return Config{
		Target:                  target,
		Timeout:                 parameter.DefaultTimeout,
		FindMethod:              ApproachStraight,
		InitialApproachDistance: parameter.InitialApproachDistance,
		FinalApproachDistance:   parameter.FinalApproachDistance,
		AlignTolerance:          parameter.AlignTolerance,
		FindStraightSpeed:       parameter.FindStraightSpeed,
		SearchTurnSpeed:         parameter.SearchTurnSpeed,
		AlignTurnSpeed:          parameter.AlignTurnSpeed,
	}
}

// Deps are the collaborators of an ApproachTask
type Deps struct {
	Nav       Navigator
	Drive     drive.Drivetrain
	Pad       input.Gamepad
	Sink      engine.Sink
	Clock     engine.TimeProvider
	Telemetry telemetry.Sink
	Registry  *status.Registry
}

// ApproachTask drives from "target not found" to stopped and aligned with the target
//
// Per-cycle order: visibility read, pause, timeout, pose cache, state machine update
//
// Notifications:
//   - event.KindFoundTarget on entering ALIGNED; the task keeps running (holding still)
//     until its owner removes it
//   - event.KindTimeout when the armed timer exceeds the deadline; the poll returns finished
type ApproachTask struct {
	engine.Base
	cfg     Config
	deps    Deps
	machine *fsm.Machine[*ApproachTask]
	cache   PoseCache
	timer   *engine.Timer
	done    bool

	// Inputs of the current cycle, read by the machine's guards and actions
	visible bool
	pose    Pose
	reached bool

	// Cached metric pointers
	statState    *status.AtomicString
	statMethod   *status.AtomicString
	statBearing  *status.AtomicFloat
	statRobot    *status.AtomicFloat
	statDistance *status.AtomicFloat
	statVisible  *atomic.Bool
}

// NewApproachTask creates a task in WAITING; the timer is not armed until Begin
func NewApproachTask(cfg Config, deps Deps) *ApproachTask {
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.Discard
	}
	if deps.Registry == nil {
		deps.Registry = status.NewRegistry()
	}
	reg := deps.Registry
	t := &ApproachTask{
		Base:         engine.NewBase("approach " + cfg.Target.String()),
		cfg:          cfg,
		deps:         deps,
		machine:      approachMachine(),
		statState:    reg.Strings.Get("nav.state"),
		statMethod:   reg.Strings.Get("nav.find_method"),
		statBearing:  reg.Floats.Get("nav.bearing"),
		statRobot:    reg.Floats.Get("nav.robot_bearing"),
		statDistance: reg.Floats.Get("nav.distance"),
		statVisible:  reg.Bools.Get("nav.visible"),
	}
	if err := t.machine.Init(t, fsm.StateID(Waiting)); err != nil {
		panic(err)
	}
	t.statMethod.Store(cfg.FindMethod.String())
	return t
}

// Begin arms the timeout and starts the search
// Only effective in WAITING; the timer is never re-armed
func (t *ApproachTask) Begin() {
	if t.State() != Waiting || t.timer != nil {
		log.Printf("nav: begin ignored in state %s", t.State())
		return
	}
	t.timer = engine.ArmTimer(t.deps.Clock)
	t.machine.Goto(t, fsm.StateID(FindTarget))
}

// SetFindMethod changes the search strategy; takes effect on the next search cycle
func (t *ApproachTask) SetFindMethod(m FindMethod) {
	t.cfg.FindMethod = m
	t.statMethod.Store(m.String())
}

func (t *ApproachTask) FindMethod() FindMethod { return t.cfg.FindMethod }
func (t *ApproachTask) State() State           { return State(t.machine.State()) }
func (t *ApproachTask) Target() Target         { return t.cfg.Target }

// Pose returns the cached pose and whether it was measured on the latest cycle
func (t *ApproachTask) Pose() (Pose, bool) { return t.cache.Snapshot() }

// Elapsed returns time since Begin, zero before it
func (t *ApproachTask) Elapsed() time.Duration {
	if t.timer == nil {
		return 0
	}
	return t.timer.Elapsed()
}

func (t *ApproachTask) Start() {}

// Stop releases the drivetrain
func (t *ApproachTask) Stop() {
	t.deps.Drive.Stop()
}

func (t *ApproachTask) Timeslice() bool {
	if t.done {
		return true
	}

	visible := t.deps.Nav.TargetIsVisible(t.cfg.Target.ID())
	t.statVisible.Store(visible)

	if t.deps.Pad != nil && t.deps.Pad.Button(input.ButtonA) {
		t.deps.Drive.Stop()
		t.deps.Nav.Refresh()
		t.deps.Nav.AddTelemetry()
		return false
	}

	if t.timer != nil && t.timer.Exceeded(t.cfg.Timeout) {
		log.Printf("nav: timeout in state %s after %s", t.State(), t.timer.Elapsed())
		t.done = true
		t.deps.Sink.Queue(event.Event{
			Kind:   event.KindTimeout,
			Source: t.ID(),
			Payload: TimeoutPayload{
				Target:     t.cfg.Target,
				State:      t.State(),
				FindMethod: t.cfg.FindMethod,
				Elapsed:    t.timer.Elapsed(),
			},
		})
		return true
	}

	if visible {
		t.cache.Update(Pose{
			RelativeBearing: t.deps.Nav.RelativeBearing(),
			RobotBearing:    t.deps.Nav.RobotBearing(),
			Distance:        t.deps.Nav.Distance(),
			Strafe:          t.deps.Nav.Strafe(),
		})
	} else {
		t.cache.Invalidate()
	}
	// The fresh flag is unused: while blind, LOST_TARGET turns toward the cached bearing
	// and AT_TARGET aligns on the cached robot bearing
	pose, _ := t.cache.Snapshot()
	t.statBearing.Store(pose.RelativeBearing)
	t.statRobot.Store(pose.RobotBearing)
	t.statDistance.Store(pose.Distance)

	t.visible = visible
	t.pose = pose
	t.reached = false
	t.machine.Update(t)
	return false
}

// announce publishes a state change
func (t *ApproachTask) announce(s State) {
	t.statState.Store(s.String())
	log.Printf("nav: entering state %s", s)
	t.deps.Telemetry.AddLine("nav: entering state " + s.String())
}

var _ engine.Task = (*ApproachTask)(nil)
