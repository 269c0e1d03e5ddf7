package navigation

import (
	"log"
	"math"

	"github.com/lixenwraith/navcore/engine/fsm"
	"github.com/lixenwraith/navcore/event"
)

// approachMachine builds the state graph driven by ApproachTask.Timeslice
//
// OnUpdate actions issue drive commands and compute the cycle's cruise result;
// guards only read visibility, the cruise result and the cached pose
func approachMachine() *fsm.Machine[*ApproachTask] {
	m := fsm.NewMachine[*ApproachTask]()
	id := func(s State) fsm.StateID { return fsm.StateID(s) }

	waiting := m.AddState(id(Waiting), Waiting.String())
	waiting.OnUpdate = append(waiting.OnUpdate, (*ApproachTask).idle)

	find := m.AddState(id(FindTarget), FindTarget.String())
	find.OnUpdate = append(find.OnUpdate, (*ApproachTask).search)
	m.AddTransition(id(FindTarget), fsm.Transition[*ApproachTask]{TargetID: id(InitialApproach), Guard: (*ApproachTask).sees})

	lost := m.AddState(id(LostTarget), LostTarget.String())
	lost.OnEnter = append(lost.OnEnter, (*ApproachTask).lose)
	lost.OnUpdate = append(lost.OnUpdate, (*ApproachTask).reacquire)
	m.AddTransition(id(LostTarget), fsm.Transition[*ApproachTask]{TargetID: id(InitialApproach), Guard: (*ApproachTask).sees})

	initial := m.AddState(id(InitialApproach), InitialApproach.String())
	initial.OnUpdate = append(initial.OnUpdate, cruise(func(c Config) float64 { return c.InitialApproachDistance }))
	m.AddTransition(id(InitialApproach), fsm.Transition[*ApproachTask]{TargetID: id(LostTarget), Guard: (*ApproachTask).blind})
	m.AddTransition(id(InitialApproach), fsm.Transition[*ApproachTask]{TargetID: id(FinalApproach), Guard: (*ApproachTask).arrived})

	final := m.AddState(id(FinalApproach), FinalApproach.String())
	final.OnUpdate = append(final.OnUpdate, cruise(func(c Config) float64 { return c.FinalApproachDistance }))
	m.AddTransition(id(FinalApproach), fsm.Transition[*ApproachTask]{TargetID: id(LostTarget), Guard: (*ApproachTask).blind})
	m.AddTransition(id(FinalApproach), fsm.Transition[*ApproachTask]{TargetID: id(AtTarget), Guard: (*ApproachTask).arrived})

	at := m.AddState(id(AtTarget), AtTarget.String())
	at.OnUpdate = append(at.OnUpdate, (*ApproachTask).align)
	m.AddTransition(id(AtTarget), fsm.Transition[*ApproachTask]{TargetID: id(Aligned), Guard: (*ApproachTask).aligned})

	done := m.AddState(id(Aligned), Aligned.String())
	done.OnEnter = append(done.OnEnter, (*ApproachTask).arrive)
	done.OnUpdate = append(done.OnUpdate, (*ApproachTask).hold)

	m.OnChange = func(t *ApproachTask, _, to fsm.StateID) { t.announce(State(to)) }
	return m
}

// Guards

func (t *ApproachTask) sees() bool    { return t.visible }
func (t *ApproachTask) blind() bool   { return !t.visible }
func (t *ApproachTask) arrived() bool { return t.reached }

// aligned reads the cached robot bearing, which survives a cycle without sight
func (t *ApproachTask) aligned() bool {
	return math.Abs(t.pose.RobotBearing) < t.cfg.AlignTolerance
}

// Actions

func (t *ApproachTask) idle() {
	if t.visible {
		t.deps.Drive.Stop()
		t.deps.Nav.AddTelemetry()
	} else {
		t.deps.Telemetry.AddLine("nav: can't see the target")
	}
}

func (t *ApproachTask) search() {
	if t.visible {
		t.deps.Drive.Stop()
		t.deps.Nav.AddTelemetry()
		return
	}
	switch t.cfg.FindMethod {
	case ApproachStraight:
		t.deps.Drive.Straight(t.cfg.FindStraightSpeed)
	case RotateRight:
		t.deps.Drive.TurnRight(t.cfg.SearchTurnSpeed)
	case RotateLeft:
		t.deps.Drive.TurnLeft(t.cfg.SearchTurnSpeed)
	}
}

// cruise returns an update running CruiseControl toward the configured standoff while in sight
func cruise(standoff func(Config) float64) fsm.ActionFunc[*ApproachTask] {
	return func(t *ApproachTask) {
		t.reached = t.visible && t.deps.Nav.CruiseControl(standoff(t.cfg))
	}
}

// lose starts turning in the cycle sight is lost, so the last cruise command is not held while blind
func (t *ApproachTask) lose() {
	log.Printf("nav: lost target at bearing %+.1f", t.pose.RelativeBearing)
	t.turnToward()
}

func (t *ApproachTask) reacquire() {
	if !t.visible {
		t.turnToward()
	}
}

// turnToward rotates toward the last known bearing side
func (t *ApproachTask) turnToward() {
	if t.pose.RelativeBearing > 0 {
		t.deps.Drive.TurnRight(t.cfg.SearchTurnSpeed)
	} else {
		t.deps.Drive.TurnLeft(t.cfg.SearchTurnSpeed)
	}
}

// align turns toward zero robot bearing; the transition to ALIGNED stops the drive
func (t *ApproachTask) align() {
	switch {
	case t.aligned():
	case t.pose.RobotBearing > 0:
		t.deps.Drive.TurnLeft(t.cfg.AlignTurnSpeed)
	default:
		t.deps.Drive.TurnRight(t.cfg.AlignTurnSpeed)
	}
}

func (t *ApproachTask) arrive() {
	t.deps.Drive.Stop()
	t.deps.Sink.Queue(event.Event{
		Kind:   event.KindFoundTarget,
		Source: t.ID(),
		Payload: ArrivalPayload{
			Target:  t.cfg.Target,
			Elapsed: t.Elapsed(),
			Pose:    t.pose,
		},
	})
}

func (t *ApproachTask) hold() {
	t.deps.Nav.AddTelemetry()
	t.deps.Drive.Stop()
}
