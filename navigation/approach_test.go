package navigation

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/lixenwraith/navcore/drive"
	"github.com/lixenwraith/navcore/engine"
	"github.com/lixenwraith/navcore/engine/fsm"
	"github.com/lixenwraith/navcore/event"
	"github.com/lixenwraith/navcore/input"
	"github.com/lixenwraith/navcore/status"
	"github.com/lixenwraith/navcore/telemetry"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

// fakeNav is a scripted Navigator
// When approach is set, CruiseControl closes range by that step per call
type fakeNav struct {
	visible   bool
	pose      Pose
	reached   bool
	approach  float64
	mover     Mover
	cruises   []float64
	refreshes int
}

func (n *fakeNav) TargetIsVisible(int) bool { return n.visible }
func (n *fakeNav) RelativeBearing() float64 { return n.pose.RelativeBearing }
func (n *fakeNav) RobotBearing() float64    { return n.pose.RobotBearing }
func (n *fakeNav) Distance() float64        { return n.pose.Distance }
func (n *fakeNav) Strafe() float64          { return n.pose.Strafe }
func (n *fakeNav) Refresh() bool            { n.refreshes++; return n.visible }
func (n *fakeNav) AddTelemetry()            {}

func (n *fakeNav) CruiseControl(standoff float64) bool {
	n.cruises = append(n.cruises, standoff)
	if n.approach == 0 {
		if n.mover != nil && !n.reached {
			n.mover.MoveRobot(0.2, 0, 0)
		}
		return n.reached
	}
	n.pose.Distance = math.Max(standoff, n.pose.Distance-n.approach)
	if n.mover != nil {
		n.mover.MoveRobot((n.pose.Distance-standoff)*0.0017, 0, 0)
	}
	return n.pose.Distance <= standoff
}

type sinkRecorder struct {
	events []event.Event
}

func (s *sinkRecorder) Queue(ev event.Event) { s.events = append(s.events, ev) }

func (s *sinkRecorder) count(k event.Kind) int {
	n := 0
	for _, ev := range s.events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

type harness struct {
	task  *ApproachTask
	nav   *fakeNav
	rec   *drive.Recorder
	pad   *input.StaticPad
	sink  *sinkRecorder
	clock *engine.MockTimeProvider
	tel   *telemetry.Buffer
	reg   *status.Registry
}

func newHarness(cfg Config) *harness {
	reg := status.NewRegistry()
	rec := drive.NewRecorder()
	opts := drive.DefaultOptions()
	opts.Diagnostics = false
	dt := drive.NewTwoWheelDrive(rec, opts, reg)

	h := &harness{
		nav:   &fakeNav{mover: dt},
		rec:   rec,
		pad:   &input.StaticPad{},
		sink:  &sinkRecorder{},
		clock: engine.NewMockTimeProvider(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		tel:   telemetry.NewBuffer(64),
		reg:   reg,
	}
	h.task = NewApproachTask(cfg, Deps{
		Nav:       h.nav,
		Drive:     dt,
		Pad:       h.pad,
		Sink:      h.sink,
		Clock:     h.clock,
		Telemetry: h.tel,
		Registry:  reg,
	})
	return h
}

// force places the task in s without running entry actions
func (h *harness) force(s State) {
	h.task.machine.Restore(fsm.StateID(s))
}

// tick polls once and advances the clock by one cycle
func (h *harness) tick() bool {
	done := h.task.Timeslice()
	h.clock.Advance(20 * time.Millisecond)
	return done
}

// TestStateMachineTotality tests that every input tuple yields exactly the tabled transition
func TestStateMachineTotality(t *testing.T) {
	expected := func(s State, visible bool, bearing float64, reached bool) State {
		switch s {
		case FindTarget, LostTarget:
			if visible {
				return InitialApproach
			}
		case InitialApproach:
			if !visible {
				return LostTarget
			}
			if reached {
				return FinalApproach
			}
		case FinalApproach:
			if !visible {
				return LostTarget
			}
			if reached {
				return AtTarget
			}
		case AtTarget:
			if math.Abs(bearing) < 1.5 {
				return Aligned
			}
		}
		return s
	}

	for _, s := range States() {
		for _, visible := range []bool{false, true} {
			for _, bearing := range []float64{-5, -1, 0, 1, 5} {
				for _, reached := range []bool{false, true} {
					h := newHarness(DefaultConfig(BlueNear))
					if s != Waiting {
						h.task.Begin()
					}
					h.force(s)
					h.task.cache.Update(Pose{RelativeBearing: bearing, RobotBearing: bearing, Distance: 300})
					h.nav.visible = visible
					h.nav.reached = reached
					h.nav.pose = Pose{RelativeBearing: bearing, RobotBearing: bearing, Distance: 300}

					if h.tick() {
						t.Fatalf("%s vis=%t b=%v r=%t: unexpected finish", s, visible, bearing, reached)
					}
					want := expected(s, visible, bearing, reached)
					if got := h.task.State(); got != want {
						t.Errorf("%s vis=%t b=%v r=%t: expected %s, got %s", s, visible, bearing, reached, want, got)
					}
				}
			}
		}
	}
}

// TestApproachMachineGraph tests that every state has a node and every transition lands on one
func TestApproachMachineGraph(t *testing.T) {
	m := approachMachine()
	var ids []fsm.StateID
	for _, s := range States() {
		ids = append(ids, fsm.StateID(s))
	}
	if err := m.Validate(ids...); err != nil {
		t.Errorf("Unexpected graph error: %v", err)
	}
}

// TestArrivalNotifiedOnce tests that ALIGNED is announced by a single notification while holding
func TestArrivalNotifiedOnce(t *testing.T) {
	h := newHarness(DefaultConfig(BlueNear))
	h.task.Begin()
	h.force(AtTarget)
	h.nav.visible = true
	h.nav.pose = Pose{RobotBearing: 0.2, Distance: 200}
	for i := 0; i < 5; i++ {
		h.tick()
	}
	if h.task.State() != Aligned {
		t.Fatalf("Expected ALIGNED, got %s", h.task.State())
	}
	if got := h.sink.count(event.KindFoundTarget); got != 1 {
		t.Errorf("Expected 1 arrival, got %d", got)
	}
	if h.rec.Command() != (drive.Command{}) {
		t.Errorf("Expected drive stopped while holding, got %v", h.rec.Command())
	}
}

// TestPauseNonDestructive tests that pause holds every state and stops the drivetrain
func TestPauseNonDestructive(t *testing.T) {
	for _, s := range States() {
		h := newHarness(DefaultConfig(BlueNear))
		if s != Waiting {
			h.task.Begin()
		}
		h.force(s)
		h.nav.visible = true
		h.nav.reached = true
		h.nav.pose = Pose{Distance: 300}
		h.pad.SetButton(input.ButtonA, true)

		for i := 0; i < 5; i++ {
			if h.tick() {
				t.Fatalf("%s: paused poll reported finished", s)
			}
		}
		if h.task.State() != s {
			t.Errorf("%s: expected state unchanged under pause, got %s", s, h.task.State())
		}
		if h.rec.Command() != (drive.Command{}) {
			t.Errorf("%s: expected zero command under pause, got %v", s, h.rec.Command())
		}
		if len(h.nav.cruises) != 0 {
			t.Errorf("%s: expected no cruise control under pause", s)
		}
		if h.nav.refreshes != 5 {
			t.Errorf("%s: expected refresh every paused cycle, got %d", s, h.nav.refreshes)
		}
		if len(h.sink.events) != 0 {
			t.Errorf("%s: expected no notifications under pause, got %v", s, h.sink.events)
		}
	}
}

// TestTimeoutPrecedence tests that an expired timer wins over a pending transition
func TestTimeoutPrecedence(t *testing.T) {
	cases := []struct {
		state   State
		visible bool
		reached bool
	}{
		{FindTarget, true, false},
		{LostTarget, true, false},
		{InitialApproach, true, true},
		{FinalApproach, false, false},
		{AtTarget, true, false},
	}

	for _, c := range cases {
		cfg := DefaultConfig(RedFar)
		cfg.Timeout = time.Second
		h := newHarness(cfg)
		h.task.Begin()
		h.force(c.state)
		h.nav.visible = c.visible
		h.nav.reached = c.reached
		h.clock.Advance(time.Second + time.Millisecond)

		if !h.tick() {
			t.Errorf("%s: expected finished on timeout", c.state)
		}
		if h.task.State() != c.state {
			t.Errorf("%s: expected state not advanced, got %s", c.state, h.task.State())
		}
		if got := h.sink.count(event.KindTimeout); got != 1 {
			t.Errorf("%s: expected one timeout, got %d", c.state, got)
		}
		if got := h.sink.count(event.KindFoundTarget); got != 0 {
			t.Errorf("%s: expected no arrival, got %d", c.state, got)
		}
	}
}

// TestTimeoutBoundary tests the deadline is strictly exceeded
func TestTimeoutBoundary(t *testing.T) {
	cfg := DefaultConfig(BlueNear)
	cfg.Timeout = time.Second
	h := newHarness(cfg)
	h.task.Begin()

	h.clock.Advance(time.Second)
	if h.task.Timeslice() {
		t.Errorf("Expected not finished at exactly the deadline")
	}
	h.clock.Advance(time.Nanosecond)
	if !h.task.Timeslice() {
		t.Errorf("Expected finished past the deadline")
	}
}

// TestNoTimeoutBeforeBegin tests that the timer is armed only by Begin
func TestNoTimeoutBeforeBegin(t *testing.T) {
	cfg := DefaultConfig(BlueNear)
	cfg.Timeout = time.Second
	h := newHarness(cfg)

	h.clock.Advance(time.Hour)
	if h.tick() {
		t.Errorf("Expected WAITING never to time out")
	}
	if h.task.Elapsed() != 0 {
		t.Errorf("Expected zero elapsed before Begin, got %v", h.task.Elapsed())
	}
	lines := h.tel.Lines()
	if len(lines) == 0 || lines[len(lines)-1] != "nav: can't see the target" {
		t.Errorf("Expected can't see telemetry, got %v", lines)
	}
}

// TestStraightAcquisition tests the full approach from search to aligned
func TestStraightAcquisition(t *testing.T) {
	h := newHarness(DefaultConfig(BlueNear))
	h.nav.approach = 100
	h.task.Begin()

	var states []State
	record := func() {
		if s := h.task.State(); len(states) == 0 || states[len(states)-1] != s {
			states = append(states, s)
		}
	}
	record()

	for i := 0; i < 3; i++ {
		h.tick()
		record()
	}
	if diff := cmp.Diff(drive.Command{Left: 0.3, Right: 0.3}, h.rec.Command(), approx); diff != "" {
		t.Errorf("Search command mismatch (-want +got):\n%s", diff)
	}

	h.nav.visible = true
	h.nav.pose = Pose{Distance: 500}
	for i := 0; i < 20; i++ {
		if h.tick() {
			t.Fatalf("Unexpected finish at cycle %d", i)
		}
		record()
	}

	want := []State{FindTarget, InitialApproach, FinalApproach, AtTarget, Aligned}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Errorf("State sequence mismatch (-want +got):\n%s", diff)
	}
	if h.rec.Command() != (drive.Command{}) {
		t.Errorf("Expected final command (0,0), got %v", h.rec.Command())
	}
	if got := h.sink.count(event.KindFoundTarget); got != 1 {
		t.Fatalf("Expected one arrival notification, got %d", got)
	}
	arrival, ok := h.sink.events[0].Payload.(ArrivalPayload)
	if !ok || arrival.Target != BlueNear || arrival.Pose.Distance != 200 {
		t.Errorf("Unexpected arrival payload %+v", h.sink.events[0].Payload)
	}
	if got := h.reg.Strings.Get("nav.state").Load(); got != "ALIGNED" {
		t.Errorf("Expected nav.state ALIGNED, got %q", got)
	}
}

// TestVisibilityFlicker tests one blind cycle during the initial approach
func TestVisibilityFlicker(t *testing.T) {
	h := newHarness(DefaultConfig(BlueNear))
	h.task.Begin()
	h.nav.visible = true
	h.nav.pose = Pose{RelativeBearing: 3, RobotBearing: 2, Distance: 800}

	h.tick() // FIND_TARGET -> INITIAL_APPROACH
	h.tick() // cruising
	if h.task.State() != InitialApproach {
		t.Fatalf("Expected INITIAL_APPROACH, got %s", h.task.State())
	}

	h.nav.visible = false
	h.nav.pose = Pose{RelativeBearing: -40} // garbage while blind
	h.tick()
	if h.task.State() != LostTarget {
		t.Fatalf("Expected LOST_TARGET, got %s", h.task.State())
	}
	if diff := cmp.Diff(drive.Command{Left: 0.06, Right: -0.06}, h.rec.Command(), approx); diff != "" {
		t.Errorf("Expected right turn while blind (-want +got):\n%s", diff)
	}
	if _, fresh := h.task.Pose(); fresh {
		t.Errorf("Expected cached pose reported stale while blind")
	}
	if p, _ := h.task.Pose(); p.RelativeBearing != 3 {
		t.Errorf("Expected cached bearing 3 retained, got %v", p.RelativeBearing)
	}

	h.nav.visible = true
	h.nav.pose = Pose{RelativeBearing: 3, RobotBearing: 2, Distance: 800}
	h.tick()
	if h.task.State() != InitialApproach {
		t.Errorf("Expected INITIAL_APPROACH after reacquire, got %s", h.task.State())
	}
}

// TestLostTargetTurnsTowardCachedBearing tests both rotation sides while blind
func TestLostTargetTurnsTowardCachedBearing(t *testing.T) {
	tests := []struct {
		bearing float64
		want    drive.Command
	}{
		{4, drive.Command{Left: 0.06, Right: -0.06}},
		{-4, drive.Command{Left: -0.06, Right: 0.06}},
		{0, drive.Command{Left: -0.06, Right: 0.06}},
	}

	for _, tt := range tests {
		h := newHarness(DefaultConfig(BlueNear))
		h.task.Begin()
		h.force(LostTarget)
		h.task.cache.Update(Pose{RelativeBearing: tt.bearing})
		for i := 0; i < 3; i++ {
			h.tick()
		}
		if diff := cmp.Diff(tt.want, h.rec.Command(), approx); diff != "" {
			t.Errorf("bearing %v: command mismatch (-want +got):\n%s", tt.bearing, diff)
		}
		if h.task.cache.Age() != 3 {
			t.Errorf("bearing %v: expected cache age 3, got %d", tt.bearing, h.task.cache.Age())
		}
	}
}

// TestTimeoutDuringSearch tests exactly one timeout when the target never appears
func TestTimeoutDuringSearch(t *testing.T) {
	cfg := DefaultConfig(RedNear)
	cfg.Timeout = 2 * time.Second
	cfg.FindMethod = RotateLeft
	h := newHarness(cfg)
	h.task.Begin()

	finished := 0
	for i := 0; i < 200; i++ {
		if h.tick() {
			finished = i
			break
		}
		if h.task.State() != FindTarget {
			t.Fatalf("Expected FIND_TARGET while searching, got %s", h.task.State())
		}
	}
	if finished == 0 {
		t.Fatalf("Expected task to finish on timeout")
	}
	// 2s at 20ms per cycle: finished on the first cycle strictly past the deadline
	if finished != 101 {
		t.Errorf("Expected finish at cycle 101, got %d", finished)
	}
	if !h.task.Timeslice() {
		t.Errorf("Expected finished task to keep reporting finished")
	}
	if got := h.sink.count(event.KindTimeout); got != 1 || len(h.sink.events) != 1 {
		t.Errorf("Expected exactly one notification (timeout), got %v", h.sink.events)
	}
	payload, ok := h.sink.events[0].Payload.(TimeoutPayload)
	if !ok || payload.State != FindTarget || payload.FindMethod != RotateLeft {
		t.Errorf("Unexpected timeout payload %+v", h.sink.events[0].Payload)
	}
	if h.sink.events[0].Source != h.task.ID() {
		t.Errorf("Expected notification sourced from the task")
	}
}

// TestFindMethods tests each search command
func TestFindMethods(t *testing.T) {
	tests := []struct {
		method FindMethod
		want   drive.Command
	}{
		{ApproachStraight, drive.Command{Left: 0.3, Right: 0.3}},
		{RotateRight, drive.Command{Left: 0.06, Right: -0.06}},
		{RotateLeft, drive.Command{Left: -0.06, Right: 0.06}},
	}

	h := newHarness(DefaultConfig(BlueFar))
	h.task.Begin()
	for _, tt := range tests {
		h.task.SetFindMethod(tt.method)
		h.tick()
		if diff := cmp.Diff(tt.want, h.rec.Command(), approx); diff != "" {
			t.Errorf("%s: command mismatch (-want +got):\n%s", tt.method, diff)
		}
		if h.task.FindMethod() != tt.method {
			t.Errorf("Expected find method %s, got %s", tt.method, h.task.FindMethod())
		}
	}
}

// TestAlignRotation tests rotation toward zero robot bearing
func TestAlignRotation(t *testing.T) {
	h := newHarness(DefaultConfig(BlueNear))
	h.task.Begin()
	h.force(AtTarget)
	h.nav.visible = true

	h.nav.pose = Pose{RobotBearing: 6}
	h.tick()
	if diff := cmp.Diff(drive.Command{Left: -0.1, Right: 0.1}, h.rec.Command(), approx); diff != "" {
		t.Errorf("Positive bearing should turn left (-want +got):\n%s", diff)
	}

	h.nav.pose = Pose{RobotBearing: -6}
	h.tick()
	if diff := cmp.Diff(drive.Command{Left: 0.1, Right: -0.1}, h.rec.Command(), approx); diff != "" {
		t.Errorf("Negative bearing should turn right (-want +got):\n%s", diff)
	}

	// Blind: cached bearing still drives the rotation
	h.nav.visible = false
	h.nav.pose = Pose{RobotBearing: 0}
	h.tick()
	if h.task.State() != AtTarget {
		t.Errorf("Expected cached bearing -6 to keep AT_TARGET, got %s", h.task.State())
	}

	h.nav.visible = true
	h.nav.pose = Pose{RobotBearing: 0.5}
	h.tick()
	if h.task.State() != Aligned {
		t.Errorf("Expected ALIGNED, got %s", h.task.State())
	}
}

// TestBeginOnlyFromWaiting tests that Begin never re-arms
func TestBeginOnlyFromWaiting(t *testing.T) {
	h := newHarness(DefaultConfig(BlueNear))
	h.task.Begin()
	h.clock.Advance(5 * time.Second)
	h.task.Begin()

	if h.task.Elapsed() != 5*time.Second {
		t.Errorf("Expected timer not re-armed, elapsed %v", h.task.Elapsed())
	}
}

// TestStopReleasesDrive tests the removal hook
func TestStopReleasesDrive(t *testing.T) {
	h := newHarness(DefaultConfig(BlueNear))
	h.task.Begin()
	h.tick()
	if h.rec.Command() == (drive.Command{}) {
		t.Fatalf("Expected search motion before Stop")
	}

	h.task.Stop()
	if h.rec.Command() != (drive.Command{}) {
		t.Errorf("Expected zero power after Stop, got %v", h.rec.Command())
	}
}
