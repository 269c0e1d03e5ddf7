package engine_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lixenwraith/navcore/drive"
	"github.com/lixenwraith/navcore/engine"
	"github.com/lixenwraith/navcore/event"
	"github.com/lixenwraith/navcore/parameter"
	"github.com/lixenwraith/navcore/status"
)

// powerTask writes one command per poll and optionally notifies on its first poll
type powerTask struct {
	engine.Base
	act    drive.Actuator
	sink   engine.Sink
	cmd    drive.Command
	notify bool
	polls  int
}

func (t *powerTask) Start() {}
func (t *powerTask) Stop()  {}

func (t *powerTask) Timeslice() bool {
	t.polls++
	t.act.SetPower(drive.Left, t.cmd.Left)
	t.act.SetPower(drive.Right, t.cmd.Right)
	if t.notify && t.polls == 1 {
		t.sink.Queue(event.Event{Kind: event.KindFoundTarget, Source: t.ID()})
	}
	return false
}

// TestSchedulerSharedActuator tests that handlers see every poll of the cycle and the last poll's command wins
func TestSchedulerSharedActuator(t *testing.T) {
	s := engine.NewScheduler(engine.NewMockTimeProvider(time.Unix(0, 0)), status.NewRegistry())
	rec := drive.NewRecorder()

	a := &powerTask{Base: engine.NewBase("approach"), act: rec, sink: s, cmd: drive.Command{Left: 0.5, Right: 0.5}, notify: true}
	b := &powerTask{Base: engine.NewBase("teleop"), act: rec, sink: s, cmd: drive.Command{Left: -0.2, Right: 0.3}}

	var seen []drive.Command
	var polls [2]int
	s.RegisterHandler(event.HandlerFunc[*engine.Scheduler]{
		Kinds: []event.Kind{event.KindFoundTarget},
		Fn: func(_ *engine.Scheduler, ev event.Event) {
			seen = rec.Commands()
			polls = [2]int{a.polls, b.polls}
		},
	})
	s.AddTask(a)
	s.AddTask(b)
	s.Tick()

	if polls != [2]int{1, 1} {
		t.Errorf("Expected both tasks polled before dispatch, got %v", polls)
	}
	want := []drive.Command{a.cmd, b.cmd}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("Commands at dispatch mismatch (-want +got):\n%s", diff)
	}
	if got := rec.Command(); got != b.cmd {
		t.Errorf("Expected last writer %v on the actuator, got %v", b.cmd, got)
	}

	s.Tick()
	cmds := rec.Commands()
	if len(cmds) != 4 || cmds[len(cmds)-1] != b.cmd {
		t.Errorf("Expected second cycle to end on %v, got %v", b.cmd, cmds)
	}
}

// TestSchedulerNotificationBacklog tests that a burst larger than the queue capacity is fully dispatched
func TestSchedulerNotificationBacklog(t *testing.T) {
	reg := status.NewRegistry()
	s := engine.NewScheduler(engine.NewMockTimeProvider(time.Unix(0, 0)), reg)

	var got []event.Kind
	s.RegisterHandler(event.HandlerFunc[*engine.Scheduler]{
		Kinds: []event.Kind{event.KindVuMarkCenter, event.KindTimeout, event.KindFoundTarget},
		Fn:    func(_ *engine.Scheduler, ev event.Event) { got = append(got, ev.Kind) },
	})

	total := parameter.EventQueueSize + 20
	for i := 0; i < total-2; i++ {
		s.Queue(event.Event{Kind: event.KindVuMarkCenter})
	}
	s.Queue(event.Event{Kind: event.KindTimeout})
	s.Queue(event.Event{Kind: event.KindFoundTarget})
	if s.Pending() != total {
		t.Errorf("Expected %d pending, got %d", total, s.Pending())
	}

	s.Tick()
	if len(got) != total {
		t.Fatalf("Expected %d dispatched, got %d", total, len(got))
	}
	if got[total-2] != event.KindTimeout || got[total-1] != event.KindFoundTarget {
		t.Errorf("Expected TIMEOUT then FOUND_TARGET last, got %s then %s", got[total-2], got[total-1])
	}
	if n := reg.Ints.Get("engine.queue_overflow").Load(); n != 20 {
		t.Errorf("Expected 20 notifications past capacity, got %d", n)
	}
	if n := reg.Ints.Get("engine.queue_peak").Load(); n != int64(total) {
		t.Errorf("Expected queue peak %d, got %d", total, n)
	}
	if s.Pending() != 0 {
		t.Errorf("Expected empty queue after dispatch, got %d", s.Pending())
	}
}

// TestSchedulerQueueFromOtherGoroutine tests that notifications queued while cycles run are all dispatched
func TestSchedulerQueueFromOtherGoroutine(t *testing.T) {
	s := engine.NewScheduler(engine.NewMockTimeProvider(time.Unix(0, 0)), status.NewRegistry())
	var got int
	s.RegisterHandler(event.HandlerFunc[*engine.Scheduler]{
		Kinds: []event.Kind{event.KindVuMarkLeft},
		Fn:    func(_ *engine.Scheduler, ev event.Event) { got++ },
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Queue(event.Event{Kind: event.KindVuMarkLeft})
			_ = s.Cycle()
		}
	}()
	for i := 0; i < 50; i++ {
		s.Tick()
	}
	wg.Wait()
	s.Tick()

	if got != 200 {
		t.Errorf("Expected 200 dispatched, got %d", got)
	}
	if s.Cycle() != 51 {
		t.Errorf("Expected cycle 51, got %d", s.Cycle())
	}
}
