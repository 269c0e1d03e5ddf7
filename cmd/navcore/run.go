package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/navcore/audio"
	"github.com/lixenwraith/navcore/config"
	"github.com/lixenwraith/navcore/console"
	"github.com/lixenwraith/navcore/core"
	"github.com/lixenwraith/navcore/drive"
	"github.com/lixenwraith/navcore/engine"
	"github.com/lixenwraith/navcore/input"
	"github.com/lixenwraith/navcore/mission"
	"github.com/lixenwraith/navcore/motorlink"
	"github.com/lixenwraith/navcore/navigation"
	"github.com/lixenwraith/navcore/service"
	"github.com/lixenwraith/navcore/sim"
	"github.com/lixenwraith/navcore/status"
	"github.com/lixenwraith/navcore/telemetry"
	"github.com/lixenwraith/navcore/vumark"
)

// overrides are the command line settings applied over the loaded configuration
type overrides struct {
	path    string
	target  string
	timeout time.Duration
	find    string
}

// loadConfig resolves the configuration file, applies overrides and validates the result
// With no explicit path, DefaultPath is read only when it exists
func loadConfig(o overrides) (*config.Config, error) {
	path := o.path
	if path == "" {
		if _, err := os.Stat(config.DefaultPath); err == nil {
			path = config.DefaultPath
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.target != "" {
		cfg.Navigation.Target = o.target
	}
	if o.timeout > 0 {
		cfg.Navigation.Timeout = config.Duration(o.timeout)
	}
	if o.find != "" {
		cfg.Navigation.FindMethod = o.find
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// app holds the wired controller
type app struct {
	cfg   *config.Config
	reg   *status.Registry
	clock engine.TimeProvider
	sched *engine.Scheduler
	hub   *service.Hub

	robot  *sim.Robot
	link   *motorlink.Link
	dt     *drive.TwoWheelDrive
	nav    *navigation.Facade
	pad    input.Gamepad
	tel    *telemetry.Buffer
	sinks  telemetry.Multi
	stream *telemetry.Stream
	chimes *audio.Chimes
	con    *console.Console
	orch   *mission.Orchestrator
}

// build registers services and constructs the task graph; InitAll has not run yet
func build(cfg *config.Config, useSerial, headless, debug bool) (*app, error) {
	a := &app{
		cfg:   cfg,
		reg:   status.NewRegistry(),
		clock: engine.NewMonotonicTimeProvider(),
		hub:   service.NewHub(),
	}
	a.sched = engine.NewScheduler(a.clock, a.reg)

	a.tel = telemetry.NewBuffer(cfg.Telemetry.Buffer)
	a.sinks = telemetry.Multi{a.tel}
	if debug {
		a.sinks = append(a.sinks, telemetry.LogSink{})
	}

	simOpts, err := cfg.SimOptions()
	if err != nil {
		return nil, err
	}
	a.robot = sim.NewRobot(simOpts, a.reg)
	a.robot.Place(cfg.Sim.StartX, cfg.Sim.StartY, cfg.Sim.StartHeading)

	var act drive.Actuator = a.robot
	if useSerial && cfg.MotorLink.Port != "" {
		a.link = motorlink.New(motorlink.Config{Port: cfg.MotorLink.Port, Baud: cfg.MotorLink.Baud}, a.reg)
		if err := a.hub.Register(a.link); err != nil {
			return nil, err
		}
		// Vision is external to the controller: the model keeps closing the loop while
		// every command is mirrored to the motor controller
		act = drive.Fanout{a.link, a.robot}
	}

	if cfg.Telemetry.Addr != "" {
		a.stream = telemetry.NewStream(cfg.Telemetry.Addr, a.reg)
		a.stream.SetReplay(cfg.Telemetry.Replay)
		if err := a.hub.Register(a.stream); err != nil {
			return nil, err
		}
		a.sinks = append(a.sinks, a.stream)
	}

	a.chimes = audio.NewChimes(cfg.Audio.Enabled, cfg.Audio.Volume, a.reg)
	if err := a.hub.Register(a.chimes); err != nil {
		return nil, err
	}

	if headless {
		a.pad = &input.StaticPad{}
	} else {
		table, err := keyTable(cfg.Console.Keymap)
		if err != nil {
			return nil, err
		}
		kpad := input.NewKeyboardPad(table)
		a.pad = kpad
		a.con = console.New(kpad, a.reg, a.tel)
		if err := a.hub.Register(a.con); err != nil {
			return nil, err
		}
	}

	driveOpts, err := cfg.DriveOptions()
	if err != nil {
		return nil, err
	}
	a.dt = drive.NewTwoWheelDrive(act, driveOpts, a.reg)
	a.nav = navigation.NewFacade(a.robot, a.dt, a.sinks, cfg.Gains())

	approach, err := cfg.ApproachConfig()
	if err != nil {
		return nil, err
	}
	mcfg, err := cfg.MissionConfig()
	if err != nil {
		return nil, err
	}
	factory := func(m navigation.FindMethod) *navigation.ApproachTask {
		c := approach
		c.FindMethod = m
		return navigation.NewApproachTask(c, navigation.Deps{
			Nav:       a.nav,
			Drive:     a.dt,
			Pad:       a.pad,
			Sink:      a.sched,
			Clock:     a.clock,
			Telemetry: a.sinks,
			Registry:  a.reg,
		})
	}
	a.orch = mission.NewOrchestrator(mcfg, factory, a.pad, a.sinks, a.reg)

	a.sched.RegisterHandler(a.orch)
	a.sched.RegisterHandler(a.chimes)
	if a.stream != nil {
		a.sched.RegisterHandler(a.stream)
	}
	return a, nil
}

// keyTable returns the default bindings merged with the optional keymap file
func keyTable(path string) (*input.KeyTable, error) {
	table := input.DefaultKeyTable()
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keymap: %w", err)
	}
	override, err := input.LoadKeyConfig(data)
	if err != nil {
		return nil, fmt.Errorf("keymap %s: %w", path, err)
	}
	return input.MergeKeyTable(table, override), nil
}

// prepare brings services up and queues the initial tasks
// The simulation step runs first so each cycle observes the motion of the previous one
func (a *app) prepare(teleop, launch bool) error {
	if err := a.hub.InitAll(); err != nil {
		return err
	}
	if err := a.dt.Init(); err != nil {
		a.hub.StopAll()
		return fmt.Errorf("drive: %w", err)
	}

	tick := a.cfg.Engine.TickInterval.D()
	a.sched.AddTask(sim.NewStepTask(a.robot, tick))
	if a.cfg.VuMark.Enabled {
		a.sched.AddTask(vumark.NewTask(a.robot, a.sched, a.clock, a.cfg.VuMark.PollRate.D(), a.reg))
	}

	if teleop {
		a.sched.AddTask(drive.NewTeleopTask(a.dt, a.pad))
		return nil
	}
	a.sched.AddTask(a.orch)
	if launch {
		a.orch.Launch(a.sched)
	} else {
		a.orch.Arm(a.sched)
	}
	return nil
}

// loop runs the scheduler until ctx ends, the operator quits, or a headless mission finishes
func (a *app) loop(ctx context.Context, exitOnDone bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var quit <-chan struct{}
	if a.con != nil {
		quit = a.con.Quit()
	}
	var done <-chan struct{}
	if exitOnDone {
		done = a.orch.Done()
	}
	core.Go(func() {
		select {
		case <-quit:
		case <-done:
		case <-ctx.Done():
		}
		cancel()
	})

	err := a.sched.Run(ctx, a.cfg.Engine.TickInterval.D())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func run() error {
	cfg, err := loadConfig(overrides{
		path:    *configFlag,
		target:  *targetFlag,
		timeout: *timeoutFlag,
		find:    *findFlag,
	})
	if err != nil {
		return err
	}
	if *dumpFlag {
		return cfg.Write(os.Stdout)
	}

	a, err := build(cfg, !*simFlag, *headlessFlag, *debugFlag)
	if err != nil {
		return err
	}
	if a.con != nil {
		core.SetCrashHook(func() {
			if s := a.con.Screen(); s != nil {
				s.Fini()
			}
		})
	}

	launch := *headlessFlag || cfg.Mission.AutoStart
	if err := a.prepare(*teleopFlag && !*headlessFlag, launch); err != nil {
		return err
	}
	if err := a.hub.StartAll(); err != nil {
		a.hub.StopAll()
		return err
	}
	log.Printf("navcore: running, services %v", a.hub.Order())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = a.loop(ctx, *headlessFlag)
	a.hub.StopAll()
	if err != nil {
		return err
	}

	log.Printf("navcore: mission %s after %d attempt(s)", a.orch.Outcome(), a.orch.Attempt())
	if *headlessFlag {
		fmt.Printf("%s after %d attempt(s), vumark %s\n", a.orch.Outcome(), a.orch.Attempt(), a.orch.LastMark())
		if a.orch.Outcome() != mission.Succeeded {
			return errMissionFailed
		}
	}
	return nil
}
