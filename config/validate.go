package config

import (
	"fmt"

	"github.com/lixenwraith/navcore/drive"
	"github.com/lixenwraith/navcore/mission"
	"github.com/lixenwraith/navcore/navigation"
	"github.com/lixenwraith/navcore/sim"
	"github.com/lixenwraith/navcore/vumark"
)

// Validate rejects settings the controller cannot run with
func (c *Config) Validate() error {
	if c.Engine.TickInterval <= 0 {
		return fmt.Errorf("%w: engine.tick_interval must be positive", ErrInvalid)
	}
	if c.Drive.PivotMultiplier <= 0 {
		return fmt.Errorf("%w: drive.pivot_multiplier must be positive", ErrInvalid)
	}
	if _, err := c.DriveOptions(); err != nil {
		return err
	}
	n := c.Navigation
	if n.Timeout <= 0 {
		return fmt.Errorf("%w: navigation.timeout must be positive", ErrInvalid)
	}
	if n.FinalApproachDistance > n.InitialApproachDistance {
		return fmt.Errorf("%w: navigation.final_approach_distance %.0f exceeds initial %.0f",
			ErrInvalid, n.FinalApproachDistance, n.InitialApproachDistance)
	}
	if n.AlignTolerance <= 0 {
		return fmt.Errorf("%w: navigation.align_tolerance must be positive", ErrInvalid)
	}
	if _, err := c.ApproachConfig(); err != nil {
		return err
	}
	if c.VuMark.Enabled && c.VuMark.PollRate <= 0 {
		return fmt.Errorf("%w: vumark.poll_rate must be positive", ErrInvalid)
	}
	if c.Telemetry.Buffer <= 0 {
		return fmt.Errorf("%w: telemetry.buffer must be positive", ErrInvalid)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio.volume %.2f outside [0, 1]", ErrInvalid, c.Audio.Volume)
	}
	if c.Mission.MaxRetries < 0 {
		return fmt.Errorf("%w: mission.max_retries must not be negative", ErrInvalid)
	}
	if _, err := c.MissionConfig(); err != nil {
		return err
	}
	if _, err := c.SimOptions(); err != nil {
		return err
	}
	return nil
}

// DriveOptions converts the [drive] section
func (c *Config) DriveOptions() (drive.Options, error) {
	opts := drive.DefaultOptions()
	left, err := drive.ParseDirection(c.Drive.LeftDirection)
	if err != nil {
		return opts, fmt.Errorf("%w: drive.left_direction: %v", ErrInvalid, err)
	}
	right, err := drive.ParseDirection(c.Drive.RightDirection)
	if err != nil {
		return opts, fmt.Errorf("%w: drive.right_direction: %v", ErrInvalid, err)
	}
	opts.PivotMultiplier = c.Drive.PivotMultiplier
	opts.LeftDirection = left
	opts.RightDirection = right
	opts.Diagnostics = c.Drive.Diagnostics
	return opts, nil
}

// ApproachConfig converts the [navigation] section
func (c *Config) ApproachConfig() (navigation.Config, error) {
	n := c.Navigation
	target, err := navigation.ParseTarget(n.Target)
	if err != nil {
		return navigation.Config{}, fmt.Errorf("%w: navigation.target: %v", ErrInvalid, err)
	}
	method, err := navigation.ParseFindMethod(n.FindMethod)
	if err != nil {
		return navigation.Config{}, fmt.Errorf("%w: navigation.find_method: %v", ErrInvalid, err)
	}
	return navigation.Config{
		Target:                  target,
		Timeout:                 n.Timeout.D(),
		FindMethod:              method,
		InitialApproachDistance: n.InitialApproachDistance,
		FinalApproachDistance:   n.FinalApproachDistance,
		AlignTolerance:          n.AlignTolerance,
		FindStraightSpeed:       n.FindStraightSpeed,
		SearchTurnSpeed:         n.SearchTurnSpeed,
		AlignTurnSpeed:          n.AlignTurnSpeed,
	}, nil
}

// Gains returns cruise control gains with the default tolerances
func (c *Config) Gains() navigation.Gains {
	g := navigation.DefaultGains()
	g.Yaw = c.Navigation.YawGain
	g.Lateral = c.Navigation.LateralGain
	g.Axial = c.Navigation.AxialGain
	return g
}

// MissionConfig converts the [mission] section; the first attempt uses navigation.find_method
func (c *Config) MissionConfig() (mission.Config, error) {
	order := make([]navigation.FindMethod, 0, len(c.Mission.FindMethods))
	for _, name := range c.Mission.FindMethods {
		m, err := navigation.ParseFindMethod(name)
		if err != nil {
			return mission.Config{}, fmt.Errorf("%w: mission.find_methods: %v", ErrInvalid, err)
		}
		order = append(order, m)
	}
	initial, err := navigation.ParseFindMethod(c.Navigation.FindMethod)
	if err != nil {
		return mission.Config{}, fmt.Errorf("%w: navigation.find_method: %v", ErrInvalid, err)
	}
	return mission.Config{
		MaxRetries: c.Mission.MaxRetries,
		Order:      order,
		Initial:    initial,
	}, nil
}

// SimOptions converts the [sim] section; the model tracks the configured navigation target
func (c *Config) SimOptions() (sim.Options, error) {
	opts := sim.DefaultOptions()
	mark, err := vumark.ParseMark(c.Sim.Mark)
	if err != nil {
		return opts, fmt.Errorf("%w: sim.mark: %v", ErrInvalid, err)
	}
	target, err := navigation.ParseTarget(c.Navigation.Target)
	if err != nil {
		return opts, fmt.Errorf("%w: navigation.target: %v", ErrInvalid, err)
	}
	opts.Mark = mark
	opts.TargetID = target.ID()
	return opts, nil
}
