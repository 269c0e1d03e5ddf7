// Package config loads navcore settings from TOML with environment overrides
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/navcore/parameter"
)

// DefaultPath is the configuration file looked up when no path is given
const DefaultPath = "navcore.toml"

// Environment overrides
const (
	EnvTimeout      = "NAVCORE_TIMEOUT"
	EnvSerialPort   = "NAVCORE_SERIAL_PORT"
	EnvAudioEnabled = "NAVCORE_AUDIO_ENABLED"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Duration is a time.Duration written as a Go duration string ("30s", "20ms")
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// D returns the value as a time.Duration
func (d Duration) D() time.Duration { return time.Duration(d) }

type Config struct {
	Engine     EngineConfig     `toml:"engine"`
	Drive      DriveConfig      `toml:"drive"`
	Navigation NavigationConfig `toml:"navigation"`
	VuMark     VuMarkConfig     `toml:"vumark"`
	MotorLink  MotorLinkConfig  `toml:"motorlink"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
	Audio      AudioConfig      `toml:"audio"`
	Mission    MissionConfig    `toml:"mission"`
	Console    ConsoleConfig    `toml:"console"`
	Sim        SimConfig        `toml:"sim"`
}

type EngineConfig struct {
	TickInterval Duration `toml:"tick_interval"`
}

type DriveConfig struct {
	PivotMultiplier float64 `toml:"pivot_multiplier"`
	LeftDirection   string  `toml:"left_direction"`
	RightDirection  string  `toml:"right_direction"`
	Diagnostics     bool    `toml:"diagnostics"`
}

type NavigationConfig struct {
	Target     string   `toml:"target"`
	Timeout    Duration `toml:"timeout"`
	FindMethod string   `toml:"find_method"`

	InitialApproachDistance float64 `toml:"initial_approach_distance"`
	FinalApproachDistance   float64 `toml:"final_approach_distance"`
	AlignTolerance          float64 `toml:"align_tolerance"`

	FindStraightSpeed float64 `toml:"find_straight_speed"`
	SearchTurnSpeed   float64 `toml:"search_turn_speed"`
	AlignTurnSpeed    float64 `toml:"align_turn_speed"`

	YawGain     float64 `toml:"yaw_gain"`
	LateralGain float64 `toml:"lateral_gain"`
	AxialGain   float64 `toml:"axial_gain"`
}

type VuMarkConfig struct {
	Enabled  bool     `toml:"enabled"`
	PollRate Duration `toml:"poll_rate"`
}

type MotorLinkConfig struct {
	// Port empty selects the simulated robot
	Port string `toml:"port"`
	Baud int    `toml:"baud"`
}

type TelemetryConfig struct {
	// Addr empty disables the SSE stream
	Addr   string `toml:"addr"`
	Buffer int    `toml:"buffer"`
	Replay bool   `toml:"replay"`
}

type AudioConfig struct {
	Enabled bool `toml:"enabled"`
	// Volume is the linear master volume in [0, 1]
	Volume float64 `toml:"volume"`
}

type MissionConfig struct {
	MaxRetries  int      `toml:"max_retries"`
	FindMethods []string `toml:"find_methods"`
	// AutoStart begins the approach without waiting for the operator
	AutoStart bool `toml:"auto_start"`
}

type ConsoleConfig struct {
	// Keymap is an optional path to a key binding override file
	Keymap string `toml:"keymap"`
}

// SimConfig places the simulated robot; field coordinates in mm with the target at the origin
type SimConfig struct {
	StartX       float64 `toml:"start_x"`
	StartY       float64 `toml:"start_y"`
	StartHeading float64 `toml:"start_heading"`
	Mark         string  `toml:"mark"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Engine: EngineConfig{TickInterval: Duration(parameter.TickInterval)},
		Drive: DriveConfig{
			PivotMultiplier: parameter.PivotMultiplier,
			LeftDirection:   "forward",
			RightDirection:  "reverse",
			Diagnostics:     true,
		},
		Navigation: NavigationConfig{
			Target:                  "BLUE_NEAR",
			Timeout:                 Duration(parameter.DefaultTimeout),
			FindMethod:              "APPROACH_STRAIGHT",
			InitialApproachDistance: parameter.InitialApproachDistance,
			FinalApproachDistance:   parameter.FinalApproachDistance,
			AlignTolerance:          parameter.AlignTolerance,
			FindStraightSpeed:       parameter.FindStraightSpeed,
			SearchTurnSpeed:         parameter.SearchTurnSpeed,
			AlignTurnSpeed:          parameter.AlignTurnSpeed,
			YawGain:                 parameter.YawGain,
			LateralGain:             parameter.LateralGain,
			AxialGain:               parameter.AxialGain,
		},
		VuMark:    VuMarkConfig{Enabled: true, PollRate: Duration(parameter.VuMarkPollRate)},
		MotorLink: MotorLinkConfig{Baud: 115200},
		Telemetry: TelemetryConfig{Buffer: parameter.TelemetryBufferLines, Replay: true},
		Audio:     AudioConfig{Enabled: true, Volume: 0.8},
		Mission: MissionConfig{
			MaxRetries:  parameter.MaxRetries,
			FindMethods: []string{"APPROACH_STRAIGHT", "ROTATE_RIGHT", "ROTATE_LEFT"},
		},
		Sim: SimConfig{StartX: 400, StartY: 2500, StartHeading: -90, Mark: "CENTER"},
	}
}

// Load reads path over the defaults, applies environment overrides and validates
// An empty path skips the file
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := cfg.Decode(data); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Decode overlays TOML data; keys absent from data keep their current value
// Unknown keys are rejected
func (c *Config) Decode(data []byte) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
	}
	return nil
}

// ApplyEnv overlays environment overrides read through lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Navigation.Timeout = Duration(d)
	}
	if v, ok := lookup(EnvSerialPort); ok {
		c.MotorLink.Port = v
	}
	if v, ok := lookup(EnvAudioEnabled); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAudioEnabled, err)
		}
		c.Audio.Enabled = b
	}
	return nil
}

// Write encodes the configuration as TOML
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
