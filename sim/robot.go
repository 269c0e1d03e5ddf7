// Package sim models a differential-drive robot approaching a single image target
//
// Field frame: target at the origin facing +Y, millimeters; heading in radians,
// counter-clockwise from +X. A robot squarely facing the target has heading -90°
package sim

import (
	"math"
	"sync"
	"time"

	"github.com/lixenwraith/navcore/drive"
	"github.com/lixenwraith/navcore/navigation"
	"github.com/lixenwraith/navcore/parameter"
	"github.com/lixenwraith/navcore/status"
	"github.com/lixenwraith/navcore/vumark"
)

// Options are the physical parameters of the model
type Options struct {
	WheelSpeed   float64 // mm/s at full power
	TrackWidth   float64 // mm
	FieldOfView  float64 // half angle, degrees
	VisibleRange float64 // mm
	TargetID     int
	Mark         vumark.Mark
}

// DefaultOptions returns the standard model
func DefaultOptions() Options {
	return Options{
		WheelSpeed:   parameter.SimWheelSpeed,
		TrackWidth:   parameter.SimTrackWidth,
		FieldOfView:  parameter.SimFieldOfView,
		VisibleRange: parameter.SimVisibleRange,
		Mark:         vumark.Center,
	}
}

// Robot is a simulated drivetrain and vision system
// Implements drive.Actuator, navigation.PoseSource and vumark.Classifier
type Robot struct {
	mu   sync.Mutex
	opts Options

	x, y    float64
	heading float64

	power    [2]float64
	dir      [2]drive.Direction
	mode     [2]drive.RunMode
	occluded int

	statX       *status.AtomicFloat
	statY       *status.AtomicFloat
	statHeading *status.AtomicFloat
}

// NewRobot creates a robot at the origin; call Place before use
func NewRobot(opts Options, reg *status.Registry) *Robot {
	return &Robot{
		opts:        opts,
		statX:       reg.Floats.Get("sim.x"),
		statY:       reg.Floats.Get("sim.y"),
		statHeading: reg.Floats.Get("sim.heading"),
	}
}

// Place teleports the robot; heading in degrees
func (r *Robot) Place(x, y, headingDeg float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.x, r.y = x, y
	r.heading = headingDeg * math.Pi / 180
	r.publish()
}

// Position returns field coordinates and heading in degrees
func (r *Robot) Position() (x, y, headingDeg float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.x, r.y, r.heading * 180 / math.Pi
}

// Occlude hides the target for the next n steps
func (r *Robot) Occlude(n int) {
	r.mu.Lock()
	r.occluded = n
	r.mu.Unlock()
}

// Step integrates wheel motion over dt
func (r *Robot) Step(dt time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	secs := dt.Seconds()
	vl := r.wheel(drive.Left) * r.opts.WheelSpeed
	vr := r.wheel(drive.Right) * r.opts.WheelSpeed
	v := (vl + vr) / 2
	omega := (vr - vl) / r.opts.TrackWidth

	r.x += v * math.Cos(r.heading) * secs
	r.y += v * math.Sin(r.heading) * secs
	r.heading = wrap(r.heading + omega*secs)
	if r.occluded > 0 {
		r.occluded--
	}
	r.publish()
}

// wheel returns the forward surface speed fraction of a wheel
// The right motor is mounted mirrored: it drives forward when its direction is Reverse
func (r *Robot) wheel(ch drive.Channel) float64 {
	out := r.power[ch]
	if r.dir[ch] == drive.Reverse {
		out = -out
	}
	if ch == drive.Right {
		out = -out
	}
	return out
}

func (r *Robot) SetPower(ch drive.Channel, power float64) error {
	r.mu.Lock()
	r.power[ch] = drive.Clip(power, -1, 1)
	r.mu.Unlock()
	return nil
}

func (r *Robot) SetDirection(ch drive.Channel, dir drive.Direction) error {
	r.mu.Lock()
	r.dir[ch] = dir
	r.mu.Unlock()
	return nil
}

func (r *Robot) SetMode(ch drive.Channel, mode drive.RunMode) error {
	r.mu.Lock()
	r.mode[ch] = mode
	r.mu.Unlock()
	return nil
}

// Visible reports whether target id is in the camera cone and range
func (r *Robot) Visible(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return id == r.opts.TargetID && r.visible()
}

func (r *Robot) Refresh() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible()
}

// Pose computes the true pose; angles clockwise positive in degrees
func (r *Robot) Pose() navigation.Pose {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pose()
}

// Classify reports the configured marker while the target is in view
func (r *Robot) Classify() vumark.Mark {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.visible() {
		return vumark.Unknown
	}
	return r.opts.Mark
}

func (r *Robot) pose() navigation.Pose {
	toTarget := math.Atan2(-r.y, -r.x)
	return navigation.Pose{
		RelativeBearing: degrees(wrap(r.heading - toTarget)),
		RobotBearing:    degrees(wrap(-math.Pi/2 - r.heading)),
		Distance:        math.Hypot(r.x, r.y),
		Strafe:          r.x,
	}
}

func (r *Robot) visible() bool {
	if r.occluded > 0 || r.y <= 0 {
		return false
	}
	p := r.pose()
	return p.Distance <= r.opts.VisibleRange && math.Abs(p.RelativeBearing) <= r.opts.FieldOfView
}

func (r *Robot) publish() {
	r.statX.Store(r.x)
	r.statY.Store(r.y)
	r.statHeading.Store(degrees(r.heading))
}

// wrap normalizes an angle into (-π, π]
func wrap(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

var (
	_ drive.Actuator        = (*Robot)(nil)
	_ navigation.PoseSource = (*Robot)(nil)
	_ vumark.Classifier     = (*Robot)(nil)
)
