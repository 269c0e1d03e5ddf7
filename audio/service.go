// Package audio plays short cues for navigation notifications
package audio

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/navcore/engine"
	"github.com/lixenwraith/navcore/event"
	"github.com/lixenwraith/navcore/parameter"
	"github.com/lixenwraith/navcore/status"
)

// Cue is an audible notification
type Cue int

const (
	CueNone Cue = iota
	CueArrival
	CueTimeout
	CueFault
)

func (c Cue) String() string {
	switch c {
	case CueArrival:
		return "arrival"
	case CueTimeout:
		return "timeout"
	case CueFault:
		return "fault"
	default:
		return "none"
	}
}

// CueFor maps a notification to its cue
func CueFor(k event.Kind) Cue {
	switch k {
	case event.KindFoundTarget:
		return CueArrival
	case event.KindTimeout:
		return CueTimeout
	case event.KindTaskFault:
		return CueFault
	default:
		return CueNone
	}
}

// Output is the playback device
type Output interface {
	Init(rate beep.SampleRate, buffer int) error
	Play(s beep.Streamer)
	Close()
}

// speakerOutput plays through the beep speaker
type speakerOutput struct {
	mixer *beep.Mixer
}

func (o *speakerOutput) Init(rate beep.SampleRate, buffer int) error {
	if err := speaker.Init(rate, buffer); err != nil {
		return err
	}
	o.mixer = &beep.Mixer{}
	speaker.Play(o.mixer)
	return nil
}

func (o *speakerOutput) Play(s beep.Streamer) {
	speaker.Lock()
	o.mixer.Add(s)
	speaker.Unlock()
}

func (o *speakerOutput) Close() {
	speaker.Lock()
	o.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}

// Chimes is the audio service and notification handler
// Degrades to silent when disabled or when no output device is available
type Chimes struct {
	enabled bool
	volume  float64
	rate    beep.SampleRate
	out     Output

	mu       sync.Mutex
	disabled atomic.Bool
	last     map[Cue]time.Time
	now      func() time.Time

	statPlayed *atomic.Int64
}

// NewChimes creates the service; volume is linear in [0, 1]
func NewChimes(enabled bool, volume float64, reg *status.Registry) *Chimes {
	return &Chimes{
		enabled:    enabled,
		volume:     volume,
		rate:       beep.SampleRate(parameter.AudioSampleRate),
		out:        &speakerOutput{},
		last:       make(map[Cue]time.Time),
		now:        time.Now,
		statPlayed: reg.Ints.Get("audio.played"),
	}
}

// SetOutput replaces the playback device, must be called before Init
func (c *Chimes) SetOutput(o Output) {
	c.out = o
}

func (c *Chimes) Name() string           { return "audio" }
func (c *Chimes) Dependencies() []string { return nil }

// Init opens the output; failure disables audio without returning an error
func (c *Chimes) Init() error {
	if !c.enabled {
		c.disabled.Store(true)
		return nil
	}
	if err := c.out.Init(c.rate, c.rate.N(parameter.AudioBufferDuration)); err != nil {
		log.Printf("audio: output unavailable, continuing without audio: %v", err)
		c.disabled.Store(true)
	}
	return nil
}

func (c *Chimes) Start() error { return nil }

func (c *Chimes) Stop() error {
	if c.disabled.Swap(true) {
		return nil
	}
	c.out.Close()
	return nil
}

// IsDisabled reports whether cues are dropped
func (c *Chimes) IsDisabled() bool {
	return c.disabled.Load()
}

// Play queues a cue on the output; returns false when dropped
// A cue repeated within parameter.AudioMinCueGap is dropped
func (c *Chimes) Play(cue Cue) bool {
	if cue == CueNone || c.disabled.Load() {
		return false
	}
	c.mu.Lock()
	now := c.now()
	if prev, ok := c.last[cue]; ok && now.Sub(prev) < parameter.AudioMinCueGap {
		c.mu.Unlock()
		return false
	}
	c.last[cue] = now
	c.mu.Unlock()

	c.out.Play(Streamer(cue, c.rate, c.volume))
	c.statPlayed.Add(1)
	return true
}

func (c *Chimes) EventKinds() []event.Kind {
	return []event.Kind{event.KindFoundTarget, event.KindTimeout, event.KindTaskFault}
}

func (c *Chimes) HandleEvent(_ *engine.Scheduler, ev event.Event) {
	c.Play(CueFor(ev.Kind))
}

var _ event.Handler[*engine.Scheduler] = (*Chimes)(nil)
