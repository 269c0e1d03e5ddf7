package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/navcore/parameter"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
)

// oscillator generates a fixed-length raw wave
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a wave of the given length
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies linear attack and release to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope shapes s over duration with linear attack and release ramps
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := max(total-att-rel, 0)

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = math.Max(float64(e.totalSamples-e.position)/float64(e.releaseSamples), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s linearly; math.Log2(0) is -Inf so zero is silenced instead
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// CreateArrivalChime is a rising two-tone, E5 then A5
func CreateArrivalChime(rate beep.SampleRate, volume float64) beep.Streamer {
	n1 := NewOscillator(659.25, parameter.ArrivalNote1Duration, WaveSine, rate)
	n1Shaped := NewEnvelope(n1, parameter.ArrivalNote1Duration, parameter.ArrivalAttack, parameter.ArrivalNote1Release, rate)

	n2 := NewOscillator(880.0, parameter.ArrivalNote2Duration, WaveSine, rate)
	n2Shaped := NewEnvelope(n2, parameter.ArrivalNote2Duration, parameter.ArrivalAttack, parameter.ArrivalNote2Release, rate)

	return newVolume(beep.Seq(n1Shaped, n2Shaped), volume)
}

// CreateTimeoutBuzz is a low sawtooth buzz
func CreateTimeoutBuzz(rate beep.SampleRate, volume float64) beep.Streamer {
	osc := NewOscillator(110.0, parameter.TimeoutBuzzDuration, WaveSaw, rate)
	shaped := NewEnvelope(osc, parameter.TimeoutBuzzDuration, parameter.TimeoutBuzzAttack, parameter.TimeoutBuzzRelease, rate)
	return newVolume(shaped, volume*0.6)
}

// CreateFaultBuzz is three short square pulses
func CreateFaultBuzz(rate beep.SampleRate, volume float64) beep.Streamer {
	pulses := make([]beep.Streamer, 0, 5)
	for i := 0; i < 3; i++ {
		if i > 0 {
			pulses = append(pulses, beep.Silence(rate.N(parameter.FaultPulseGap)))
		}
		osc := NewOscillator(220.0, parameter.FaultPulseDuration, WaveSquare, rate)
		pulses = append(pulses, NewEnvelope(osc, parameter.FaultPulseDuration, parameter.FaultPulseAttack, parameter.FaultPulseRelease, rate))
	}
	return newVolume(beep.Seq(pulses...), volume*0.4)
}

// CueDuration returns the playing length of a cue
func CueDuration(c Cue) time.Duration {
	switch c {
	case CueArrival:
		return parameter.ArrivalNote1Duration + parameter.ArrivalNote2Duration
	case CueTimeout:
		return parameter.TimeoutBuzzDuration
	case CueFault:
		return 3*parameter.FaultPulseDuration + 2*parameter.FaultPulseGap
	default:
		return 0
	}
}

// Streamer returns the cue's sound, nil for CueNone
func Streamer(c Cue, rate beep.SampleRate, volume float64) beep.Streamer {
	switch c {
	case CueArrival:
		return CreateArrivalChime(rate, volume)
	case CueTimeout:
		return CreateTimeoutBuzz(rate, volume)
	case CueFault:
		return CreateFaultBuzz(rate, volume)
	default:
		return nil
	}
}
