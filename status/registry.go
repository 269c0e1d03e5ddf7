package status

import (
	"fmt"
	"sync/atomic"
)

// Registry holds every named metric of a controller run
// Components fetch pointers once at construction and store through them from Timeslice;
// the console and the telemetry stream read concurrently
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// Len returns the number of registered metrics
func (r *Registry) Len() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Lines renders every metric as "key=value": strings, bools, ints, then floats, each sorted
func (r *Registry) Lines() []string {
	lines := make([]string, 0, r.Len())
	r.Strings.Range(func(key string, ptr *AtomicString) {
		lines = append(lines, key+"="+ptr.Load())
	})
	r.Bools.Range(func(key string, ptr *atomic.Bool) {
		lines = append(lines, fmt.Sprintf("%s=%t", key, ptr.Load()))
	})
	r.Ints.Range(func(key string, ptr *atomic.Int64) {
		lines = append(lines, fmt.Sprintf("%s=%d", key, ptr.Load()))
	})
	r.Floats.Range(func(key string, ptr *AtomicFloat) {
		lines = append(lines, fmt.Sprintf("%s=%+.3f", key, ptr.Load()))
	})
	return lines
}

// Snapshot returns the current value of every metric keyed by name
// A name registered under two types keeps the later of strings, bools, ints, floats
func (r *Registry) Snapshot() map[string]any {
	out := make(map[string]any, r.Len())
	r.Strings.Range(func(key string, ptr *AtomicString) { out[key] = ptr.Load() })
	r.Bools.Range(func(key string, ptr *atomic.Bool) { out[key] = ptr.Load() })
	r.Ints.Range(func(key string, ptr *atomic.Int64) { out[key] = ptr.Load() })
	r.Floats.Range(func(key string, ptr *AtomicFloat) { out[key] = ptr.Load() })
	return out
}
