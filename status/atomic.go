package status

import (
	"math"
	"sync/atomic"
	"unicode/utf8"
)

// MaxStringLen caps stored strings in bytes
// Long enough for every approach state and find method name
const MaxStringLen = 24

// AtomicFloat is a float64 gauge stored as its IEEE bits; the zero value reads 0
type AtomicFloat struct {
	bits atomic.Uint64
}

func (f *AtomicFloat) Store(v float64) { f.bits.Store(math.Float64bits(v)) }
func (f *AtomicFloat) Load() float64   { return math.Float64frombits(f.bits.Load()) }

// AtomicString is a short label such as a state name; the zero value reads ""
type AtomicString struct {
	p atomic.Pointer[string]
}

// Store keeps at most MaxStringLen bytes, cut on a rune boundary
func (s *AtomicString) Store(v string) {
	if len(v) > MaxStringLen {
		n := MaxStringLen
		for n > 0 && !utf8.RuneStart(v[n]) {
			n--
		}
		v = v[:n]
	}
	s.p.Store(&v)
}

func (s *AtomicString) Load() string {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return ""
}
