// Package telemetry provides best-effort line sinks
// A sink never blocks the caller and never reports failure
package telemetry

import (
	"log"
	"sync"
)

// Sink is an append-only line writer
type Sink interface {
	AddLine(line string)
}

// Discard drops every line
var Discard Sink = discard{}

type discard struct{}

func (discard) AddLine(string) {}

// LogSink writes lines to the standard logger
type LogSink struct{}

func (LogSink) AddLine(line string) {
	log.Printf("telemetry: %s", line)
}

// Multi fans a line out to every sink in order
type Multi []Sink

func (m Multi) AddLine(line string) {
	for _, s := range m {
		s.AddLine(line)
	}
}

// Buffer retains the most recent lines in a fixed ring
// Safe for concurrent use: the scheduler writes while the console reads
type Buffer struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
	total uint64
}

// NewBuffer creates a ring holding up to size lines
func NewBuffer(size int) *Buffer {
	if size < 1 {
		size = 1
	}
	return &Buffer{lines: make([]string, size)}
}

func (b *Buffer) AddLine(line string) {
	b.mu.Lock()
	b.lines[b.next] = line
	b.next++
	if b.next == len(b.lines) {
		b.next = 0
		b.full = true
	}
	b.total++
	b.mu.Unlock()
}

// Lines returns retained lines, oldest first
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.full {
		out := make([]string, b.next)
		copy(out, b.lines[:b.next])
		return out
	}
	out := make([]string, 0, len(b.lines))
	out = append(out, b.lines[b.next:]...)
	out = append(out, b.lines[:b.next]...)
	return out
}

// Tail returns up to n most recent lines, oldest first
func (b *Buffer) Tail(n int) []string {
	lines := b.Lines()
	if n >= 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// Total returns the number of lines ever written
func (b *Buffer) Total() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}
