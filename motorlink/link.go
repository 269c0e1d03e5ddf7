// Package motorlink drives a serial motor controller with a line protocol
//
// Frames, one per line:
//
//	P <ch> <power>   set power, ch is L or R, power formatted %.3f in [-1, 1]
//	D <ch> <F|R>     mounting direction
//	M <ch> <E|N>     run mode, E with encoder, N without
package motorlink

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/albenik/go-serial/v2"

	"github.com/lixenwraith/navcore/drive"
	"github.com/lixenwraith/navcore/status"
)

// ErrClosed is returned by writes on a link that is not open
var ErrClosed = errors.New("motorlink: link closed")

// DefaultBaud is used when Config.Baud is zero
const DefaultBaud = 115200

// Config selects the serial port
type Config struct {
	Port string
	Baud int
	// ReadTimeout in milliseconds, applied to the port for controller replies
	ReadTimeout int
}

// Opener returns the byte stream for a configured port
// Replaced in tests; the default opens a serial device
type Opener func(cfg Config) (io.WriteCloser, error)

// OpenSerial opens cfg.Port with go-serial
func OpenSerial(cfg Config) (io.WriteCloser, error) {
	port, err := serial.Open(cfg.Port,
		serial.WithBaudrate(cfg.Baud),
		serial.WithReadTimeout(cfg.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Port, err)
	}
	return port, nil
}

// Link is a drive.Actuator over a serial line
// Safe for concurrent use; frames are written whole under a lock
type Link struct {
	cfg  Config
	open Opener

	mu sync.Mutex
	w  io.WriteCloser

	statFrames *atomic.Int64
	statErrors *atomic.Int64
}

// New creates a closed link; Init opens it
func New(cfg Config, reg *status.Registry) *Link {
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	return &Link{
		cfg:        cfg,
		open:       OpenSerial,
		statFrames: reg.Ints.Get("motorlink.frames"),
		statErrors: reg.Ints.Get("motorlink.errors"),
	}
}

// SetOpener replaces the port opener, must be called before Init
func (l *Link) SetOpener(o Opener) {
	l.open = o
}

func (l *Link) Name() string           { return "motorlink" }
func (l *Link) Dependencies() []string { return nil }

// Init opens the port
func (l *Link) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w != nil {
		return nil
	}
	w, err := l.open(l.cfg)
	if err != nil {
		return fmt.Errorf("motorlink: %w", err)
	}
	l.w = w
	log.Printf("motorlink: opened %s at %d baud", l.cfg.Port, l.cfg.Baud)
	return nil
}

func (l *Link) Start() error { return nil }

// Stop zeroes both channels and closes the port
func (l *Link) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return nil
	}
	for _, ch := range []drive.Channel{drive.Left, drive.Right} {
		if err := l.send(fmt.Sprintf("P %s %.3f\n", channelCode(ch), 0.0)); err != nil {
			log.Printf("motorlink: zeroing %s: %v", ch, err)
		}
	}
	err := l.w.Close()
	l.w = nil
	log.Printf("motorlink: closed %s", l.cfg.Port)
	if err != nil {
		return fmt.Errorf("motorlink: close: %w", err)
	}
	return nil
}

// Open reports whether the port is open
func (l *Link) Open() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w != nil
}

func (l *Link) SetPower(ch drive.Channel, power float64) error {
	return l.frame(fmt.Sprintf("P %s %.3f\n", channelCode(ch), drive.Clip(power, -1, 1)))
}

func (l *Link) SetDirection(ch drive.Channel, dir drive.Direction) error {
	code := "F"
	if dir == drive.Reverse {
		code = "R"
	}
	return l.frame(fmt.Sprintf("D %s %s\n", channelCode(ch), code))
}

func (l *Link) SetMode(ch drive.Channel, mode drive.RunMode) error {
	code := "N"
	if mode == drive.RunUsingEncoder {
		code = "E"
	}
	return l.frame(fmt.Sprintf("M %s %s\n", channelCode(ch), code))
}

func (l *Link) frame(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.send(line)
}

// send writes one frame; caller holds mu
func (l *Link) send(line string) error {
	if l.w == nil {
		l.statErrors.Add(1)
		return ErrClosed
	}
	if _, err := l.w.Write([]byte(line)); err != nil {
		l.statErrors.Add(1)
		return fmt.Errorf("motorlink: write: %w", err)
	}
	l.statFrames.Add(1)
	return nil
}

func channelCode(ch drive.Channel) string {
	if ch == drive.Right {
		return "R"
	}
	return "L"
}

var _ drive.Actuator = (*Link)(nil)
