package motorlink

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lixenwraith/navcore/drive"
	"github.com/lixenwraith/navcore/status"
)

// bufPort records frames; only Write and Close are exposed, like a serial port
type bufPort struct {
	buf    bytes.Buffer
	closed bool
	fail   error
}

func (p *bufPort) Write(b []byte) (int, error) {
	if p.fail != nil {
		return 0, p.fail
	}
	return p.buf.Write(b)
}

func (p *bufPort) String() string { return p.buf.String() }
func (p *bufPort) Reset()         { p.buf.Reset() }

func (p *bufPort) Close() error {
	p.closed = true
	return nil
}

func newTestLink(t *testing.T) (*Link, *bufPort, *status.Registry) {
	t.Helper()
	reg := status.NewRegistry()
	port := &bufPort{}
	l := New(Config{Port: "/dev/null"}, reg)
	l.SetOpener(func(Config) (io.WriteCloser, error) { return port, nil })
	if err := l.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return l, port, reg
}

// TestLineProtocol tests the frames written for each actuator call
func TestLineProtocol(t *testing.T) {
	l, port, reg := newTestLink(t)

	l.SetDirection(drive.Left, drive.Forward)
	l.SetDirection(drive.Right, drive.Reverse)
	l.SetMode(drive.Left, drive.RunUsingEncoder)
	l.SetMode(drive.Right, drive.RunWithoutEncoder)
	l.SetPower(drive.Left, 0.25)
	l.SetPower(drive.Right, -1.5)

	want := []string{
		"D L F",
		"D R R",
		"M L E",
		"M R N",
		"P L 0.250",
		"P R -1.000",
	}
	got := strings.Split(strings.TrimSuffix(port.String(), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Frame mismatch (-want +got):\n%s", diff)
	}
	if n := reg.Ints.Get("motorlink.frames").Load(); n != 6 {
		t.Errorf("Expected 6 frames counted, got %d", n)
	}
}

// TestDriveOverLink tests that the mixer's init and commands reach the wire
func TestDriveOverLink(t *testing.T) {
	l, port, reg := newTestLink(t)
	opts := drive.DefaultOptions()
	opts.Diagnostics = false
	dt := drive.NewTwoWheelDrive(l, opts, reg)
	if err := dt.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	port.Reset()

	dt.Straight(0.5)
	if got := port.String(); got != "P L 0.500\nP R 0.500\n" {
		t.Errorf("Expected both wheels at 0.500, got %q", got)
	}
}

// TestStopZeroesAndCloses tests shutdown and writes after close
func TestStopZeroesAndCloses(t *testing.T) {
	l, port, reg := newTestLink(t)
	l.SetPower(drive.Left, 0.8)
	port.Reset()

	if err := l.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if got := port.String(); got != "P L 0.000\nP R 0.000\n" {
		t.Errorf("Expected zeroing frames, got %q", got)
	}
	if !port.closed {
		t.Error("Expected port closed")
	}
	if l.Open() {
		t.Error("Expected link reported closed")
	}
	if err := l.SetPower(drive.Left, 0.1); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if err := l.Stop(); err != nil {
		t.Errorf("Expected idempotent Stop, got %v", err)
	}
	if n := reg.Ints.Get("motorlink.errors").Load(); n != 1 {
		t.Errorf("Expected 1 error counted, got %d", n)
	}
}

// TestWriteFailure tests that port errors are wrapped and counted
func TestWriteFailure(t *testing.T) {
	l, port, reg := newTestLink(t)
	port.fail = errors.New("unplugged")

	frames := reg.Ints.Get("motorlink.frames").Load()
	err := l.SetPower(drive.Right, 0.3)
	if !errors.Is(err, port.fail) || !strings.Contains(err.Error(), "motorlink: write") {
		t.Errorf("Expected wrapped write error, got %v", err)
	}
	if n := reg.Ints.Get("motorlink.errors").Load(); n != 1 {
		t.Errorf("Expected 1 error counted, got %d", n)
	}
	if n := reg.Ints.Get("motorlink.frames").Load(); n != frames {
		t.Errorf("Expected no frame counted on failure, got %d after %d", n, frames)
	}
	if port.String() != "" {
		t.Errorf("Expected failed frame not written, got %q", port.String())
	}
}

// TestOpenFailure tests that Init reports opener errors
func TestOpenFailure(t *testing.T) {
	l := New(Config{Port: "/dev/ttyACM9"}, status.NewRegistry())
	l.SetOpener(func(Config) (io.WriteCloser, error) { return nil, errors.New("no such device") })

	if err := l.Init(); err == nil {
		t.Error("Expected Init error")
	}
	if l.Open() {
		t.Error("Expected link closed after failed Init")
	}
}
