// Package console renders the status dashboard and feeds keyboard input to a pad
package console

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/navcore/core"
	"github.com/lixenwraith/navcore/input"
	"github.com/lixenwraith/navcore/status"
	"github.com/lixenwraith/navcore/telemetry"
)

// RefreshInterval is the dashboard redraw period
const RefreshInterval = 100 * time.Millisecond

var (
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleKey     = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleValue   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleLine    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePressed = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
)

// Console is the terminal service
//
// Two goroutines run between Start and Stop: the event poller translating keys into the pad,
// and the redraw ticker. Quit is closed on a quit key
type Console struct {
	pad *input.KeyboardPad
	reg *status.Registry
	tel *telemetry.Buffer

	screen tcell.Screen

	mu       sync.Mutex
	inited   bool
	running  bool
	stopCh   chan struct{}
	drawWG   sync.WaitGroup
	pollWG   sync.WaitGroup
	quitCh   chan struct{}
	quitOnce sync.Once
}

// New creates a console; tel may be nil
func New(pad *input.KeyboardPad, reg *status.Registry, tel *telemetry.Buffer) *Console {
	return &Console{
		pad:    pad,
		reg:    reg,
		tel:    tel,
		stopCh: make(chan struct{}),
		quitCh: make(chan struct{}),
	}
}

// SetScreen supplies the screen instead of the real terminal, must be called before Init
func (c *Console) SetScreen(s tcell.Screen) {
	c.screen = s
}

func (c *Console) Name() string           { return "console" }
func (c *Console) Dependencies() []string { return nil }

// Init takes over the terminal
func (c *Console) Init() error {
	if c.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("console: %w", err)
		}
		c.screen = s
	}
	if err := c.screen.Init(); err != nil {
		return fmt.Errorf("console init: %w", err)
	}
	c.screen.Clear()
	c.mu.Lock()
	c.inited = true
	c.mu.Unlock()
	return nil
}

// Start launches the poller and the redraw ticker
func (c *Console) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	c.running = true

	c.pollWG.Add(1)
	core.Go(func() {
		defer c.pollWG.Done()
		c.pollLoop()
	})
	c.drawWG.Add(1)
	core.Go(func() {
		defer c.drawWG.Done()
		c.drawLoop()
	})
	return nil
}

// Stop restores the terminal
// The redraw goroutine exits before Fini; PollEvent returns nil once the screen is finalized
func (c *Console) Stop() error {
	c.mu.Lock()
	running, inited := c.running, c.inited
	c.running, c.inited = false, false
	c.mu.Unlock()

	if running {
		close(c.stopCh)
		c.drawWG.Wait()
	}
	if inited {
		c.screen.Fini()
	}
	if running {
		c.pollWG.Wait()
	}
	return nil
}

// Quit is closed when the operator asks to exit
func (c *Console) Quit() <-chan struct{} {
	return c.quitCh
}

// Screen returns the screen in use, nil before Init
func (c *Console) Screen() tcell.Screen {
	return c.screen
}

func (c *Console) pollLoop() {
	for {
		ev := c.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case <-c.stopCh:
			return
		default:
		}
		c.HandleEvent(ev)
	}
}

func (c *Console) drawLoop() {
	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.Draw()
		}
	}
}

// HandleEvent applies one terminal event
func (c *Console) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		c.screen.Sync()
	case *tcell.EventKey:
		if c.pad.HandleEvent(ev) == input.IntentQuit {
			log.Printf("console: quit requested")
			c.quitOnce.Do(func() { close(c.quitCh) })
		}
	}
}

// Draw renders one frame: metrics on the left, telemetry tail on the right
func (c *Console) Draw() {
	s := c.screen
	s.Clear()
	w, h := s.Size()

	putString(s, 0, 0, w, "navcore", styleTitle)
	c.drawButtons(s, 9, 0, w)

	metricsWidth := w / 2
	row := 2
	for _, line := range c.reg.Lines() {
		if row >= h-1 {
			break
		}
		drawMetric(s, 1, row, metricsWidth-2, line)
		row++
	}

	if c.tel != nil && metricsWidth < w {
		lines := c.tel.Tail(h - 3)
		for i, line := range lines {
			putString(s, metricsWidth, 2+i, w-metricsWidth, line, styleLine)
		}
	}

	putString(s, 0, h-1, w, "a pause  b begin  f find method  w/s j/l e/r drive  q quit", styleHint)
	s.Show()
}

func (c *Console) drawButtons(s tcell.Screen, x, y, w int) {
	for b := input.ButtonA; b <= input.ButtonStart; b++ {
		label := " " + b.String() + " "
		style := styleHint
		if c.pad.Button(b) {
			style = stylePressed
		}
		x += putString(s, x, y, w-x, label, style)
	}
}

// drawMetric renders "key=value" with the key and value styled apart
func drawMetric(s tcell.Screen, x, y, w int, line string) {
	for i, r := range line {
		if r == '=' {
			n := putString(s, x, y, w, line[:i+1], styleKey)
			putString(s, x+n, y, w-n, line[i+1:], styleValue)
			return
		}
	}
	putString(s, x, y, w, line, styleValue)
}

// putString writes at most w cells and returns the number written
func putString(s tcell.Screen, x, y, w int, str string, style tcell.Style) int {
	n := 0
	for _, r := range str {
		if n >= w {
			break
		}
		s.SetContent(x+n, y, r, nil, style)
		n++
	}
	return n
}
