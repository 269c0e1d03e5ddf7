package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/r3labs/sse/v2"

	"github.com/lixenwraith/navcore/core"
	"github.com/lixenwraith/navcore/engine"
	"github.com/lixenwraith/navcore/event"
	"github.com/lixenwraith/navcore/parameter"
	"github.com/lixenwraith/navcore/status"
)

// Stream publishes telemetry lines and notifications as server-sent events
//
// Streams:
//   - parameter.TelemetryStreamID: one event per telemetry line
//   - parameter.EventStreamID: one JSON event per notification
//
// Clients subscribe with GET /?stream=<id>; GET /status returns the metric registry as JSON
type Stream struct {
	reg     *status.Registry
	addr    string
	replay  bool
	srv     *sse.Server
	httpSrv *http.Server
	ln      net.Listener

	statPublished *atomic.Int64
	statDropped   *atomic.Int64
}

// NewStream creates a stream serving on addr; an empty addr publishes without listening
func NewStream(addr string, reg *status.Registry) *Stream {
	return &Stream{
		reg:           reg,
		addr:          addr,
		statPublished: reg.Ints.Get("telemetry.published"),
		statDropped:   reg.Ints.Get("telemetry.dropped"),
	}
}

// SetReplay makes new subscribers receive every previously published event
// Must be called before Init
func (s *Stream) SetReplay(on bool) {
	s.replay = on
}

func (s *Stream) Name() string           { return "telemetry" }
func (s *Stream) Dependencies() []string { return nil }

func (s *Stream) Init() error {
	s.srv = sse.New()
	s.srv.AutoReplay = s.replay
	s.srv.CreateStream(parameter.TelemetryStreamID)
	s.srv.CreateStream(parameter.EventStreamID)
	return nil
}

func (s *Stream) Start() error {
	if s.addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("telemetry listen %s: %w", s.addr, err)
	}
	s.ln = ln
	s.httpSrv = &http.Server{Handler: s, ReadHeaderTimeout: 5 * time.Second}
	core.Go(func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("telemetry: serve: %v", err)
		}
	})
	log.Printf("telemetry: serving on %s", ln.Addr())
	return nil
}

func (s *Stream) Stop() error {
	if s.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		// Open event streams never finish on their own; Close forces them
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.httpSrv.Close()
		}
		s.httpSrv = nil
	}
	if s.srv != nil {
		s.srv.Close()
		s.srv = nil
	}
	return nil
}

// Addr returns the bound listen address, nil before Start
func (s *Stream) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// AddLine publishes a telemetry line without blocking
func (s *Stream) AddLine(line string) {
	s.publish(parameter.TelemetryStreamID, []byte(line))
}

// HandleEvent publishes a notification as JSON
func (s *Stream) HandleEvent(_ *engine.Scheduler, ev event.Event) {
	data, err := encodeEvent(ev)
	if err != nil {
		log.Printf("telemetry: marshal json: %s", err)
		return
	}
	s.publish(parameter.EventStreamID, data)
}

func (s *Stream) EventKinds() []event.Kind {
	return event.AllKinds()
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/status" {
		s.serveStatus(w)
		return
	}
	if s.srv == nil {
		http.Error(w, "telemetry stream not initialized", http.StatusServiceUnavailable)
		return
	}
	s.srv.ServeHTTP(w, r)
}

func (s *Stream) serveStatus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.reg.Snapshot()); err != nil {
		log.Printf("telemetry: status: %v", err)
	}
}

func (s *Stream) publish(id string, data []byte) {
	if s.srv == nil {
		s.statDropped.Add(1)
		return
	}
	if s.srv.TryPublish(id, &sse.Event{Data: data}) {
		s.statPublished.Add(1)
	} else {
		s.statDropped.Add(1)
	}
}

type eventRecord struct {
	Kind    string    `json:"kind"`
	Source  string    `json:"source"`
	Cycle   uint64    `json:"cycle"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

func encodeEvent(ev event.Event) ([]byte, error) {
	return json.Marshal(eventRecord{
		Kind:    ev.Kind.String(),
		Source:  ev.Source.String(),
		Cycle:   ev.Cycle,
		Time:    ev.Timestamp,
		Payload: ev.Payload,
	})
}

var (
	_ Sink                             = (*Stream)(nil)
	_ event.Handler[*engine.Scheduler] = (*Stream)(nil)
)
