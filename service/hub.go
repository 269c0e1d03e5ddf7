package service

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/exp/slices"
)

var (
	// ErrCircular is returned when service dependencies form a cycle
	ErrCircular = errors.New("circular service dependency")

	// ErrDuplicate is returned when a name is registered twice
	ErrDuplicate = errors.New("service already registered")
)

// Hub owns the infrastructure services of one controller run
//
// Services come up in dependency order; independent services keep registration order,
// so the executable registers the motor link first and it is the last to stop
type Hub struct {
	mu         sync.RWMutex
	services   map[string]Service
	registered []string // registration order
	order      []string // resolved on InitAll, reset by Register
	up         []string // Init succeeded, stopped by StopAll
	running    []string // Start succeeded, rolled back on a failed StartAll
}

func NewHub() *Hub {
	return &Hub{services: make(map[string]Service)}
}

// Register adds svc; names are unique
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, dup := h.services[name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	h.services[name] = svc
	h.registered = append(h.registered, name)
	h.order = nil
	return nil
}

func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[name]
	return svc, ok
}

// MustGet returns the named service as T and panics when it is missing or of another type
func MustGet[T any](h *Hub, name string) T {
	svc, ok := h.Get(name)
	if !ok {
		panic(fmt.Sprintf("service not found: %s", name))
	}
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s: type mismatch, got %T", name, svc))
	}
	return typed
}

// InitAll resolves the order and initializes every service
// A failure stops the services already initialized, newest first
func (h *Hub) InitAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order == nil {
		order, err := h.resolve()
		if err != nil {
			return err
		}
		h.order = order
	}

	h.up = h.up[:0]
	for _, name := range h.order {
		if err := h.services[name].Init(); err != nil {
			h.stopReverse(h.up)
			h.up = nil
			return fmt.Errorf("service %s init failed: %w", name, err)
		}
		h.up = append(h.up, name)
	}
	return nil
}

// StartAll starts every service in order
// A failure stops the services already started, newest first
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.running = h.running[:0]
	for _, name := range h.order {
		if err := h.services[name].Start(); err != nil {
			h.stopReverse(h.running)
			h.running = nil
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.running = append(h.running, name)
	}
	return nil
}

// StopAll stops every initialized service in reverse order
// Stop errors are logged; every service is stopped regardless
func (h *Hub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopReverse(h.up)
	h.up = nil
	h.running = nil
}

// Order returns the resolved order, nil before InitAll
func (h *Hub) Order() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.order)
}

// Names returns the registered names sorted
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := slices.Clone(h.registered)
	slices.Sort(names)
	return names
}

func (h *Hub) stopReverse(names []string) {
	for i := len(names) - 1; i >= 0; i-- {
		if err := h.services[names[i]].Stop(); err != nil {
			log.Printf("service: stop %s: %v", names[i], err)
		}
	}
}

// resolve orders services so each follows its dependencies
// Each pass places, in registration order, every service whose dependencies are placed;
// a pass that places nothing means a cycle
func (h *Hub) resolve() ([]string, error) {
	for _, name := range h.registered {
		for _, dep := range h.services[name].Dependencies() {
			if _, ok := h.services[dep]; !ok {
				return nil, fmt.Errorf("service %s depends on unregistered service: %s", name, dep)
			}
		}
	}

	placed := make(map[string]bool, len(h.registered))
	order := make([]string, 0, len(h.registered))
	for len(order) < len(h.registered) {
		progress := false
		for _, name := range h.registered {
			if placed[name] || !h.ready(name, placed) {
				continue
			}
			placed[name] = true
			order = append(order, name)
			progress = true
		}
		if !progress {
			return nil, ErrCircular
		}
	}
	return order, nil
}

func (h *Hub) ready(name string, placed map[string]bool) bool {
	for _, dep := range h.services[name].Dependencies() {
		if !placed[dep] {
			return false
		}
	}
	return true
}
