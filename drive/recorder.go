package drive

import "sync"

// Write is one recorded SetPower call
type Write struct {
	Channel Channel
	Power   float64
}

// Recorder is an in-memory Actuator keeping every write
// Used for headless runs and to observe actuator history in tests
type Recorder struct {
	mu     sync.Mutex
	power  [2]float64
	dir    [2]Direction
	mode   [2]RunMode
	writes []Write
	// Err, when set, is returned from every call
	Err error
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SetPower(ch Channel, power float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.power[ch] = power
	r.writes = append(r.writes, Write{Channel: ch, Power: power})
	return nil
}

func (r *Recorder) SetDirection(ch Channel, dir Direction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.dir[ch] = dir
	return nil
}

func (r *Recorder) SetMode(ch Channel, mode RunMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.mode[ch] = mode
	return nil
}

// Power returns the last power written to ch
func (r *Recorder) Power(ch Channel) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.power[ch]
}

// Command returns the last written pair
func (r *Recorder) Command() Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Command{Left: r.power[Left], Right: r.power[Right]}
}

func (r *Recorder) Direction(ch Channel) Direction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dir[ch]
}

func (r *Recorder) Mode(ch Channel) RunMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode[ch]
}

// Writes returns a copy of the write history
func (r *Recorder) Writes() []Write {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Write, len(r.writes))
	copy(out, r.writes)
	return out
}

// Commands pairs consecutive left/right writes into commands
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Command
	for i := 0; i+1 < len(r.writes); i += 2 {
		out = append(out, Command{Left: r.writes[i].Power, Right: r.writes[i+1].Power})
	}
	return out
}

// Reset clears the write history
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = nil
}
