package drive

import "errors"

// Fanout mirrors every write to each actuator in order
// Returns the joined errors of the actuators that failed; the rest still receive the write
type Fanout []Actuator

func (f Fanout) SetPower(ch Channel, power float64) error {
	return f.each(func(a Actuator) error { return a.SetPower(ch, power) })
}

func (f Fanout) SetDirection(ch Channel, dir Direction) error {
	return f.each(func(a Actuator) error { return a.SetDirection(ch, dir) })
}

func (f Fanout) SetMode(ch Channel, mode RunMode) error {
	return f.each(func(a Actuator) error { return a.SetMode(ch, mode) })
}

func (f Fanout) each(fn func(Actuator) error) error {
	var errs []error
	for _, a := range f {
		if err := fn(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Actuator = Fanout(nil)
