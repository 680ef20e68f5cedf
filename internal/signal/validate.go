package signal

import "fmt"

// #region validate

// Validate checks the structural invariants of a numeric signal.
func (s Signal) Validate() error {
	if !(s.Frequency > 0) {
		return fmt.Errorf("%w: %q frequency %v must be positive", ErrMalformed, s.Name, s.Frequency)
	}
	if s.Valid != nil && len(s.Valid) != len(s.Values) {
		return fmt.Errorf("%w: %q has %d samples but %d validity flags", ErrMalformed, s.Name, len(s.Values), len(s.Valid))
	}
	return nil
}

// Validate checks the structural invariants of a discrete signal.
func (d Discrete) Validate() error {
	if !(d.Frequency > 0) {
		return fmt.Errorf("%w: %q frequency %v must be positive", ErrMalformed, d.Name, d.Frequency)
	}
	if d.Valid != nil && len(d.Valid) != len(d.Codes) {
		return fmt.Errorf("%w: %q has %d samples but %d validity flags", ErrMalformed, d.Name, len(d.Codes), len(d.Valid))
	}
	return nil
}

// Aligned describes anything with a name, frequency and sample count.
type Aligned interface {
	Len() int
	Validate() error
	freq() float64
	name() string
}

func (s Signal) freq() float64   { return s.Frequency }
func (s Signal) name() string    { return s.Name }
func (d Discrete) freq() float64 { return d.Frequency }
func (d Discrete) name() string  { return d.Name }

// CheckAligned validates each channel and requires them all to share one length
// and one frequency. Mismatches are never truncated or padded.
func CheckAligned(channels ...Aligned) error {
	if len(channels) == 0 {
		return nil
	}
	ref := channels[0]
	for _, ch := range channels {
		if err := ch.Validate(); err != nil {
			return err
		}
		if ch.Len() != ref.Len() {
			return fmt.Errorf("%w: %q has %d samples, %q has %d", ErrMalformed, ch.name(), ch.Len(), ref.name(), ref.Len())
		}
		if ch.freq() != ref.freq() {
			return fmt.Errorf("%w: %q sampled at %v Hz, %q at %v Hz", ErrMalformed, ch.name(), ch.freq(), ref.name(), ref.freq())
		}
	}
	return nil
}

// #endregion validate
