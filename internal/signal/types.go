package signal

import (
	"errors"
	"math"
)

// ErrMalformed marks recording-level input that cannot be analyzed.
var ErrMalformed = errors.New("malformed signal")

// #region signal

// Signal is a uniformly sampled numeric channel.
// Valid may be nil, meaning every sample is valid.
type Signal struct {
	Name      string    `json:"name"`
	Frequency float64   `json:"frequency"`
	Offset    float64   `json:"offset"`
	Values    []float64 `json:"values"`
	Valid     []bool    `json:"valid,omitempty"`
}

// Len returns the sample count.
func (s Signal) Len() int { return len(s.Values) }

// IsValid reports whether sample i exists and is not masked.
func (s Signal) IsValid(i int) bool {
	if i < 0 || i >= len(s.Values) {
		return false
	}
	if s.Valid == nil {
		return true
	}
	return s.Valid[i]
}

// At returns the value at i and whether it is usable.
func (s Signal) At(i int) (float64, bool) {
	if !s.IsValid(i) {
		return 0, false
	}
	return s.Values[i], true
}

// ValueAt returns the value at a possibly fractional index, interpolating linearly
// between the neighboring samples. Both neighbors must be valid.
func (s Signal) ValueAt(index float64) (float64, bool) {
	lo := int(math.Floor(index))
	hi := int(math.Ceil(index))
	a, ok := s.At(lo)
	if !ok {
		return 0, false
	}
	if hi == lo {
		return a, true
	}
	b, ok := s.At(hi)
	if !ok {
		return 0, false
	}
	frac := index - float64(lo)
	return a + (b-a)*frac, true
}

// Masked returns a zero-valued signal with the same shape whose samples are all invalid.
func (s Signal) Masked(name string) Signal {
	return Signal{
		Name:      name,
		Frequency: s.Frequency,
		Offset:    s.Offset,
		Values:    make([]float64, len(s.Values)),
		Valid:     make([]bool, len(s.Values)),
	}
}

// #endregion signal

// #region discrete

// Discrete is a uniformly sampled multi-state channel. Codes index into Mapping.
type Discrete struct {
	Name      string         `json:"name"`
	Frequency float64        `json:"frequency"`
	Offset    float64        `json:"offset"`
	Codes     []int          `json:"codes"`
	Valid     []bool         `json:"valid,omitempty"`
	Mapping   map[int]string `json:"mapping"`
}

// Len returns the sample count.
func (d Discrete) Len() int { return len(d.Codes) }

// IsValid reports whether sample i exists and is not masked.
func (d Discrete) IsValid(i int) bool {
	if i < 0 || i >= len(d.Codes) {
		return false
	}
	if d.Valid == nil {
		return true
	}
	return d.Valid[i]
}

// Label returns the mapped state name at i. Masked samples and unmapped codes return "".
func (d Discrete) Label(i int) string {
	if !d.IsValid(i) {
		return ""
	}
	return d.Mapping[d.Codes[i]]
}

// AnyOf marks every valid sample whose label is one of states.
func (d Discrete) AnyOf(states ...string) []bool {
	want := make(map[string]struct{}, len(states))
	for _, s := range states {
		want[s] = struct{}{}
	}
	out := make([]bool, len(d.Codes))
	for i := range d.Codes {
		if _, ok := want[d.Label(i)]; ok {
			out[i] = true
		}
	}
	return out
}

// Truthy marks every valid sample with a non-zero code.
func (d Discrete) Truthy() []bool {
	out := make([]bool, len(d.Codes))
	for i, c := range d.Codes {
		out[i] = c != 0 && d.IsValid(i)
	}
	return out
}

// #endregion discrete

// #region interval

// Interval is a half-open sample range [Start, Stop) with edge positions that may
// carry sub-sample precision.
type Interval struct {
	Start     int     `json:"start"`
	Stop      int     `json:"stop"`
	StartEdge float64 `json:"start_edge"`
	StopEdge  float64 `json:"stop_edge"`
}

// NewInterval builds an interval whose edges sit on the integer boundaries.
func NewInterval(start, stop int) Interval {
	return Interval{Start: start, Stop: stop, StartEdge: float64(start), StopEdge: float64(stop)}
}

// Len returns the number of samples covered.
func (iv Interval) Len() int { return iv.Stop - iv.Start }

// Duration returns the interval length in seconds at the given frequency.
func (iv Interval) Duration(frequency float64) float64 {
	return float64(iv.Stop-iv.Start) / frequency
}

// Contains reports whether index lies inside [Start, Stop).
func (iv Interval) Contains(index float64) bool {
	return index >= float64(iv.Start) && index < float64(iv.Stop)
}

// #endregion interval

// #region records

// Instant is a key time instance: a named point on the sample axis.
type Instant struct {
	Index float64 `json:"index"`
	Name  string  `json:"name"`
}

// KeyPointValue is a named measurement taken at a sample index.
type KeyPointValue struct {
	Index float64 `json:"index"`
	Value float64 `json:"value"`
	Name  string  `json:"name"`
}

// First returns the earliest instant, or false when there are none.
func First(instants []Instant) (Instant, bool) {
	if len(instants) == 0 {
		return Instant{}, false
	}
	first := instants[0]
	for _, in := range instants[1:] {
		if in.Index < first.Index {
			first = in
		}
	}
	return first, true
}

// #endregion records

// #region helpers

// Round rounds half away from zero.
func Round(v float64) int {
	return int(math.Round(v))
}

// #endregion helpers
