package analysis

import (
	"fmt"
	"sort"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// #region frame
// Frame holds every named input and derived node for one recording. Measures read
// from it and their outputs are written back, so later measures can consume them.
type Frame struct {
	Recording string
	Signals   map[string]signal.Signal
	Discretes map[string]signal.Discrete
	Instants  map[string][]signal.Instant
	Sections  map[string][]signal.Interval
}

// NewFrame creates an empty frame.
func NewFrame(recording string) *Frame {
	return &Frame{
		Recording: recording,
		Signals:   make(map[string]signal.Signal),
		Discretes: make(map[string]signal.Discrete),
		Instants:  make(map[string][]signal.Instant),
		Sections:  make(map[string][]signal.Interval),
	}
}

// #endregion frame

// #region lookup

// Has reports whether any node called name is present.
func (f *Frame) Has(name string) bool {
	if _, ok := f.Signals[name]; ok {
		return true
	}
	if _, ok := f.Discretes[name]; ok {
		return true
	}
	if _, ok := f.Instants[name]; ok {
		return true
	}
	_, ok := f.Sections[name]
	return ok
}

// Names lists every node in the frame, sorted.
func (f *Frame) Names() []string {
	var names []string
	for n := range f.Signals {
		names = append(names, n)
	}
	for n := range f.Discretes {
		names = append(names, n)
	}
	for n := range f.Instants {
		names = append(names, n)
	}
	for n := range f.Sections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Frequency returns the sampling rate shared by the frame's channels.
func (f *Frame) Frequency() (float64, error) {
	freq := 0.0
	check := func(name string, hz float64) error {
		if freq == 0 {
			freq = hz
			return nil
		}
		if hz != freq {
			return fmt.Errorf("%w: %q sampled at %v Hz, frame at %v Hz", signal.ErrMalformed, name, hz, freq)
		}
		return nil
	}
	for _, n := range f.sortedChannels() {
		if s, ok := f.Signals[n]; ok {
			if err := check(n, s.Frequency); err != nil {
				return 0, err
			}
			continue
		}
		if err := check(n, f.Discretes[n].Frequency); err != nil {
			return 0, err
		}
	}
	if freq == 0 {
		return 0, fmt.Errorf("%w: frame %q has no channels", signal.ErrMalformed, f.Recording)
	}
	return freq, nil
}

func (f *Frame) sortedChannels() []string {
	names := make([]string, 0, len(f.Signals)+len(f.Discretes))
	for n := range f.Signals {
		names = append(names, n)
	}
	for n := range f.Discretes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// #endregion lookup

// #region absorb

// absorb stores a measure's output under the measure's name.
func (f *Frame) absorb(m Measure, out Output) {
	switch m.Kind {
	case KindSection:
		f.Sections[m.Name] = out.Sections
	case KindInstant:
		f.Instants[m.Name] = out.Instants
	}
	for _, s := range out.Signals {
		f.Signals[s.Name] = s
	}
}

// #endregion absorb
