package recording

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/analysis"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

//go:embed recording.schema.json
var schemaJSON []byte

const schemaURL = "recording.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// #region parse

// Parse validates raw against the recording schema and decodes it. Schema
// violations are reported as signal.ErrMalformed.
func Parse(raw []byte) (*Recording, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode recording: %v", signal.ErrMalformed, err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", signal.ErrMalformed, err)
	}

	var rec Recording
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: decode recording: %v", signal.ErrMalformed, err)
	}
	return &rec, nil
}

// Load reads and parses a recording file.
func Load(path string) (*Recording, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	rec, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return rec, nil
}

// #endregion parse

// #region frame

// Frame converts the recording into an analysis frame.
func (r *Recording) Frame() (*analysis.Frame, error) {
	f := analysis.NewFrame(r.Name)
	for _, ch := range r.Signals {
		if f.Has(ch.Name) {
			return nil, fmt.Errorf("%w: duplicate channel %q", signal.ErrMalformed, ch.Name)
		}
		s := signal.Signal{
			Name:      ch.Name,
			Frequency: ch.Frequency,
			Offset:    ch.Offset,
			Values:    make([]float64, len(ch.Values)),
			Valid:     make([]bool, len(ch.Values)),
		}
		for i, v := range ch.Values {
			if v != nil {
				s.Values[i], s.Valid[i] = *v, true
			}
		}
		f.Signals[ch.Name] = s
	}
	for _, ch := range r.Discretes {
		if f.Has(ch.Name) {
			return nil, fmt.Errorf("%w: duplicate channel %q", signal.ErrMalformed, ch.Name)
		}
		d := signal.Discrete{
			Name:      ch.Name,
			Frequency: ch.Frequency,
			Offset:    ch.Offset,
			Codes:     make([]int, len(ch.Codes)),
			Valid:     make([]bool, len(ch.Codes)),
			Mapping:   make(map[int]string, len(ch.Mapping)),
		}
		for i, c := range ch.Codes {
			if c != nil {
				d.Codes[i], d.Valid[i] = *c, true
			}
		}
		for k, label := range ch.Mapping {
			code, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("%w: %q mapping key %q: %v", signal.ErrMalformed, ch.Name, k, err)
			}
			d.Mapping[code] = label
		}
		f.Discretes[ch.Name] = d
	}
	for _, m := range r.Instants {
		f.Instants[m.Name] = append(f.Instants[m.Name], signal.Instant{Index: m.Index, Name: m.Name})
	}
	return f, nil
}

// #endregion frame

// #region from-frame

// FromFrame builds a recording from the input channels of f.
func FromFrame(f *analysis.Frame) *Recording {
	rec := &Recording{Name: f.Recording, Signals: []SignalChannel{}, Discretes: []DiscreteChannel{}}
	for _, name := range f.Names() {
		if s, ok := f.Signals[name]; ok {
			ch := SignalChannel{Name: name, Frequency: s.Frequency, Offset: s.Offset, Values: make([]*float64, s.Len())}
			for i := range s.Values {
				if v, ok := s.At(i); ok {
					ch.Values[i] = &v
				}
			}
			rec.Signals = append(rec.Signals, ch)
		}
		if d, ok := f.Discretes[name]; ok {
			ch := DiscreteChannel{Name: name, Frequency: d.Frequency, Offset: d.Offset, Codes: make([]*int, d.Len()), Mapping: map[string]string{}}
			for i := range d.Codes {
				if d.IsValid(i) {
					c := d.Codes[i]
					ch.Codes[i] = &c
				}
			}
			for code, label := range d.Mapping {
				ch.Mapping[strconv.Itoa(code)] = label
			}
			rec.Discretes = append(rec.Discretes, ch)
		}
		for _, in := range f.Instants[name] {
			rec.Instants = append(rec.Instants, InstantMarker{Name: in.Name, Index: in.Index})
		}
	}
	return rec
}

// #endregion from-frame
