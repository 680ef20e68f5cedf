package analysis

import "fmt"

// #region registry
// Registry is an ordered capability table. Measures run in registration order, so a
// measure must be registered after the measures it consumes.
type Registry struct {
	measures []Measure
	index    map[string]int
}

// NewRegistry creates a registry from measures.
func NewRegistry(measures ...Measure) (*Registry, error) {
	r := &Registry{index: make(map[string]int)}
	for _, m := range measures {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a measure. Names must be unique.
func (r *Registry) Register(m Measure) error {
	if m.Name == "" || m.Derive == nil {
		return fmt.Errorf("register measure: name and derive are required")
	}
	if _, dup := r.index[m.Name]; dup {
		return fmt.Errorf("register measure: %q already registered", m.Name)
	}
	r.index[m.Name] = len(r.measures)
	r.measures = append(r.measures, m)
	return nil
}

// Measures returns the measures in run order.
func (r *Registry) Measures() []Measure {
	out := make([]Measure, len(r.measures))
	copy(out, r.measures)
	return out
}

// Lookup returns the measure called name.
func (r *Registry) Lookup(name string) (Measure, bool) {
	i, ok := r.index[name]
	if !ok {
		return Measure{}, false
	}
	return r.measures[i], true
}

// #endregion registry
