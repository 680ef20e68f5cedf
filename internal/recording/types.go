package recording

// #region recording
// Recording is the on-disk form of one flight. Null samples are masked.
type Recording struct {
	Name      string            `json:"name"`
	Signals   []SignalChannel   `json:"signals"`
	Discretes []DiscreteChannel `json:"discretes"`
	Instants  []InstantMarker   `json:"instants,omitempty"`
}

// SignalChannel is a numeric channel.
type SignalChannel struct {
	Name      string     `json:"name"`
	Frequency float64    `json:"frequency"`
	Offset    float64    `json:"offset,omitempty"`
	Values    []*float64 `json:"values"`
}

// DiscreteChannel is a multi-state channel. Mapping keys are decimal codes.
type DiscreteChannel struct {
	Name      string            `json:"name"`
	Frequency float64           `json:"frequency"`
	Offset    float64           `json:"offset,omitempty"`
	Codes     []*int            `json:"codes"`
	Mapping   map[string]string `json:"mapping"`
}

// InstantMarker is a named point such as Liftoff or Touchdown.
type InstantMarker struct {
	Name  string  `json:"name"`
	Index float64 `json:"index"`
}

// #endregion recording
