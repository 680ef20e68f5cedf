package signal

import "strconv"

// MaskedLabel names event records taken at an invalid sample.
const MaskedLabel = "masked"

// #region change-points

// ChangePoints returns every index i > 0 where codes[i] differs from codes[i-1].
// Index 0 is never reported.
func ChangePoints(codes []int) []int {
	var out []int
	for i := 1; i < len(codes); i++ {
		if codes[i] != codes[i-1] {
			out = append(out, i)
		}
	}
	return out
}

// Events emits one record per state transition, named "<channel>|<label>".
// Transitions landing on a masked sample use MaskedLabel; unmapped codes fall back
// to their decimal value.
func Events(d Discrete, channel string) []KeyPointValue {
	points := ChangePoints(d.Codes)
	out := make([]KeyPointValue, 0, len(points))
	for _, cp := range points {
		out = append(out, KeyPointValue{
			Index: float64(cp),
			Value: float64(d.Codes[cp]),
			Name:  EventName(channel, eventLabel(d, cp)),
		})
	}
	return out
}

// EventName joins a channel and a state label the way the reporting store expects.
func EventName(channel, label string) string {
	return channel + "|" + label
}

func eventLabel(d Discrete, i int) string {
	if !d.IsValid(i) {
		return MaskedLabel
	}
	if label, ok := d.Mapping[d.Codes[i]]; ok {
		return label
	}
	return strconv.Itoa(d.Codes[i])
}

// #endregion change-points
