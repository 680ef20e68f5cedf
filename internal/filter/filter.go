package filter

import (
	"math"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// #region kind

// Kind selects which extremum the filter keeps.
type Kind int

const (
	Min Kind = iota
	Max
	MaxAbs
)

func (k Kind) String() string {
	switch k {
	case Min:
		return "min"
	case Max:
		return "max"
	case MaxAbs:
		return "max_abs"
	default:
		return "unknown"
	}
}

// DefaultWindow is the sustained window in seconds.
const DefaultWindow = 3.0

// #endregion kind

// #region half-width

// HalfWidth returns k = max(1, round(f*w/2)), the number of samples either side of
// the centre sample.
func HalfWidth(frequency, window float64) int {
	k := signal.Round(frequency * window / 2)
	if k < 1 {
		return 1
	}
	return k
}

// #endregion half-width

// #region sustained

// Sustained returns a signal of the same length where sample i holds the chosen
// extremum of x over [i-k, i+k]. Indices wrap around the ends of the array rather
// than shrinking the window. Masked samples are ignored; a window with no valid
// sample produces a masked output.
func Sustained(x signal.Signal, window float64, kind Kind) signal.Signal {
	n := x.Len()
	out := signal.Signal{
		Name:      x.Name,
		Frequency: x.Frequency,
		Offset:    x.Offset,
		Values:    make([]float64, n),
		Valid:     make([]bool, n),
	}
	if n == 0 {
		return out
	}
	k := HalfWidth(x.Frequency, window)
	span := 2*k + 1

	// key maps a sample onto the quantity being maximized.
	key := func(v float64) float64 {
		switch kind {
		case Min:
			return -v
		case MaxAbs:
			return math.Abs(v)
		default:
			return v
		}
	}

	// Walk the circularly extended array ext[j] = x[(j-k) mod n] with a monotonic
	// deque of positions whose keys decrease from front to back.
	deque := make([]int, 0, span)
	at := func(j int) int { return ((j-k)%n + n) % n }

	for j := 0; j < n+2*k; j++ {
		src := at(j)
		if x.IsValid(src) {
			kv := key(x.Values[src])
			for len(deque) > 0 && key(x.Values[at(deque[len(deque)-1])]) <= kv {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, j)
		}
		// window for output i = j-2k covers ext[i .. i+2k]
		i := j - 2*k
		if i < 0 {
			continue
		}
		for len(deque) > 0 && deque[0] < i {
			deque = deque[1:]
		}
		if len(deque) == 0 {
			continue
		}
		v := x.Values[at(deque[0])]
		if kind == MaxAbs {
			v = math.Abs(v)
		}
		out.Values[i] = v
		out.Valid[i] = true
	}
	return out
}

// SustainedMin is Sustained with Min.
func SustainedMin(x signal.Signal, window float64) signal.Signal {
	return Sustained(x, window, Min)
}

// SustainedMax is Sustained with Max.
func SustainedMax(x signal.Signal, window float64) signal.Signal {
	return Sustained(x, window, Max)
}

// SustainedMaxAbs is Sustained with MaxAbs.
func SustainedMaxAbs(x signal.Signal, window float64) signal.Signal {
	return Sustained(x, window, MaxAbs)
}

// #endregion sustained
