package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// naive recomputes the window directly with wrap-around indexing.
func naive(x []float64, k int, kind Kind) []float64 {
	n := len(x)
	out := make([]float64, n)
	for i := range x {
		best := math.Inf(-1)
		if kind == Min {
			best = math.Inf(1)
		}
		for d := -k; d <= k; d++ {
			v := x[((i+d)%n+n)%n]
			switch kind {
			case Min:
				best = math.Min(best, v)
			case Max:
				best = math.Max(best, v)
			case MaxAbs:
				best = math.Max(best, math.Abs(v))
			}
		}
		out[i] = best
	}
	return out
}

func sig(freq float64, values ...float64) signal.Signal {
	return signal.Signal{Name: "Vertical Speed", Frequency: freq, Values: values}
}

func TestHalfWidth(t *testing.T) {
	assert.Equal(t, 2, HalfWidth(1, 3))  // round(1.5) rounds half away from zero
	assert.Equal(t, 1, HalfWidth(1, 1))  // round(0.5) = 1
	assert.Equal(t, 1, HalfWidth(1, 0.5)) // floor at one sample
	assert.Equal(t, 8, HalfWidth(4, 4))
}

// Constant input is a fixed point for every window size and variant.
func TestSustained_ConstantRoundTrip(t *testing.T) {
	x := sig(1, -700, -700, -700, -700, -700, -700)
	for _, w := range []float64{0.1, 1, 3, 5, 20} {
		for _, kind := range []Kind{Min, Max} {
			y := Sustained(x, w, kind)
			assert.Equal(t, x.Values, y.Values, "w=%v kind=%s", w, kind)
		}
	}
}

func TestSustained_MatchesNaiveWindow(t *testing.T) {
	values := []float64{3, -8, 1, 0, 12, -4, 7, 7, -15, 2, 9, -1}
	for _, freq := range []float64{1, 2, 4} {
		for _, w := range []float64{1, 3, 5, 8} {
			for _, kind := range []Kind{Min, Max, MaxAbs} {
				k := HalfWidth(freq, w)
				y := Sustained(sig(freq, values...), w, kind)
				assert.Equal(t, naive(values, k, kind), y.Values, "f=%v w=%v kind=%s", freq, w, kind)
			}
		}
	}
}

// Boundary samples see the far end of the array through the wrap-around.
func TestSustained_WrapsAtEdges(t *testing.T) {
	x := sig(1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 50)

	y := SustainedMax(x, 3) // k=2

	require.Len(t, y.Values, 10)
	assert.Equal(t, 50.0, y.Values[0])
	assert.Equal(t, 50.0, y.Values[1])
	assert.Equal(t, 0.0, y.Values[2])
	assert.Equal(t, 50.0, y.Values[7])
}

// A single-sample spike is suppressed by the sustained minimum.
func TestSustained_SuppressesSpike(t *testing.T) {
	x := sig(1, 100, 100, 100, 100, 900, 100, 100, 100, 100)

	y := SustainedMin(x, 3)

	for i, v := range y.Values {
		assert.Equal(t, 100.0, v, "sample %d", i)
	}
}

func TestSustained_MaskedSamples(t *testing.T) {
	x := sig(1, 1, 50, 2, 3, 4, 5, 6, 7)
	x.Valid = []bool{true, false, true, true, true, true, true, true}

	y := SustainedMaxAbs(x, 1) // k=1

	assert.Equal(t, 2.0, y.Values[1])
	assert.True(t, y.Valid[1])

	allMasked := sig(1, 1, 2, 3)
	allMasked.Valid = []bool{false, false, false}
	z := SustainedMax(allMasked, 3)
	assert.Equal(t, []bool{false, false, false}, z.Valid)
}

func TestSustained_WindowLongerThanSignal(t *testing.T) {
	values := []float64{4, -9, 2}
	y := SustainedMaxAbs(sig(1, values...), 10) // k=5 > n
	assert.Equal(t, naive(values, 5, MaxAbs), y.Values)
}
