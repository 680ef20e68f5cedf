package signal

import "math"

// #region runs

// RunsOfTrue returns the maximal runs of contiguous true samples, in order.
func RunsOfTrue(mask []bool) []Interval {
	var runs []Interval
	start := -1
	for i, v := range mask {
		switch {
		case v && start < 0:
			start = i
		case !v && start >= 0:
			runs = append(runs, NewInterval(start, i))
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, NewInterval(start, len(mask)))
	}
	return runs
}

// MergeSmallGaps joins consecutive runs whose gap is at most maxGap seconds.
// Runs must be ordered and non-overlapping.
func MergeSmallGaps(runs []Interval, maxGap, frequency float64) []Interval {
	if len(runs) == 0 {
		return nil
	}
	limit := maxGap * frequency
	merged := []Interval{runs[0]}
	for _, r := range runs[1:] {
		last := &merged[len(merged)-1]
		if float64(r.Start-last.Stop) <= limit+1e-9 {
			last.Stop = r.Stop
			last.StopEdge = math.Max(last.StopEdge, r.StopEdge)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// #endregion runs
