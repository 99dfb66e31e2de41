package analysis

import "math"

// Peak is a strict local maximum of a sampled series.
type Peak struct {
	Index      int
	Time       float64
	Value      float64
	Prominence float64
}

// Peaks returns the strict local maxima of series whose prominence is at
// least minProminence. Prominence is the height above the higher of the
// two minima separating the peak from taller neighbours (or the series
// ends). times may be nil, in which case Peak.Time is the sample index.
// Flat tops count once, at their first sample.
func Peaks(series, times []float64, minProminence float64) []Peak {
	n := len(series)
	if n < 3 {
		return nil
	}

	var peaks []Peak
	for i := 1; i < n-1; i++ {
		if !(series[i] > series[i-1]) {
			continue
		}
		// walk across a plateau
		j := i
		for j+1 < n && series[j+1] == series[i] {
			j++
		}
		if j+1 >= n || !(series[j+1] < series[i]) {
			i = j
			continue
		}

		prom := prominence(series, i, j)
		if prom >= minProminence {
			t := float64(i)
			if times != nil {
				t = times[i]
			}
			peaks = append(peaks, Peak{Index: i, Time: t, Value: series[i], Prominence: prom})
		}
		i = j
	}
	return peaks
}

func prominence(series []float64, left, right int) float64 {
	v := series[left]

	leftMin := v
	for k := left - 1; k >= 0 && series[k] <= v; k-- {
		leftMin = math.Min(leftMin, series[k])
	}
	rightMin := v
	for k := right + 1; k < len(series) && series[k] <= v; k++ {
		rightMin = math.Min(rightMin, series[k])
	}
	return v - math.Max(leftMin, rightMin)
}

// Oscillates reports whether series has at least minPeaks maxima with
// the given prominence.
func Oscillates(series []float64, minPeaks int, minProminence float64) bool {
	return len(Peaks(series, nil, minProminence)) >= minPeaks
}
