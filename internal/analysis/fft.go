package analysis

import (
	"math"
	"math/cmplx"
)

func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

func PowerSpectrum(data []float64) []float64 {
	fft := FFT(data)
	ps := make([]float64, len(fft)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}

	return ps
}

// DominantPeriod returns the period of the strongest non-constant
// frequency in series, or 0 when there is none. The series is resampled
// linearly onto a power-of-two grid spanning times and its mean removed
// before the transform.
func DominantPeriod(series, times []float64) float64 {
	if len(series) < 4 || len(series) != len(times) {
		return 0
	}
	duration := times[len(times)-1] - times[0]
	if !(duration > 0) {
		return 0
	}

	n := nextPow2(len(series))
	dt := duration / float64(n)
	grid := resample(series, times, n, dt)

	mean := 0.0
	for _, v := range grid {
		mean += v
	}
	mean /= float64(n)
	for i := range grid {
		grid[i] -= mean
	}

	ps := PowerSpectrum(grid)
	best, bestPower := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestPower {
			best, bestPower = k, ps[k]
		}
	}
	if best == 0 || bestPower < 1e-12 {
		return 0
	}
	return float64(n) * dt / float64(best)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func resample(series, times []float64, n int, dt float64) []float64 {
	out := make([]float64, n)
	j := 0
	for i := range out {
		t := times[0] + float64(i)*dt
		for j+1 < len(times)-1 && times[j+1] < t {
			j++
		}
		t0, t1 := times[j], times[j+1]
		frac := 0.0
		if t1 > t0 {
			frac = (t - t0) / (t1 - t0)
		}
		out[i] = series[j] + frac*(series[j+1]-series[j])
	}
	return out
}
