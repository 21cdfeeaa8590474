package metrics

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum is the radially averaged power spectrum of a grid. Ring r holds
// frequencies of about r cycles across the shorter grid side.
type Spectrum struct {
	Radial []float64
	// Peak is the strongest non-zero ring, 0 for a flat grid.
	Peak int
	// Wavelength is the pattern spacing in cells at Peak, 0 for a flat grid.
	Wavelength float64
}

// TrailSpectrum computes the spectrum of a w×h row-major grid after
// removing its mean.
func TrailSpectrum(grid []float32, w, h int) Spectrum {
	n := min(w, h)
	if n < 2 || len(grid) != w*h {
		return Spectrum{}
	}

	var mean float64
	for _, v := range grid {
		mean += float64(v)
	}
	mean /= float64(len(grid))

	rows := make([][]float64, h)
	for y := range rows {
		rows[y] = make([]float64, w)
		for x := range rows[y] {
			rows[y][x] = float64(grid[y*w+x]) - mean
		}
	}
	freq := fft.FFT2Real(rows)

	rings := n/2 + 1
	power := make([]float64, rings)
	counts := make([]int, rings)
	for v := 0; v < h; v++ {
		fy := float64(signedFreq(v, h)) / float64(h)
		for u := 0; u < w; u++ {
			fx := float64(signedFreq(u, w)) / float64(w)
			r := int(math.Round(math.Hypot(fx, fy) * float64(n)))
			if r >= rings {
				continue
			}
			a := cmplx.Abs(freq[v][u])
			power[r] += a * a
			counts[r]++
		}
	}

	out := Spectrum{Radial: power}
	best := 0.0
	for r := range power {
		if counts[r] > 0 {
			power[r] /= float64(counts[r])
		}
		if r > 0 && power[r] > best*(1+1e-9) {
			best, out.Peak = power[r], r
		}
	}
	if out.Peak > 0 {
		out.Wavelength = float64(n) / float64(out.Peak)
	}
	return out
}

func signedFreq(k, size int) int {
	if k > size/2 {
		return k - size
	}
	return k
}
