package spectral

import (
	"math"
	"math/cmplx"
)

const (
	// morletOmega0 is the center frequency of the complex Morlet wavelet.
	morletOmega0 = 5.0

	minScale = 1
	maxScale = 127
)

// Scales returns the default wavelet scale array, 1 through 127.
func Scales() []float64 {
	scales := make([]float64, maxScale-minScale+1)
	for i := range scales {
		scales[i] = float64(minScale + i)
	}
	return scales
}

// TimeFrequencyResult holds the block-averaged continuous wavelet transform:
// the scale array, the complex coefficient plane (scales x time) and the
// derived energy plane (squared coefficient magnitude).
type TimeFrequencyResult struct {
	Scales       []float64
	Coefficients [][]complex128
	Energy       [][]float64
}

// morlet evaluates the complex Morlet mother wavelet at u.
func morlet(u float64) complex128 {
	gauss := math.Pow(math.Pi, -0.25) * math.Exp(-u*u/2)
	return cmplx.Rect(gauss, morletOmega0*u)
}

// CWT computes the continuous wavelet transform of a block by direct
// convolution with the scaled, conjugated Morlet wavelet. The result is a
// len(scales) x len(block) coefficient plane.
func CWT(block []float64, scales []float64) [][]complex128 {
	n := len(block)
	coeffs := make([][]complex128, len(scales))

	for si, scale := range scales {
		coeffs[si] = make([]complex128, n)
		for t := 0; t < n; t++ {
			var sum complex128
			for tau := 0; tau < n; tau++ {
				w := cmplx.Conj(morlet(float64(tau-t) / scale))
				sum += complex(block[tau], 0) * w / complex(scale, 0)
			}
			coeffs[si][t] = sum
		}
	}
	return coeffs
}

// AnalyzeCWT segments the series into non-overlapping windows, applies the
// Morlet wavelet transform at scales 1..127 per window, and averages the
// coefficient and energy planes elementwise across windows.
func AnalyzeCWT(series []float64, sampleRate, windowSeconds float64) (*TimeFrequencyResult, error) {
	blocks, err := Blocks(series, sampleRate, windowSeconds)
	if err != nil {
		return nil, err
	}

	scales := Scales()
	blockLen := len(blocks[0])

	coeffs := make([][]complex128, len(scales))
	energy := make([][]float64, len(scales))
	for si := range scales {
		coeffs[si] = make([]complex128, blockLen)
		energy[si] = make([]float64, blockLen)
	}

	for _, block := range blocks {
		w := CWT(block, scales)
		for si := range scales {
			for t := 0; t < blockLen; t++ {
				c := w[si][t]
				coeffs[si][t] += c
				re, im := real(c), imag(c)
				energy[si][t] += re*re + im*im
			}
		}
	}

	inv := complex(1/float64(len(blocks)), 0)
	for si := range scales {
		for t := 0; t < blockLen; t++ {
			coeffs[si][t] *= inv
			energy[si][t] /= float64(len(blocks))
		}
	}

	return &TimeFrequencyResult{
		Scales:       scales,
		Coefficients: coeffs,
		Energy:       energy,
	}, nil
}
