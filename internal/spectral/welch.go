package spectral

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Frequency band edges in Hz, and the derived LF/HF ratio key.
const (
	BandVLF     = "vlf"
	BandLF      = "lf"
	BandHF      = "hf"
	BandLFHF    = "lf_hf_ratio"
	vlfLow      = 0.003
	vlfHigh     = 0.04
	lfLow       = 0.04
	lfHigh      = 0.15
	hfLow       = 0.15
	hfHigh      = 0.4
)

// BandNames lists the band dictionary keys in persistence order.
var BandNames = []string{BandVLF, BandLF, BandHF, BandLFHF}

// BandPowers maps each named frequency band to its summed power. Ratio is
// LF over HF and is +Inf when the high band holds no power.
type BandPowers struct {
	VLF   float64
	LF    float64
	HF    float64
	Ratio float64
}

// Vector returns the band powers in BandNames order.
func (b BandPowers) Vector() []float64 {
	return []float64{b.VLF, b.LF, b.HF, b.Ratio}
}

// FrequencyResult holds the block-averaged Welch spectrum and its band
// powers.
type FrequencyResult struct {
	Frequencies []float64
	Power       []float64
	Bands       BandPowers
}

// WelchPSD estimates the one-sided power spectral density of a block using
// Welch's method with the block length as the segment length: a periodic
// Hann window over the constant-detrended block, density scaling. The
// returned frequencies run from 0 to sampleRate/2.
func WelchPSD(block []float64, sampleRate float64) (freqs, power []float64) {
	n := len(block)
	if n == 0 {
		return nil, nil
	}

	mean := 0.0
	for _, v := range block {
		mean += v
	}
	mean /= float64(n)

	window := make([]float64, n)
	windowed := make([]float64, n)
	sumSq := 0.0
	for i := range block {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
		window[i] = w
		windowed[i] = (block[i] - mean) * w
		sumSq += w * w
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, windowed)

	scale := 1 / (sampleRate * sumSq)
	freqs = make([]float64, len(coeffs))
	power = make([]float64, len(coeffs))
	for k, c := range coeffs {
		freqs[k] = fft.Freq(k) * sampleRate
		p := scale * (real(c)*real(c) + imag(c)*imag(c))

		// One-sided spectrum: double everything except DC and, for an even
		// block length, the Nyquist bin.
		if k != 0 && !(n%2 == 0 && k == len(coeffs)-1) {
			p *= 2
		}
		power[k] = p
	}
	return freqs, power
}

// AnalyzeBands segments the series into non-overlapping windows, estimates a
// Welch PSD per window, averages frequency and power arrays elementwise
// across windows, and integrates the averaged power into the VLF, LF and HF
// bands by point-wise summation.
func AnalyzeBands(series []float64, sampleRate, windowSeconds float64) (*FrequencyResult, error) {
	blocks, err := Blocks(series, sampleRate, windowSeconds)
	if err != nil {
		return nil, err
	}

	var freqs, power []float64
	for _, block := range blocks {
		f, p := WelchPSD(block, sampleRate)
		if freqs == nil {
			freqs = make([]float64, len(f))
			power = make([]float64, len(p))
		}
		for k := range f {
			freqs[k] += f[k]
			power[k] += p[k]
		}
	}
	inv := 1 / float64(len(blocks))
	for k := range freqs {
		freqs[k] *= inv
		power[k] *= inv
	}

	return &FrequencyResult{
		Frequencies: freqs,
		Power:       power,
		Bands:       integrateBands(freqs, power),
	}, nil
}

// integrateBands sums point-wise power over each band's frequency range.
// This is a raw sample sum, not a trapezoidal integration, so band totals
// depend on the spectral resolution.
func integrateBands(freqs, power []float64) BandPowers {
	var b BandPowers
	for k, f := range freqs {
		if f >= vlfLow && f <= vlfHigh {
			b.VLF += power[k]
		}
		if f >= lfLow && f <= lfHigh {
			b.LF += power[k]
		}
		if f >= hfLow && f <= hfHigh {
			b.HF += power[k]
		}
	}
	b.Ratio = b.LF / b.HF
	return b
}
