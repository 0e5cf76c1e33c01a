// Package spectral provides frequency-domain and time-frequency analysis of
// heart-rate series: Welch power spectral density estimation with integration
// into the standard HRV frequency bands, and a continuous Morlet wavelet
// transform. Both analyzers operate on fixed-length non-overlapping blocks
// and average the per-block fields elementwise.
package spectral

import (
	"fmt"
)

// Blocks partitions a series into non-overlapping blocks of
// sampleRate*windowSeconds samples. The trailing partial block is dropped:
// a 1000-sample series at 4 Hz with a 60-second window yields exactly 4
// blocks of 240 samples and discards the remaining 40.
func Blocks(series []float64, sampleRate, windowSeconds float64) ([][]float64, error) {
	blockLen := int(sampleRate * windowSeconds)
	if blockLen < 1 {
		return nil, fmt.Errorf("invalid block length %d (rate %g Hz, window %g s)", blockLen, sampleRate, windowSeconds)
	}
	if len(series) < blockLen {
		return nil, fmt.Errorf("series of %d samples is shorter than one %d-sample window", len(series), blockLen)
	}

	count := len(series) / blockLen
	blocks := make([][]float64, count)
	for i := 0; i < count; i++ {
		blocks[i] = series[i*blockLen : (i+1)*blockLen]
	}
	return blocks, nil
}
