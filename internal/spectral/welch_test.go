package spectral

import (
	"math"
	"testing"
)

func TestBlocks_Partitioning(t *testing.T) {
	// 1000 samples at 4 Hz with a 60-second window: 4 complete blocks of
	// 240 samples, 40 samples dropped.
	series := make([]float64, 1000)
	blocks, err := Blocks(series, 4.0, 60)
	if err != nil {
		t.Fatalf("Blocks failed: %v", err)
	}
	if len(blocks) != 4 {
		t.Fatalf("Expected 4 blocks, got %d", len(blocks))
	}
	for i, b := range blocks {
		if len(b) != 240 {
			t.Errorf("Block %d: expected 240 samples, got %d", i, len(b))
		}
	}
}

func TestBlocks_ShortSeries(t *testing.T) {
	if _, err := Blocks(make([]float64, 100), 4.0, 60); err == nil {
		t.Fatal("Expected error for series shorter than one window")
	}
}

func TestWelchPSD_PeakFrequency(t *testing.T) {
	const (
		fs   = 4.0
		freq = 0.25 // Hz, within the HF band
		n    = 512
	)
	block := make([]float64, n)
	for i := range block {
		block[i] = math.Sin(2 * math.Pi * freq * float64(i) / fs)
	}

	freqs, power := WelchPSD(block, fs)
	if len(freqs) != n/2+1 {
		t.Fatalf("Expected %d frequency bins, got %d", n/2+1, len(freqs))
	}

	peak := 0
	for k := range power {
		if power[k] > power[peak] {
			peak = k
		}
	}

	df := fs / float64(n)
	if math.Abs(freqs[peak]-freq) > 2*df {
		t.Errorf("Expected spectral peak near %g Hz, got %g Hz", freq, freqs[peak])
	}

	for k, p := range power {
		if p < 0 {
			t.Fatalf("Negative power %v at bin %d", p, k)
		}
	}
}

func TestWelchPSD_ConstantDetrend(t *testing.T) {
	block := make([]float64, 128)
	for i := range block {
		block[i] = 72.5
	}

	_, power := WelchPSD(block, 4.0)
	for k, p := range power {
		if p > 1e-18 {
			t.Errorf("Constant block should carry no power after detrend, bin %d has %v", k, p)
		}
	}
}

func TestAnalyzeBands(t *testing.T) {
	const (
		fs  = 4.0
		win = 60.0
	)
	// Two identical 240-sample blocks carrying an LF oscillation.
	block := make([]float64, 240)
	for i := range block {
		block[i] = 70 + 5*math.Sin(2*math.Pi*0.1*float64(i)/fs)
	}
	series := append(append([]float64{}, block...), block...)

	result, err := AnalyzeBands(series, fs, win)
	if err != nil {
		t.Fatalf("AnalyzeBands failed: %v", err)
	}

	// Averaging identical blocks must reproduce the single-block spectrum.
	freqs, power := WelchPSD(block, fs)
	for k := range freqs {
		if math.Abs(result.Frequencies[k]-freqs[k]) > 1e-12 {
			t.Fatalf("Frequency bin %d: expected %v, got %v", k, freqs[k], result.Frequencies[k])
		}
		if math.Abs(result.Power[k]-power[k]) > 1e-9*math.Max(1, power[k]) {
			t.Fatalf("Power bin %d: expected %v, got %v", k, power[k], result.Power[k])
		}
	}

	b := result.Bands
	if b.VLF < 0 || b.LF < 0 || b.HF < 0 {
		t.Errorf("Band powers must be non-negative: %+v", b)
	}
	if b.LF <= b.HF {
		t.Errorf("LF oscillation should dominate: LF %v, HF %v", b.LF, b.HF)
	}
	if got := b.Ratio; got != b.LF/b.HF {
		t.Errorf("Ratio must equal LF/HF exactly: got %v, want %v", got, b.LF/b.HF)
	}
}

func TestIntegrateBands_ZeroHighBand(t *testing.T) {
	freqs := []float64{0.01, 0.1, 0.2}
	power := []float64{1.0, 2.0, 0.0}

	b := integrateBands(freqs, power)
	if b.VLF != 1 || b.LF != 2 || b.HF != 0 {
		t.Fatalf("Unexpected band powers: %+v", b)
	}
	if !math.IsInf(b.Ratio, 1) {
		t.Errorf("Expected +Inf ratio for zero high-band power, got %v", b.Ratio)
	}
}
