package spectral

import (
	"math"
	"testing"
)

func TestScales(t *testing.T) {
	scales := Scales()
	if len(scales) != 127 {
		t.Fatalf("Expected 127 scales, got %d", len(scales))
	}
	if scales[0] != 1 || scales[len(scales)-1] != 127 {
		t.Errorf("Expected scales 1..127, got %v..%v", scales[0], scales[len(scales)-1])
	}
}

func TestCWT_ZeroSignal(t *testing.T) {
	block := make([]float64, 32)
	coeffs := CWT(block, []float64{1, 4, 16})

	for si := range coeffs {
		for ti, c := range coeffs[si] {
			if c != 0 {
				t.Fatalf("Zero signal must yield zero coefficients, got %v at [%d][%d]", c, si, ti)
			}
		}
	}
}

func TestCWT_ScaleSelectivity(t *testing.T) {
	// A sine with a 16-sample period concentrates energy near scale
	// omega0 * period / (2*pi) ~ 12.7.
	const n = 64
	block := make([]float64, n)
	for i := range block {
		block[i] = math.Sin(2 * math.Pi * float64(i) / 16)
	}

	scales := Scales()
	coeffs := CWT(block, scales)

	best, bestEnergy := 0, 0.0
	for si := range scales {
		total := 0.0
		// Skip edges where the wavelet hangs off the block
		for t := n / 4; t < 3*n/4; t++ {
			c := coeffs[si][t]
			total += real(c)*real(c) + imag(c)*imag(c)
		}
		if total > bestEnergy {
			best, bestEnergy = si, total
		}
	}

	want := morletOmega0 * 16 / (2 * math.Pi)
	if math.Abs(scales[best]-want) > 4 {
		t.Errorf("Expected dominant scale near %.1f, got %v", want, scales[best])
	}
}

func TestAnalyzeCWT(t *testing.T) {
	const (
		fs  = 4.0
		win = 16.0 // 64-sample blocks
	)
	block := make([]float64, 64)
	for i := range block {
		block[i] = 70 + 4*math.Sin(2*math.Pi*float64(i)/16)
	}
	series := append(append([]float64{}, block...), block...)

	result, err := AnalyzeCWT(series, fs, win)
	if err != nil {
		t.Fatalf("AnalyzeCWT failed: %v", err)
	}

	if len(result.Scales) != 127 {
		t.Fatalf("Expected 127 scales, got %d", len(result.Scales))
	}
	if len(result.Coefficients) != 127 || len(result.Energy) != 127 {
		t.Fatalf("Expected 127 coefficient/energy rows")
	}
	if len(result.Coefficients[0]) != 64 {
		t.Fatalf("Expected 64 columns, got %d", len(result.Coefficients[0]))
	}

	// Identical blocks: the average equals the single-block transform, and
	// the averaged energy is the squared magnitude of the averaged
	// coefficient.
	single := CWT(block, result.Scales)
	for si := 0; si < 127; si += 31 {
		for ti := 0; ti < 64; ti += 13 {
			c := result.Coefficients[si][ti]
			if delta := c - single[si][ti]; math.Hypot(real(delta), imag(delta)) > 1e-9 {
				t.Fatalf("Coefficient [%d][%d] diverged from single-block transform", si, ti)
			}
			wantEnergy := real(c)*real(c) + imag(c)*imag(c)
			if math.Abs(result.Energy[si][ti]-wantEnergy) > 1e-9*math.Max(1, wantEnergy) {
				t.Fatalf("Energy [%d][%d]: expected %v, got %v", si, ti, wantEnergy, result.Energy[si][ti])
			}
		}
	}

	if _, err = AnalyzeCWT(make([]float64, 10), fs, win); err == nil {
		t.Fatal("Expected error for series shorter than one window")
	}
}
