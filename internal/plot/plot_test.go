package plot

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()

	r, err := New(Config{Width: 320, Height: 240})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := r.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return r
}

func TestRenderer_Line(t *testing.T) {
	r := newTestRenderer(t)

	img, err := r.Line(&Chart{
		Title: "test chart",
		Series: []Series{
			{Label: "signal", Values: []float64{1, 2, 3, 2, 1}},
			{Label: "fitted", Values: []float64{1.5, 1.5, 2.5, 2.5, 1.5}},
		},
	})
	if err != nil {
		t.Fatalf("Line() error = %v", err)
	}

	if got := img.Bounds().Dx(); got != 320 {
		t.Errorf("image width = %d, want 320", got)
	}
	if got := img.Bounds().Dy(); got != 240 {
		t.Errorf("image height = %d, want 240", got)
	}

	var colored int
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			if img.RGBAAt(x, y) != white {
				colored++
			}
		}
	}
	if colored == 0 {
		t.Error("Line() produced a blank image")
	}
}

func TestRenderer_Line_NaNGaps(t *testing.T) {
	r := newTestRenderer(t)

	values := []float64{1, 2, math.NaN(), 4, 5}
	if _, err := r.Line(&Chart{Series: []Series{{Values: values}}}); err != nil {
		t.Fatalf("Line() error = %v", err)
	}
}

func TestRenderer_Line_Errors(t *testing.T) {
	r := newTestRenderer(t)

	if _, err := r.Line(&Chart{Title: "empty"}); err == nil {
		t.Error("Line() expected error for chart without series")
	}

	nan := []float64{math.NaN(), math.NaN()}
	if _, err := r.Line(&Chart{Series: []Series{{Values: nan}}}); err == nil {
		t.Error("Line() expected error for all-NaN series")
	}
}

func TestRenderer_Histogram(t *testing.T) {
	r := newTestRenderer(t)

	values := []float64{-1, -0.5, 0, 0, 0, 0.5, 1, math.NaN()}
	img, err := r.Histogram("residuals", values, 4)
	if err != nil {
		t.Fatalf("Histogram() error = %v", err)
	}

	var bars int
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			if img.RGBAAt(x, y) == Palette[0] {
				bars++
			}
		}
	}
	if bars == 0 {
		t.Error("Histogram() drew no bars")
	}

	if _, err := r.Histogram("bad", values, 0); err == nil {
		t.Error("Histogram() expected error for zero bins")
	}
	if _, err := r.Histogram("nan", []float64{math.NaN()}, 4); err == nil {
		t.Error("Histogram() expected error for all-NaN values")
	}
}

func TestSavePNG(t *testing.T) {
	r := newTestRenderer(t)

	img, err := r.Line(&Chart{Series: []Series{{Values: []float64{1, 2, 1}}}})
	if err != nil {
		t.Fatalf("Line() error = %v", err)
	}

	// Nested directory must be created on demand.
	path := filepath.Join(t.TempDir(), "out", "charts", "test.png")
	if err := SavePNG(path, img); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() == 0 {
		t.Error("SavePNG() wrote an empty file")
	}
}

func TestNiceValueStep(t *testing.T) {
	tests := []struct {
		valueRange float64
		pixels     int
		want       float64
	}{
		{valueRange: 10, pixels: 400, want: 2},
		{valueRange: 100, pixels: 400, want: 20},
		{valueRange: 1, pixels: 400, want: 0.2},
	}
	for _, tt := range tests {
		if got := niceValueStep(tt.valueRange, tt.pixels); got != tt.want {
			t.Errorf("niceValueStep(%f, %d) = %f, want %f", tt.valueRange, tt.pixels, got, tt.want)
		}
	}
}
