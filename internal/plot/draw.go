package plot

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/golang/freetype"
	"golang.org/x/image/font"
)

// finiteRange returns the minimum and maximum of the finite values.
// Returns (+Inf, -Inf) when there are none.
func finiteRange(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// padRange widens a value range by 5% on each side, so that extreme points
// do not sit on the plot border. A degenerate range is widened around its
// single value.
func padRange(lo, hi float64) (float64, float64) {
	if lo == hi {
		pad := math.Abs(lo) * 0.05
		if pad == 0 {
			pad = 1
		}
		return lo - pad, hi + pad
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

// niceValueStep picks a 1/2/5 step so that labels are roughly
// pixelsPerLabel apart.
func niceValueStep(valueRange float64, pixels int) float64 {
	desiredSteps := float64(pixels) / pixelsPerLabel
	if desiredSteps < 2 {
		desiredSteps = 2
	}
	targetStep := valueRange / desiredSteps

	magnitude := math.Pow(10, math.Floor(math.Log10(targetStep)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * magnitude; step >= targetStep {
			return step
		}
	}
	return 10 * magnitude
}

func formatValue(v float64) string {
	av := math.Abs(v)
	switch {
	case av >= 10000 || (av < 0.01 && av > 0):
		return fmt.Sprintf("%.2g", v)
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 1:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// drawRect outlines a rectangle.
func drawRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x <= r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y, c)
	}
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X, y, c)
	}
}

// fillRect fills a rectangle.
func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

// drawLine draws a line segment using Bresenham's algorithm.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)

	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawSeries plots a value series as a polyline inside the plot area.
// NaN and infinite values break the line.
func (r *Renderer) drawSeries(img *image.RGBA, area image.Rectangle, values []float64, maxLen int, lo, hi float64, c color.Color) {
	toX := func(i int) int {
		if maxLen <= 1 {
			return area.Min.X
		}
		return area.Min.X + int(float64(i)/float64(maxLen-1)*float64(area.Dx()))
	}
	toY := func(v float64) int {
		return area.Max.Y - int((v-lo)/(hi-lo)*float64(area.Dy()))
	}

	prevOK := false
	var prevX, prevY int
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			prevOK = false
			continue
		}
		x, y := toX(i), toY(v)
		if prevOK {
			drawLine(img, prevX, prevY, x, y, c)
		} else {
			img.Set(x, y, c)
		}
		prevX, prevY = x, y
		prevOK = true
	}
}

// drawTitle centers the chart title in the top border.
func (r *Renderer) drawTitle(img *image.RGBA, title string) error {
	if title == "" {
		return nil
	}

	width := font.MeasureString(r.fontFace, title)
	x := (img.Bounds().Dx() - width.Round()) / 2

	metrics := r.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	y := (r.config.BorderConfig.Top+fontHeight)/2 - metrics.Descent.Round()

	if _, err := r.context.DrawString(title, freetype.Pt(x, y)); err != nil {
		return fmt.Errorf("drawing title: %w", err)
	}
	return nil
}

// drawValueScale draws the left axis tick marks and labels.
func (r *Renderer) drawValueScale(img *image.RGBA, area image.Rectangle, lo, hi float64) error {
	step := niceValueStep(hi-lo, area.Dy())
	start := math.Ceil(lo/step) * step

	metrics := r.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for v := start; v <= hi; v += step {
		y := area.Max.Y - int((v-lo)/(hi-lo)*float64(area.Dy()))

		for x := area.Min.X - tickMarkLength; x < area.Min.X; x++ {
			img.Set(x, y, color.Black)
		}

		label := formatValue(v)
		width := font.MeasureString(r.fontFace, label)
		textX := area.Min.X - tickMarkLength - width.Round() - 4
		textY := y + fontHeight/2 - metrics.Descent.Round()
		if _, err := r.context.DrawString(label, freetype.Pt(textX, textY)); err != nil {
			return fmt.Errorf("drawing value label: %w", err)
		}
	}
	return nil
}

// drawIndexScale draws the bottom axis as sample indices.
func (r *Renderer) drawIndexScale(img *image.RGBA, area image.Rectangle, n int) error {
	if n <= 1 {
		return nil
	}

	step := niceValueStep(float64(n-1), area.Dx())

	metrics := r.fontFace.Metrics()
	textY := area.Max.Y + tickMarkLength + (metrics.Ascent + metrics.Descent).Round()

	for v := 0.0; v <= float64(n-1); v += step {
		x := area.Min.X + int(v/float64(n-1)*float64(area.Dx()))

		for y := area.Max.Y; y < area.Max.Y+tickMarkLength; y++ {
			img.Set(x, y, color.Black)
		}

		label := fmt.Sprintf("%.0f", v)
		width := font.MeasureString(r.fontFace, label)
		if _, err := r.context.DrawString(label, freetype.Pt(x-width.Round()/2, textY)); err != nil {
			return fmt.Errorf("drawing index label: %w", err)
		}
	}
	return nil
}

// drawBinScale draws the bottom axis as value bin edges.
func (r *Renderer) drawBinScale(img *image.RGBA, area image.Rectangle, lo, hi float64) error {
	step := niceValueStep(hi-lo, area.Dx())
	start := math.Ceil(lo/step) * step

	metrics := r.fontFace.Metrics()
	textY := area.Max.Y + tickMarkLength + (metrics.Ascent + metrics.Descent).Round()

	for v := start; v <= hi; v += step {
		x := area.Min.X + int((v-lo)/(hi-lo)*float64(area.Dx()))

		for y := area.Max.Y; y < area.Max.Y+tickMarkLength; y++ {
			img.Set(x, y, color.Black)
		}

		label := formatValue(v)
		width := font.MeasureString(r.fontFace, label)
		if _, err := r.context.DrawString(label, freetype.Pt(x-width.Round()/2, textY)); err != nil {
			return fmt.Errorf("drawing bin label: %w", err)
		}
	}
	return nil
}

// drawLegend draws labeled color swatches in the top right of the plot area.
func (r *Renderer) drawLegend(img *image.RGBA, area image.Rectangle, series []Series) error {
	metrics := r.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	lineHeight := fontHeight + 4
	const swatch = 12

	y := area.Min.Y + 8
	for i, s := range series {
		if s.Label == "" {
			continue
		}

		c := s.Color
		if c == (color.RGBA{}) {
			c = Palette[i%len(Palette)]
		}

		width := font.MeasureString(r.fontFace, s.Label)
		textX := area.Max.X - 8 - width.Round()
		swatchX := textX - swatch - 6

		fillRect(img, image.Rect(swatchX, y, swatchX+swatch, y+swatch), c)

		textY := y + swatch/2 + fontHeight/2 - metrics.Descent.Round()
		if _, err := r.context.DrawString(s.Label, freetype.Pt(textX, textY)); err != nil {
			return fmt.Errorf("drawing legend label: %w", err)
		}

		y += lineHeight
	}
	return nil
}
