// Package plot renders diagnostic charts as PNG images. It supports line
// charts with multiple overlaid series and value histograms, which is all
// the model diagnostics need.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi            = 96.0
	fontSize       = 12.0
	tickMarkLength = 5
	pixelsPerLabel = 80.0

	defaultWidth  = 960
	defaultHeight = 480

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 50
	defaultRightBorder  = 40
)

// Palette used for overlaid series, in order.
var Palette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255}, // blue
	{R: 255, G: 127, B: 14, A: 255}, // orange
	{R: 44, G: 160, B: 44, A: 255},  // green
	{R: 214, G: 39, B: 40, A: 255},  // red
}

// BorderConfig defines the sizes of white space around the plot area
type BorderConfig struct {
	Top    int // Space for the title
	Left   int // Space for the value scale
	Bottom int // Space for the sample scale
	Right  int // Right padding
}

// Config holds all configuration options for chart rendering
type Config struct {
	Width    int     // Image width in pixels
	Height   int     // Image height in pixels
	FontSize float64 // Font size in points

	BorderConfig BorderConfig
}

// Series is a single named line on a chart. Values are plotted against
// their index; NaN values break the line.
type Series struct {
	Label  string
	Values []float64
	Color  color.RGBA
}

// Chart describes a line chart with one or more overlaid series.
type Chart struct {
	Title  string
	Series []Series
}

// Renderer draws charts into RGBA images using a shared font context.
type Renderer struct {
	config   Config
	context  *freetype.Context
	fontFace font.Face
}

// New creates a chart renderer with the given configuration. Zero values
// fall back to defaults.
func New(config Config) (*Renderer, error) {
	if config.Width == 0 {
		config.Width = defaultWidth
	}
	if config.Height == 0 {
		config.Height = defaultHeight
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	parsedFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &Renderer{
		config:  config,
		context: ctx,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

// Close releases the font resources held by the renderer.
func (r *Renderer) Close() error {
	if r.fontFace != nil {
		return r.fontFace.Close()
	}
	return nil
}

// plotArea returns the rectangle the data is drawn into.
func (r *Renderer) plotArea() image.Rectangle {
	return image.Rect(
		r.config.BorderConfig.Left,
		r.config.BorderConfig.Top,
		r.config.Width-r.config.BorderConfig.Right,
		r.config.Height-r.config.BorderConfig.Bottom,
	)
}

// newCanvas creates a white image with the plot area outlined.
func (r *Renderer) newCanvas() (*image.RGBA, image.Rectangle) {
	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := r.plotArea()
	drawRect(img, area, color.Black)

	r.context.SetClip(img.Bounds())
	r.context.SetDst(img)

	return img, area
}

// Line renders a line chart with all series overlaid on shared axes.
func (r *Renderer) Line(chart *Chart) (*image.RGBA, error) {
	if len(chart.Series) == 0 {
		return nil, fmt.Errorf("chart %q has no series", chart.Title)
	}

	maxLen := 0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range chart.Series {
		if len(s.Values) > maxLen {
			maxLen = len(s.Values)
		}
		sLo, sHi := finiteRange(s.Values)
		lo = math.Min(lo, sLo)
		hi = math.Max(hi, sHi)
	}
	if maxLen == 0 || math.IsInf(lo, 1) {
		return nil, fmt.Errorf("chart %q has no finite values", chart.Title)
	}
	lo, hi = padRange(lo, hi)

	img, area := r.newCanvas()

	if err := r.drawTitle(img, chart.Title); err != nil {
		return nil, err
	}
	if err := r.drawValueScale(img, area, lo, hi); err != nil {
		return nil, err
	}
	if err := r.drawIndexScale(img, area, maxLen); err != nil {
		return nil, err
	}

	for i, s := range chart.Series {
		c := s.Color
		if c == (color.RGBA{}) {
			c = Palette[i%len(Palette)]
		}
		r.drawSeries(img, area, s.Values, maxLen, lo, hi, c)
	}

	if err := r.drawLegend(img, area, chart.Series); err != nil {
		return nil, err
	}

	return img, nil
}

// Histogram renders a histogram of the finite values using the given
// number of equal-width bins.
func (r *Renderer) Histogram(title string, values []float64, bins int) (*image.RGBA, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("histogram %q: bins must be positive, got %d", title, bins)
	}

	lo, hi := finiteRange(values)
	if math.IsInf(lo, 1) {
		return nil, fmt.Errorf("histogram %q has no finite values", title)
	}
	if lo == hi {
		lo, hi = padRange(lo, hi)
	}

	counts := make([]int, bins)
	maxCount := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		bin := int((v - lo) / (hi - lo) * float64(bins))
		if bin == bins { // top edge belongs to the last bin
			bin = bins - 1
		}
		counts[bin]++
		if counts[bin] > maxCount {
			maxCount = counts[bin]
		}
	}

	img, area := r.newCanvas()

	if err := r.drawTitle(img, title); err != nil {
		return nil, err
	}
	if err := r.drawValueScale(img, area, 0, float64(maxCount)); err != nil {
		return nil, err
	}
	if err := r.drawBinScale(img, area, lo, hi); err != nil {
		return nil, err
	}

	barWidth := float64(area.Dx()) / float64(bins)
	for i, n := range counts {
		if n == 0 {
			continue
		}
		x0 := area.Min.X + int(float64(i)*barWidth) + 1
		x1 := area.Min.X + int(float64(i+1)*barWidth) - 1
		if x1 < x0 {
			x1 = x0
		}
		h := int(float64(n) / float64(maxCount) * float64(area.Dy()))
		bar := image.Rect(x0, area.Max.Y-h, x1, area.Max.Y)
		fillRect(img, bar, Palette[0])
	}

	return img, nil
}

// SavePNG encodes the image to a PNG file, creating the target directory
// if it does not exist.
func SavePNG(path string, img image.Image) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image file: %w", err)
	}
	defer closeWithError(f, &err)

	if err = png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
