package app

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/physiolab/vitals/internal/arima"
	"github.com/physiolab/vitals/internal/physio"
	"github.com/physiolab/vitals/internal/plot"
)

const (
	fitPlotName      = "fitted.png"
	residualPlotName = "residuals.png"
	forecastPlotName = "forecast.png"

	histogramBins = 30
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	table, err := physio.Load(config.DataDirectory, config.Subject)
	if err != nil {
		return err
	}

	series, err := selectSeries(table, config)
	if err != nil {
		return err
	}
	series = dropMissing(series)

	logger.Info("selected series",
		slog.String("subject", config.Subject),
		slog.String("channel", config.Channel),
		slog.String("samples", humanize.Comma(int64(len(series)))))

	checkStationarity(series, logger)

	if err = ctx.Err(); err != nil {
		return err
	}

	model := arima.New(config.Order)
	if err = model.Fit(series); err != nil {
		return fmt.Errorf("fitting ARIMA%s: %w", config.Order, err)
	}

	logger.Info("fitted model",
		slog.Group("model",
			slog.String("order", config.Order.String()),
			slog.Any("ar", model.AR),
			slog.Any("ma", model.MA),
			slog.Float64("variance", model.Variance),
			slog.Float64("aic", model.AIC),
			slog.Float64("bic", model.BIC),
		))

	forecast, err := model.Forecast(config.ForecastSteps)
	if err != nil {
		return fmt.Errorf("forecasting: %w", err)
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	return renderDiagnostics(series, model, forecast, config, logger)
}

// checkStationarity runs the augmented Dickey-Fuller test and logs an
// advisory warning when the unit-root hypothesis cannot be rejected. The
// fit proceeds either way.
func checkStationarity(series []float64, logger *slog.Logger) {
	result, err := arima.ADF(series, 0)
	if err != nil {
		logger.Warn("stationarity test skipped", slog.String("reason", err.Error()))
		return
	}

	if result.Stationary {
		logger.Info("series is stationary",
			slog.Float64("statistic", result.Statistic),
			slog.Float64("pValue", result.PValue))
		return
	}

	logger.Warn("series may be non-stationary, consider a higher differencing order",
		slog.Float64("statistic", result.Statistic),
		slog.Float64("pValue", result.PValue),
		slog.Int("lags", result.Lags))
}

// selectSeries extracts the configured channel, optionally restricted to a
// single session.
func selectSeries(table *physio.Table, config *Config) ([]float64, error) {
	if config.Session == "" {
		return table.Column(config.Channel)
	}

	for _, g := range table.GroupBySession() {
		if g.Session == config.Session {
			return g.Column(config.Channel)
		}
	}
	return nil, fmt.Errorf("session '%s' not found in recording", config.Session)
}

// dropMissing removes NaN samples before fitting.
func dropMissing(series []float64) []float64 {
	out := series[:0]
	for _, v := range series {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func renderDiagnostics(series []float64, model *arima.Model, forecast []float64, config *Config, logger *slog.Logger) error {
	renderer, err := plot.New(plot.Config{})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	defer renderer.Close()

	plots := []struct {
		name   string
		render func() (*image.RGBA, error)
	}{
		{fitPlotName, func() (*image.RGBA, error) {
			return renderer.Line(&plot.Chart{
				Title: fmt.Sprintf("ARIMA%s fit: %s", config.Order, config.Channel),
				Series: []plot.Series{
					{Label: "observed", Values: series},
					{Label: "fitted", Values: model.FittedOriginal()},
				},
			})
		}},
		{residualPlotName, func() (*image.RGBA, error) {
			return renderResiduals(renderer, model.Residuals())
		}},
		{forecastPlotName, func() (*image.RGBA, error) {
			return renderer.Line(&plot.Chart{
				Title: fmt.Sprintf("%d-step forecast: %s", config.ForecastSteps, config.Channel),
				Series: []plot.Series{
					{Label: "observed", Values: series},
					{Label: "forecast", Values: appendForecast(series, forecast)},
				},
			})
		}},
	}

	for _, p := range plots {
		img, err := p.render()
		if err != nil {
			return fmt.Errorf("rendering %s: %w", p.name, err)
		}

		path := filepath.Join(config.OutputDir, p.name)
		if err = plot.SavePNG(path, img); err != nil {
			return fmt.Errorf("saving %s: %w", p.name, err)
		}
		logger.Info("wrote diagnostic plot", slog.String("destination", path))
	}

	return nil
}

// renderResiduals stacks the residual trace over the residual histogram in
// a single image.
func renderResiduals(renderer *plot.Renderer, residuals []float64) (*image.RGBA, error) {
	trace, err := renderer.Line(&plot.Chart{
		Title:  "residuals",
		Series: []plot.Series{{Label: "residual", Values: residuals}},
	})
	if err != nil {
		return nil, err
	}

	hist, err := renderer.Histogram("residual distribution", residuals, histogramBins)
	if err != nil {
		return nil, err
	}

	tb, hb := trace.Bounds(), hist.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, tb.Dx(), tb.Dy()+hb.Dy()))
	draw.Draw(img, tb, trace, tb.Min, draw.Src)
	draw.Draw(img, image.Rect(0, tb.Dy(), hb.Dx(), tb.Dy()+hb.Dy()), hist, hb.Min, draw.Src)

	return img, nil
}

// appendForecast places the forecast after the observed samples on the
// shared index axis. Leading NaN values keep the line from starting inside
// the observed range.
func appendForecast(series, forecast []float64) []float64 {
	out := make([]float64, 0, len(series)+len(forecast))
	for range series {
		out = append(out, math.NaN())
	}
	return append(out, forecast...)
}
