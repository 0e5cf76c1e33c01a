package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/physiolab/vitals/internal/physio"
	"github.com/physiolab/vitals/internal/plot"
	"github.com/physiolab/vitals/internal/spectral"
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

	if err = ctx.Err(); err != nil {
		return err
	}

	if config.Welch {
		if err = runWelch(series, config, logger); err != nil {
			return err
		}
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	if config.Wavelet {
		if err = runWavelet(series, config, logger); err != nil {
			return err
		}
	}

	return nil
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

// dropMissing removes NaN samples so that gaps in the recording do not
// poison the transforms.
func dropMissing(series []float64) []float64 {
	out := series[:0]
	for _, v := range series {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func runWelch(series []float64, config *Config, logger *slog.Logger) error {
	result, err := spectral.AnalyzeBands(series, config.SampleRate, config.WindowSeconds)
	if err != nil {
		return fmt.Errorf("analyzing frequency bands: %w", err)
	}

	logger.Info("frequency band powers",
		slog.Group("bands",
			slog.Float64(spectral.BandVLF, result.Bands.VLF),
			slog.Float64(spectral.BandLF, result.Bands.LF),
			slog.Float64(spectral.BandHF, result.Bands.HF),
			slog.Float64(spectral.BandLFHF, result.Bands.Ratio),
		))

	path := filepath.Join(config.OutputDir, spectral.FrequencyDumpName)
	if err = result.WriteArchive(path); err != nil {
		return fmt.Errorf("writing frequency archive: %w", err)
	}

	logger.Info("wrote frequency archive", slog.String("destination", path))

	if config.PlotFile != "" {
		if err = renderPSD(result, config.PlotFile); err != nil {
			return fmt.Errorf("rendering PSD plot: %w", err)
		}
		logger.Info("wrote PSD plot", slog.String("destination", config.PlotFile))
	}
	return nil
}

// renderPSD draws the block-averaged spectrum against frequency bin index.
func renderPSD(result *spectral.FrequencyResult, path string) error {
	renderer, err := plot.New(plot.Config{})
	if err != nil {
		return err
	}
	defer renderer.Close()

	img, err := renderer.Line(&plot.Chart{
		Title:  "averaged Welch PSD",
		Series: []plot.Series{{Label: "power density", Values: result.Power}},
	})
	if err != nil {
		return err
	}
	return plot.SavePNG(path, img)
}

func runWavelet(series []float64, config *Config, logger *slog.Logger) error {
	result, err := spectral.AnalyzeCWT(series, config.SampleRate, config.WindowSeconds)
	if err != nil {
		return fmt.Errorf("analyzing wavelet transform: %w", err)
	}

	path := filepath.Join(config.OutputDir, spectral.TimeFrequencyDumpName)
	if err = result.WriteArchive(path); err != nil {
		return fmt.Errorf("writing time-frequency archive: %w", err)
	}

	logger.Info("wrote time-frequency archive",
		slog.String("destination", path),
		slog.Int("scales", len(result.Scales)),
		slog.Int("blockLength", len(result.Energy[0])))
	return nil
}
