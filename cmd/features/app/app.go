package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/physiolab/vitals/internal/features"
	"github.com/physiolab/vitals/internal/physio"
	"github.com/physiolab/vitals/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	table, err := physio.Load(config.Input.DataDirectory, config.Input.Subject)
	if err != nil {
		return err
	}

	logger.Info("loaded recording",
		slog.String("subject", config.Input.Subject),
		slog.String("samples", humanize.Comma(int64(table.Len()))),
		slog.Any("channels", table.PresentChannels()))

	summaries, err := physio.Summarize(table)
	if err != nil {
		return fmt.Errorf("summarizing recording: %w", err)
	}
	for _, s := range summaries {
		logger.Info("channel summary", slog.Any("channel", s))
	}

	store := storage.NewSqliteStore(config.Storage.DBPath)
	defer store.Close()

	if config.Features.Rolling {
		if err = runExtractor(ctx, store, logger, "rolling", config, func() ([]features.Row, error) {
			return features.RollingStats(table, config.Features.WindowSeconds)
		}); err != nil {
			return err
		}
	}

	if config.Features.TimeDomain {
		if err = runExtractor(ctx, store, logger, "time_domain", config, func() ([]features.Row, error) {
			return features.TimeDomain(table, config.Features.WindowSeconds)
		}); err != nil {
			return err
		}
	}

	return nil
}

// runExtractor computes one feature set and persists it under its own run.
func runExtractor(ctx context.Context, store storage.Store, logger *slog.Logger, name string, config *Config, extract func() ([]features.Row, error)) error {
	start := time.Now()

	rows, err := extract()
	if err != nil {
		return fmt.Errorf("extracting %s features: %w", name, err)
	}

	runConfig := map[string]any{
		"extractor":     name,
		"windowSeconds": config.Features.WindowSeconds,
	}
	runID, err := store.CreateRun(ctx, config.Input.Subject, "", config.Features.WindowSeconds, runConfig)
	if err != nil {
		return fmt.Errorf("creating %s run: %w", name, err)
	}

	if err = store.StoreFeatures(ctx, runID, rows); err != nil {
		return fmt.Errorf("storing %s features: %w", name, err)
	}

	logger.Info("stored features",
		slog.String("extractor", name),
		slog.Int64("runID", runID),
		slog.String("rows", humanize.Comma(int64(len(rows)))),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}
