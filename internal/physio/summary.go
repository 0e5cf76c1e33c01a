package physio

import (
	"log/slog"

	"github.com/montanaflynn/stats"
)

// ChannelSummary holds descriptive statistics of one channel over a whole
// recording. Used for run logging only, not for feature output.
type ChannelSummary struct {
	Channel string
	Count   int
	Mean    float64
	Std     float64
	Min     float64
	Max     float64
}

// Summarize computes per-channel descriptive statistics for the channels
// present in the table.
func Summarize(t *Table) ([]ChannelSummary, error) {
	var summaries []ChannelSummary
	for _, ch := range t.PresentChannels() {
		values, err := t.Column(ch)
		if err != nil {
			return nil, err
		}

		s := ChannelSummary{Channel: ch, Count: len(values)}
		if len(values) > 0 {
			// stats errors only on empty input, which is guarded above
			s.Mean, _ = stats.Mean(values)
			s.Std, _ = stats.StandardDeviationSample(values)
			s.Min, _ = stats.Min(values)
			s.Max, _ = stats.Max(values)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// LogValue renders the summary as a structured log group.
func (s ChannelSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
	)
}
