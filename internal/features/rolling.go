package features

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/physiolab/vitals/internal/physio"
)

// RollingStats computes trailing time-window statistics for every reading,
// partitioned by (subject, session). For each row the window covers all rows
// of the same group whose timestamp t satisfies row.Timestamp-window < t <=
// row.Timestamp. Output columns are mean, std, min, max and lag-1
// autocorrelation per channel; statistics that are undefined over the window
// (std over one sample, autocorrelation over fewer than two or over a
// zero-variance window) are NaN.
//
// All three standard channels are assumed present; this variant does not
// check column presence.
func RollingStats(table *physio.Table, windowSeconds float64) ([]Row, error) {
	if windowSeconds <= 0 {
		windowSeconds = DefaultWindowSeconds
	}
	window := time.Duration(windowSeconds * float64(time.Second))

	var rows []Row
	for _, group := range table.GroupBySession() {
		columns := make(map[string][]float64, len(physio.Channels))
		for _, ch := range physio.Channels {
			col, err := group.Column(ch)
			if err != nil {
				return nil, err
			}
			columns[ch] = col
		}

		start := 0
		for i, r := range group.Readings {
			// Trailing window is left-open: (t-window, t]
			cutoff := r.Timestamp.Add(-window)
			for !group.Readings[start].Timestamp.After(cutoff) {
				start++
			}

			row := Row{
				Timestamp: r.Timestamp,
				SubjectID: group.SubjectID,
				Session:   group.Session,
				Values:    make(map[string]float64, 5*len(physio.Channels)),
			}
			for _, ch := range physio.Channels {
				windowStats(row.Values, ch, columns[ch][start:i+1])
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// windowStats fills mean/std/min/max/autocorr columns for one channel window.
func windowStats(dst map[string]float64, channel string, win []float64) {
	if len(win) == 0 {
		for _, s := range []string{StatMean, StatStd, StatMin, StatMax, StatAutocorr} {
			dst[ColumnName(channel, s)] = math.NaN()
		}
		return
	}

	dst[ColumnName(channel, StatMean)] = stat.Mean(win, nil)
	dst[ColumnName(channel, StatStd)] = sampleStd(win)
	dst[ColumnName(channel, StatMin)] = floats.Min(win)
	dst[ColumnName(channel, StatMax)] = floats.Max(win)
	dst[ColumnName(channel, StatAutocorr)] = lag1Autocorr(win)
}

// sampleStd is the n-1 denominator standard deviation; NaN for a single
// sample.
func sampleStd(win []float64) float64 {
	if len(win) < 2 {
		return math.NaN()
	}
	return stat.StdDev(win, nil)
}

// lag1Autocorr is the Pearson correlation of the window with itself shifted
// by one sample. NaN for fewer than two samples or a zero-variance window.
func lag1Autocorr(win []float64) float64 {
	if len(win) < 2 {
		return math.NaN()
	}
	return stat.Correlation(win[1:], win[:len(win)-1], nil)
}
