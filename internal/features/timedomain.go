package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/physiolab/vitals/internal/physio"
)

// TimeDomain computes sample-count window statistics plus heart-rate
// variability measures. The window size in samples is windowSeconds times the
// nominal 4 Hz rate. Channels absent from the table are skipped silently.
//
// Rows whose window is not yet full, and rows carrying a NaN in any produced
// column, are dropped from the output (a full-row drop, not per-column).
func TimeDomain(table *physio.Table, windowSeconds float64) ([]Row, error) {
	if windowSeconds <= 0 {
		windowSeconds = DefaultWindowSeconds
	}
	w := int(windowSeconds * NominalSampleRate)
	if w < 1 {
		w = 1
	}

	n := table.Len()
	channels := table.PresentChannels()

	columns := make(map[string][]float64, len(channels))
	for _, ch := range channels {
		col, err := table.Column(ch)
		if err != nil {
			return nil, err
		}
		columns[ch] = col
	}

	var hrvCols *hrvColumns
	if table.HasChannel(physio.ChannelHeartRate) {
		hrvCols = rollingHRV(columns[physio.ChannelHeartRate], w)
	}

	var rows []Row
	for i := w - 1; i < n; i++ {
		r := table.Readings[i]
		row := Row{
			Timestamp: r.Timestamp,
			SubjectID: r.SubjectID,
			Session:   r.Session,
			Values:    make(map[string]float64, 4*len(channels)+3),
		}

		for _, ch := range channels {
			win := columns[ch][i-w+1 : i+1]
			row.Values[ColumnName(ch, StatMean)] = stat.Mean(win, nil)
			row.Values[ColumnName(ch, StatStd)] = sampleStd(win)
			row.Values[ColumnName(ch, StatMin)] = floats.Min(win)
			row.Values[ColumnName(ch, StatMax)] = floats.Max(win)
		}

		if hrvCols != nil {
			row.Values[ColumnName(physio.ChannelHeartRate, StatRMSSD)] = hrvCols.rmssd[i]
			row.Values[ColumnName(physio.ChannelHeartRate, StatSDNN)] = hrvCols.sdnn[i]
			row.Values[ColumnName(physio.ChannelHeartRate, StatPNN50)] = hrvCols.pnn50[i]
		}

		if rowHasNaN(row.Values) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rowHasNaN(values map[string]float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
