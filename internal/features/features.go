// Package features computes rolling-window statistical features and
// heart-rate-variability measures over physiological recordings.
package features

import (
	"time"
)

// NominalSampleRate is the fixed acquisition rate of the wearable recordings,
// in samples per second. It is used only to convert a nominal window size in
// seconds into a sample-count window.
const NominalSampleRate = 4.0

// DefaultWindowSeconds is the default trailing window length.
const DefaultWindowSeconds = 60.0

// Statistic names used to build feature column names.
const (
	StatMean     = "mean"
	StatStd      = "std"
	StatMin      = "min"
	StatMax      = "max"
	StatAutocorr = "autocorr"

	StatRMSSD = "rmssd"
	StatSDNN  = "sdnn"
	StatPNN50 = "pnn50"
)

// Row is a derived feature record keyed by timestamp. Values maps a
// "<channel>_<statistic>" column name to its scalar; undefined statistics are
// carried as NaN sentinels, never as errors.
type Row struct {
	Timestamp time.Time
	SubjectID string
	Session   string
	Values    map[string]float64
}

// ColumnName builds the canonical "<channel>_<statistic>" feature column name.
func ColumnName(channel, stat string) string {
	return channel + "_" + stat
}
