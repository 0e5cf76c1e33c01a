package storage

import (
	"database/sql"
	"math"
	"sort"

	"github.com/physiolab/vitals/internal/features"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// toNullValue maps a feature value to its storage form: NaN sentinels
// become SQL NULL.
func toNullValue(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// fromNullValue maps a stored value back: NULL becomes the NaN sentinel.
func fromNullValue(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// sortedColumns returns the column names of a feature row in a stable order,
// so that batch inserts and reads are deterministic.
func sortedColumns(row features.Row) []string {
	names := make([]string, 0, len(row.Values))
	for name := range row.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
