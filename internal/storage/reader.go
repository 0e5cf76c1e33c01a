package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/physiolab/vitals/internal/features"
)

// ErrNoData indicates either that no feature data exists for the given
// parameters, or that all available data has been read from the reader.
var ErrNoData = fmt.Errorf("no data available")

// ReaderOption configures a FeatureReader with specific filtering criteria.
type ReaderOption func(*FeatureReader)

// WithStartTime sets the start time filter for the feature reader.
// Feature rows with timestamps before this time will be excluded.
func WithStartTime(t time.Time) ReaderOption {
	return func(r *FeatureReader) {
		r.startTime = &t
	}
}

// WithEndTime sets the end time filter for the feature reader.
// Feature rows with timestamps after this time will be excluded.
func WithEndTime(t time.Time) ReaderOption {
	return func(r *FeatureReader) {
		r.endTime = &t
	}
}

// WithTimeRange sets both start and end time filters.
// This is a convenience function equivalent to applying both WithStartTime
// and WithEndTime.
func WithTimeRange(startTime, endTime time.Time) ReaderOption {
	return func(r *FeatureReader) {
		r.startTime = &startTime
		r.endTime = &endTime
	}
}

// WithColumns restricts the reader to the given feature columns.
// Rows are still returned per timestamp, with only the selected columns
// populated.
func WithColumns(names ...string) ReaderOption {
	return func(r *FeatureReader) {
		r.columns = names
	}
}

// newFeatureReader creates a new FeatureReader instance for reading feature
// rows from a database, applying optional filters.
func newFeatureReader(ctx context.Context, db *sql.DB, runID int64, opts ...ReaderOption) (*FeatureReader, error) {
	fr := &FeatureReader{
		db:    db,
		runID: runID,
	}
	for _, opt := range opts {
		opt(fr)
	}
	if err := fr.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return fr, nil
}

// FeatureReader provides an iterator-based interface for reading derived
// feature rows of an extraction run, with optional time and column
// filtering. Long-format records sharing a timestamp are reassembled into
// a single features.Row per iteration step.
type FeatureReader struct {
	db *sql.DB

	runID int64
	run   *Run

	startTime *time.Time // Optional start of time range filter
	endTime   *time.Time // Optional end of time range filter
	columns   []string   // Optional column name filter

	currentRow *features.Row
	nextRecord featureRecord // First record of next row
	nextExists bool
	rows       *sql.Rows
	err        error
}

type featureRecord struct {
	timestamp  time.Time
	subjectID  string
	session    string
	columnName string
	value      sql.NullFloat64
}

func (fr *FeatureReader) init(ctx context.Context) error {
	if fr.db == nil {
		return errors.New("database connection required")
	}
	if fr.runID <= 0 {
		return errors.New("run ID required")
	}
	if fr.startTime != nil && fr.endTime != nil && fr.startTime.After(*fr.endTime) {
		return fmt.Errorf("start time %s is after end time %s", fr.startTime, fr.endTime)
	}

	if err := fr.loadRun(ctx); err != nil {
		return fmt.Errorf("loading run: %w", err)
	}
	if err := fr.initQuery(ctx); err != nil {
		return fmt.Errorf("initializing query: %w", err)
	}
	return nil
}

func (fr *FeatureReader) loadRun(ctx context.Context) (err error) {
	stmt, err := fr.db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var r Run
	var config sql.NullString
	if err = stmt.QueryRowContext(ctx, fr.runID).Scan(&r.ID, &r.StartTime, &r.SubjectID, &r.Session, &r.WindowSeconds, &config); err != nil {
		return fmt.Errorf("querying run: %w", err)
	}
	if config.Valid {
		r.Config = &config.String
	}

	fr.run = &r
	return
}

func (fr *FeatureReader) initQuery(ctx context.Context) (err error) {
	var sb strings.Builder
	sb.WriteString(`
SELECT timestamp,
       subject_id,
       session,
       column_name,
       value
FROM feature_rows
WHERE run_id = ?`)

	args := []interface{}{fr.runID}

	if fr.startTime != nil {
		sb.WriteString(" AND timestamp >= ?")
		args = append(args, *fr.startTime)
	}
	if fr.endTime != nil {
		sb.WriteString(" AND timestamp <= ?")
		args = append(args, *fr.endTime)
	}
	if len(fr.columns) > 0 {
		sb.WriteString(" AND column_name IN (?")
		sb.WriteString(strings.Repeat(", ?", len(fr.columns)-1))
		sb.WriteString(")")
		for _, name := range fr.columns {
			args = append(args, name)
		}
	}

	sb.WriteString(" ORDER BY timestamp, session, column_name")

	stmt, err := fr.db.PrepareContext(ctx, sb.String())
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if fr.rows, err = stmt.QueryContext(ctx, args...); err != nil {
		return err
	}
	return nil
}

func (fr *FeatureReader) scanRecord() (featureRecord, error) {
	var rec featureRecord
	if err := fr.rows.Scan(&rec.timestamp, &rec.subjectID, &rec.session, &rec.columnName, &rec.value); err != nil {
		return featureRecord{}, fmt.Errorf("scanning feature record: %w", err)
	}
	return rec, nil
}

func newRow(rec featureRecord) *features.Row {
	row := &features.Row{
		Timestamp: rec.timestamp,
		SubjectID: rec.subjectID,
		Session:   rec.session,
		Values:    make(map[string]float64),
	}
	row.Values[rec.columnName] = fromNullValue(rec.value)
	return row
}

// Run returns metadata about the extraction run this reader is accessing.
func (fr *FeatureReader) Run() *Run {
	return fr.run
}

// Next advances the iterator and returns true if there is another feature
// row to read, false when the iteration is complete or if an error occurred.
func (fr *FeatureReader) Next(ctx context.Context) bool {
	if fr.err != nil || fr.rows == nil {
		return false
	}

	if fr.nextExists {
		fr.currentRow = newRow(fr.nextRecord)
		fr.nextExists = false
	} else {
		fr.currentRow = nil
	}

	for {
		select {
		case <-ctx.Done():
			fr.err = ctx.Err()
			return false
		default:
		}

		if !fr.rows.Next() {
			if fr.currentRow != nil {
				fr.err = ErrNoData
				return true
			}
			return false
		}

		rec, err := fr.scanRecord()
		if err != nil {
			fr.err = err
			return false
		}

		if fr.currentRow == nil {
			fr.currentRow = newRow(rec)
			continue
		}

		// Timestamp or session changed, current row is complete
		if !rec.timestamp.Equal(fr.currentRow.Timestamp) || rec.session != fr.currentRow.Session {
			fr.nextRecord = rec
			fr.nextExists = true
			return true
		}

		fr.currentRow.Values[rec.columnName] = fromNullValue(rec.value)
	}
}

// Current returns the current feature row in the iteration.
// If called after Next() returns false, the behavior is undefined.
func (fr *FeatureReader) Current() *features.Row {
	return fr.currentRow
}

// Error returns any error that occurred during iteration.
// If Next() returns false, Error() should be checked to distinguish between
// end of data and an error condition.
func (fr *FeatureReader) Error() error {
	if fr.err != nil && !errors.Is(fr.err, ErrNoData) {
		return fr.err
	}
	if fr.rows != nil {
		return fr.rows.Err()
	}
	return nil
}

// Close releases any resources associated with the reader.
// After Close is called, the reader should not be used.
func (fr *FeatureReader) Close() error {
	if fr.rows != nil {
		err := fr.rows.Close()
		fr.currentRow = nil
		fr.nextExists = false
		fr.rows = nil
		return err
	}
	return nil
}
