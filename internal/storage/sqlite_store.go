package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/physiolab/vitals/internal/features"
)

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a new database connection and initializes the schema
// using the Sqlite database
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateRun(ctx context.Context, subjectID, session string, windowSeconds float64, config any) (runID int64, err error) {
	var configData sql.NullString

	if config != nil {
		switch config.(type) {
		case string:
			configData.Valid = true
			configData.String = config.(string)

		case []byte:
			configData.Valid = true
			configData.String = string(config.([]byte))

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, subjectID, session, windowSeconds, configData)
	if err != nil {
		err = fmt.Errorf("inserting run: %w", err)
		return
	}

	runID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting run ID: %w", err)
	}
	return
}

func (s *SqliteStore) Run(ctx context.Context, id int64) (run *Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var r Run
	var config sql.NullString
	if err = stmt.QueryRowContext(ctx, id).Scan(&r.ID, &r.StartTime, &r.SubjectID, &r.Session, &r.WindowSeconds, &config); err != nil {
		err = fmt.Errorf("scanning run: %w", err)
		return
	}
	if config.Valid {
		r.Config = &config.String
	}

	return &r, nil
}

func (s *SqliteStore) Runs(ctx context.Context) (runs []*Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		err = fmt.Errorf("querying runs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var r Run
		var config sql.NullString
		if err = rows.Scan(&r.ID, &r.StartTime, &r.SubjectID, &r.Session, &r.WindowSeconds, &config); err != nil {
			err = fmt.Errorf("scanning run: %w", err)
			return
		}
		if config.Valid {
			r.Config = &config.String
		}
		runs = append(runs, &r)
	}
	return
}

func (s *SqliteStore) StoreFeatures(ctx context.Context, runID int64, rows []features.Row) (err error) {
	if len(rows) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	// One statement per chunk of rows keeps the parameter count below the
	// sqlite limit of 32766 bound variables.
	const valuesPerRecord = 6
	const maxRecordsPerInsert = 5000

	valuesPlaceholder := "(?, ?, ?, ?, ?, ?)"

	flush := func(values []interface{}, n int) error {
		var sb strings.Builder
		sb.WriteString(insertFeatureSQL)
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(valuesPlaceholder)
		}
		if _, err := tx.ExecContext(ctx, sb.String(), values...); err != nil {
			return fmt.Errorf("batch inserting feature rows: %w", err)
		}
		return nil
	}

	values := make([]interface{}, 0, maxRecordsPerInsert*valuesPerRecord)
	n := 0
	for _, row := range rows {
		for _, name := range sortedColumns(row) {
			values = append(values,
				runID,
				row.Timestamp,
				row.SubjectID,
				row.Session,
				name,
				toNullValue(row.Values[name]),
			)
			n++

			if n == maxRecordsPerInsert {
				if err = flush(values, n); err != nil {
					return err
				}
				values = values[:0]
				n = 0
			}
		}
	}
	if n > 0 {
		if err = flush(values, n); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// ReadFeatures creates a new FeatureReader that provides access to the
// derived feature rows of an extraction run. The reader implements
// iteration over large datasets and supports filtering options.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - runID: Unique identifier of the extraction run to read from
//   - opts: Optional configuration parameters for the reader (WithTimeRange,
//     WithStartTime, WithEndTime, WithColumns)
//
// The returned FeatureReader must be closed after use to release database
// resources. Each reader instance should only be used from a single
// goroutine.
//
// Returns error if reader creation fails or the run doesn't exist.
func (s *SqliteStore) ReadFeatures(ctx context.Context, runID int64, opts ...ReaderOption) (*FeatureReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newFeatureReader(ctx, db, runID, opts...)
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}
