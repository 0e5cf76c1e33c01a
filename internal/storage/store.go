package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/physiolab/vitals/internal/features"
)

// Store provides an interface for persisting feature extraction results.
// It handles analysis runs and their derived feature rows. All operations
// that write to the database should be considered atomic.
type Store interface {
	// CreateRun registers a new feature extraction run and returns its
	// unique identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - subjectID: Subject whose recording was analyzed
	//   - session: Session label, empty when the run spans all sessions
	//   - windowSeconds: Trailing window length the extractor used
	//   - config: Optional extractor configuration. Can be string, []byte,
	//     or a JSON-serializable object
	CreateRun(ctx context.Context, subjectID, session string, windowSeconds float64, config any) (runID int64, err error)

	// Run retrieves a specific extraction run by its ID.
	Run(ctx context.Context, id int64) (run *Run, err error)

	// Runs returns all extraction runs stored in the database, ordered by
	// start time ascending.
	Runs(ctx context.Context) (runs []*Run, err error)

	// StoreFeatures saves derived feature rows for a run in a single
	// transaction. NaN sentinel values are stored as SQL NULL and come back
	// as NaN when read.
	StoreFeatures(ctx context.Context, runID int64, rows []features.Row) error

	// ReadFeatures creates an iterator over the feature rows of a run.
	// The returned reader must be closed after use.
	ReadFeatures(ctx context.Context, runID int64, opts ...ReaderOption) (*FeatureReader, error)

	// Close releases all database connections and resources. It is safe to
	// call Close multiple times.
	Close() error
}
