package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_feature_rows_run_time ON feature_rows (run_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_feature_rows_column ON feature_rows (run_id, column_name);
`

const (
	insertRunSQL = `
INSERT INTO runs (start_time,
                  subject_id,
                  session,
                  window_seconds,
                  config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?, ?)`

	selectRunSQL = `
SELECT id,
       start_time,
       subject_id,
       session,
       window_seconds,
       config
FROM runs
WHERE id = ?`

	selectRunsSQL = `
SELECT id,
       start_time,
       subject_id,
       session,
       window_seconds,
       config
FROM runs
ORDER BY start_time`

	insertFeatureSQL = `
INSERT INTO feature_rows (run_id,
                          timestamp,
                          subject_id,
                          session,
                          column_name,
                          value)
VALUES `
)
