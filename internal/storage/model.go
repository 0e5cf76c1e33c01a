package storage

import (
	"time"
)

// Run represents a single feature extraction run over one subject's
// recording.
type Run struct {
	ID            int64     `json:"id"`
	StartTime     time.Time `json:"startTime"`
	SubjectID     string    `json:"subjectID"`
	Session       string    `json:"session,omitempty"`
	WindowSeconds float64   `json:"windowSeconds"`
	Config        *string   `json:"config,omitempty"` // extractor configuration in JSON format
}
