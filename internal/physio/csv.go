package physio

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Timestamp layouts tried in order when parsing recording files.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Load reads a subject's recording from <baseDir>/<subjectID>.csv.
// A missing file is the only validated precondition: it is reported as an
// explicit not-found error carrying the attempted path. Malformed rows abort
// the load.
func Load(baseDir, subjectID string) (*Table, error) {
	path := filepath.Join(baseDir, subjectID+".csv")

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("recording file '%s' does not exist: %w", path, err)
		}
		return nil, fmt.Errorf("opening recording file '%s': %w", path, err)
	}
	defer f.Close()

	table, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading recording file '%s': %w", path, err)
	}
	return table, nil
}

// Read parses a recording from CSV. The header row names the columns;
// timestamp, subject_id and session are required, channel columns are
// optional and their absence is recorded on the table, not an error.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{"timestamp", "subject_id", "session"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column '%s'", required)
		}
	}

	table := &Table{}
	for _, ch := range Channels {
		if _, ok := cols[ch]; ok {
			table.SetChannel(ch)
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		line++

		var reading Reading
		if reading.Timestamp, err = parseTimestamp(record[cols["timestamp"]]); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		reading.SubjectID = strings.TrimSpace(record[cols["subject_id"]])
		reading.Session = strings.TrimSpace(record[cols["session"]])

		if i, ok := cols[ChannelEDA]; ok {
			if reading.EDA, err = parseValue(record[i]); err != nil {
				return nil, fmt.Errorf("row %d: eda: %w", line, err)
			}
		}
		if i, ok := cols[ChannelHeartRate]; ok {
			if reading.HeartRate, err = parseValue(record[i]); err != nil {
				return nil, fmt.Errorf("row %d: heart_rate: %w", line, err)
			}
		}
		if i, ok := cols[ChannelTemperature]; ok {
			if reading.Temperature, err = parseValue(record[i]); err != nil {
				return nil, fmt.Errorf("row %d: temperature: %w", line, err)
			}
		}

		table.Readings = append(table.Readings, reading)
	}

	return table, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}

	// Epoch seconds, possibly fractional
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(0, int64(secs*float64(time.Second))).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp '%s'", s)
}

// parseValue parses a channel value. An empty cell is a sensor gap and
// loads as NaN, not an error.
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
