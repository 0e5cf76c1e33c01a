package physio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleCSV = `timestamp,eda,heart_rate,temperature,subject_id,session
2024-03-01T10:00:00Z,0.41,116,33.1,S01,baseline
2024-03-01T10:00:00.25Z,0.42,107.625,33.1,S01,baseline
2024-03-01T10:00:00.5Z,0.40,99.25,33.2,S01,baseline
2024-03-01T10:00:00.75Z,0.44,90.875,33.2,S01,stress
`

func TestRead(t *testing.T) {
	table, err := Read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if table.Len() != 4 {
		t.Fatalf("Expected 4 readings, got %d", table.Len())
	}

	for _, ch := range Channels {
		if !table.HasChannel(ch) {
			t.Errorf("Expected channel %s to be present", ch)
		}
	}

	first := table.Readings[0]
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Errorf("Expected timestamp %v, got %v", want, first.Timestamp)
	}
	if first.HeartRate != 116 {
		t.Errorf("Expected heart rate 116, got %v", first.HeartRate)
	}
	if first.SubjectID != "S01" || first.Session != "baseline" {
		t.Errorf("Unexpected subject/session: %s/%s", first.SubjectID, first.Session)
	}
}

func TestReadMissingChannel(t *testing.T) {
	csv := `timestamp,heart_rate,subject_id,session
2024-03-01T10:00:00Z,116,S01,baseline
`
	table, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if table.HasChannel(ChannelEDA) {
		t.Error("EDA should be absent")
	}
	if !table.HasChannel(ChannelHeartRate) {
		t.Error("heart_rate should be present")
	}
	if got := table.PresentChannels(); len(got) != 1 || got[0] != ChannelHeartRate {
		t.Errorf("Unexpected present channels: %v", got)
	}
}

func TestReadMissingRequiredColumn(t *testing.T) {
	csv := "timestamp,heart_rate\n2024-03-01T10:00:00Z,116\n"
	if _, err := Read(strings.NewReader(csv)); err == nil {
		t.Fatal("Expected error for missing subject_id column")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir, "nope")
	if err == nil {
		t.Fatal("Expected not-found error")
	}
	if !strings.Contains(err.Error(), filepath.Join(dir, "nope.csv")) {
		t.Errorf("Error should carry the attempted path, got: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "S01.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("Writing fixture: %v", err)
	}

	table, err := Load(dir, "S01")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Len() != 4 {
		t.Errorf("Expected 4 readings, got %d", table.Len())
	}
}

func TestGroupBySession(t *testing.T) {
	table, err := Read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	groups := table.GroupBySession()
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if groups[0].Session != "baseline" || len(groups[0].Readings) != 3 {
		t.Errorf("Unexpected first group: %s with %d readings", groups[0].Session, len(groups[0].Readings))
	}
	if groups[1].Session != "stress" || len(groups[1].Readings) != 1 {
		t.Errorf("Unexpected second group: %s with %d readings", groups[1].Session, len(groups[1].Readings))
	}
}

func TestSummarize(t *testing.T) {
	table, err := Read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	summaries, err := Summarize(table)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("Expected 3 summaries, got %d", len(summaries))
	}

	for _, s := range summaries {
		if s.Channel != ChannelHeartRate {
			continue
		}
		if s.Min != 90.875 || s.Max != 116 {
			t.Errorf("Unexpected heart rate bounds: min %v max %v", s.Min, s.Max)
		}
		wantMean := (116 + 107.625 + 99.25 + 90.875) / 4
		if s.Mean != wantMean {
			t.Errorf("Expected mean %v, got %v", wantMean, s.Mean)
		}
	}
}
