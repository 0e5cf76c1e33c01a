package storage

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/physiolab/vitals/internal/features"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()

	s := NewSqliteStore(filepath.Join(t.TempDir(), "features.sqlite"))
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func testRows(base time.Time) []features.Row {
	rows := make([]features.Row, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, features.Row{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			SubjectID: "S10",
			Session:   "baseline",
			Values: map[string]float64{
				"heart_rate_mean": 80 + float64(i),
				"heart_rate_std":  0.5,
				"eda_mean":        1.25,
			},
		})
	}
	return rows
}

func TestSqliteStore_CreateRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	type config struct {
		Window float64 `json:"window"`
	}

	id, err := s.CreateRun(ctx, "S10", "baseline", 60, config{Window: 60})
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if id <= 0 {
		t.Fatalf("CreateRun() id = %d, want > 0", id)
	}

	run, err := s.Run(ctx, id)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if run.SubjectID != "S10" || run.Session != "baseline" {
		t.Errorf("Run() subject/session = %q/%q, want S10/baseline", run.SubjectID, run.Session)
	}
	if run.WindowSeconds != 60 {
		t.Errorf("Run() windowSeconds = %f, want 60", run.WindowSeconds)
	}
	if run.Config == nil || *run.Config != `{"window":60}` {
		t.Errorf("Run() config = %v, want JSON object", run.Config)
	}
}

func TestSqliteStore_Runs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, subject := range []string{"S10", "S11"} {
		if _, err := s.CreateRun(ctx, subject, "", 60, nil); err != nil {
			t.Fatalf("CreateRun(%s) error = %v", subject, err)
		}
	}

	runs, err := s.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Runs() returned %d runs, want 2", len(runs))
	}
	if runs[0].Config != nil {
		t.Errorf("Runs()[0].Config = %v, want nil", runs[0].Config)
	}
}

func TestSqliteStore_StoreAndReadFeatures(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateRun(ctx, "S10", "baseline", 60, nil)
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	want := testRows(base)
	if err := s.StoreFeatures(ctx, id, want); err != nil {
		t.Fatalf("StoreFeatures() error = %v", err)
	}

	r, err := s.ReadFeatures(ctx, id)
	if err != nil {
		t.Fatalf("ReadFeatures() error = %v", err)
	}
	defer r.Close()

	if r.Run() == nil || r.Run().ID != id {
		t.Fatalf("Run() = %v, want run %d", r.Run(), id)
	}

	var got []*features.Row
	for r.Next(ctx) {
		got = append(got, r.Current())
	}
	if err := r.Error(); err != nil {
		t.Fatalf("Error() = %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("read %d rows, want %d", len(got), len(want))
	}
	for i, row := range got {
		if !row.Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("row %d timestamp = %s, want %s", i, row.Timestamp, want[i].Timestamp)
		}
		if row.SubjectID != "S10" || row.Session != "baseline" {
			t.Errorf("row %d subject/session = %q/%q", i, row.SubjectID, row.Session)
		}
		for name, v := range want[i].Values {
			if row.Values[name] != v {
				t.Errorf("row %d %s = %f, want %f", i, name, row.Values[name], v)
			}
		}
	}
}

func TestSqliteStore_NaNRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateRun(ctx, "S10", "", 60, nil)
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	row := features.Row{
		Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		SubjectID: "S10",
		Values: map[string]float64{
			"heart_rate_mean": 116,
			"heart_rate_std":  math.NaN(),
		},
	}
	if err := s.StoreFeatures(ctx, id, []features.Row{row}); err != nil {
		t.Fatalf("StoreFeatures() error = %v", err)
	}

	r, err := s.ReadFeatures(ctx, id)
	if err != nil {
		t.Fatalf("ReadFeatures() error = %v", err)
	}
	defer r.Close()

	if !r.Next(ctx) {
		t.Fatalf("Next() = false, error = %v", r.Error())
	}

	got := r.Current()
	if got.Values["heart_rate_mean"] != 116 {
		t.Errorf("heart_rate_mean = %f, want 116", got.Values["heart_rate_mean"])
	}
	if !math.IsNaN(got.Values["heart_rate_std"]) {
		t.Errorf("heart_rate_std = %f, want NaN", got.Values["heart_rate_std"])
	}
}

func TestFeatureReader_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateRun(ctx, "S10", "baseline", 60, nil)
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	if err := s.StoreFeatures(ctx, id, testRows(base)); err != nil {
		t.Fatalf("StoreFeatures() error = %v", err)
	}

	t.Run("time range", func(t *testing.T) {
		r, err := s.ReadFeatures(ctx, id, WithTimeRange(base.Add(time.Second), base.Add(2*time.Second)))
		if err != nil {
			t.Fatalf("ReadFeatures() error = %v", err)
		}
		defer r.Close()

		var n int
		for r.Next(ctx) {
			n++
		}
		if err := r.Error(); err != nil {
			t.Fatalf("Error() = %v", err)
		}
		if n != 2 {
			t.Errorf("read %d rows, want 2", n)
		}
	})

	t.Run("columns", func(t *testing.T) {
		r, err := s.ReadFeatures(ctx, id, WithColumns("heart_rate_mean"))
		if err != nil {
			t.Fatalf("ReadFeatures() error = %v", err)
		}
		defer r.Close()

		for r.Next(ctx) {
			row := r.Current()
			if len(row.Values) != 1 {
				t.Errorf("row has %d columns, want 1", len(row.Values))
			}
			if _, ok := row.Values["heart_rate_mean"]; !ok {
				t.Errorf("row is missing heart_rate_mean: %v", row.Values)
			}
		}
		if err := r.Error(); err != nil {
			t.Fatalf("Error() = %v", err)
		}
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		if _, err := s.ReadFeatures(ctx, id, WithTimeRange(base.Add(time.Hour), base)); err == nil {
			t.Fatal("ReadFeatures() expected error for inverted time range")
		}
	})

	t.Run("unknown run rejected", func(t *testing.T) {
		if _, err := s.ReadFeatures(ctx, id+100); err == nil {
			t.Fatal("ReadFeatures() expected error for unknown run")
		}
	})
}
