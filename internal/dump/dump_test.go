package dump

import (
	"math"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.npz")

	vector := []float64{0.003, 0.04, math.Pi, math.Inf(1), math.NaN()}
	matrix := mat.NewDense(2, 3, []float64{1, 2, 3, 4.5, -6, 7.25})

	err := Write(path, []Entry{
		Vec("frequencies", vector),
		Mat("energy", matrix),
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	entries, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	got, ok := entries["frequencies"]
	if !ok {
		t.Fatal("Missing 'frequencies' entry")
	}
	if len(got.Vector) != len(vector) {
		t.Fatalf("Expected %d values, got %d", len(vector), len(got.Vector))
	}
	for i := range vector {
		// Bit-identical round trip, NaN and Inf included
		if math.Float64bits(got.Vector[i]) != math.Float64bits(vector[i]) {
			t.Errorf("Value %d: expected bits of %v, got %v", i, vector[i], got.Vector[i])
		}
	}

	gotM, ok := entries["energy"]
	if !ok || gotM.Matrix == nil {
		t.Fatal("Missing 'energy' matrix entry")
	}
	rows, cols := gotM.Matrix.Dims()
	if rows != 2 || cols != 3 {
		t.Fatalf("Expected 2x3 matrix, got %dx%d", rows, cols)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.Float64bits(gotM.Matrix.At(i, j)) != math.Float64bits(matrix.At(i, j)) {
				t.Errorf("Matrix [%d][%d]: expected %v, got %v", i, j, matrix.At(i, j), gotM.Matrix.At(i, j))
			}
		}
	}
}

func TestWriteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "result.npz")
	if err := Write(path, []Entry{Vec("x", []float64{1})}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := Read(path); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
}

func TestReadMissingArchive(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.npz")); err == nil {
		t.Fatal("Expected error for missing archive")
	}
}
