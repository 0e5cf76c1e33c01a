// Package dump writes named float64 arrays to NumPy-compatible .npz
// archives: a zip container whose members are .npy files. Members are stored
// uncompressed, and values survive a write/read cycle bit-identical.
package dump

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// Entry is a single named array in an archive: either a 1-D vector or a 2-D
// matrix, never both.
type Entry struct {
	Name   string
	Vector []float64
	Matrix *mat.Dense
}

// Vec builds a vector entry.
func Vec(name string, values []float64) Entry {
	return Entry{Name: name, Vector: values}
}

// Mat builds a matrix entry.
func Mat(name string, m *mat.Dense) Entry {
	return Entry{Name: name, Matrix: m}
}

// Write creates (or truncates) an .npz archive at path holding the given
// entries in order. The parent directory is created if absent. Writes are
// ordinary blocking file writes with no atomicity guarantee.
func Write(path string, entries []Entry) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating archive '%s': %w", path, err)
	}
	defer closeWithError(f, &err)

	zw := zip.NewWriter(f)
	defer closeWithError(zw, &err)

	for _, e := range entries {
		// numpy stores npz members uncompressed; do the same
		w, zerr := zw.CreateHeader(&zip.FileHeader{
			Name:   e.Name + ".npy",
			Method: zip.Store,
		})
		if zerr != nil {
			return fmt.Errorf("creating member '%s': %w", e.Name, zerr)
		}

		switch {
		case e.Matrix != nil:
			err = npyio.Write(w, e.Matrix)
		default:
			err = npyio.Write(w, e.Vector)
		}
		if err != nil {
			return fmt.Errorf("writing member '%s': %w", e.Name, err)
		}
	}
	return nil
}

// Read loads every member of an .npz archive. Members with a 1-D shape come
// back as vectors, 2-D shapes as matrices.
func Read(path string) (entries map[string]Entry, err error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive '%s': %w", path, err)
	}
	defer closeWithError(zr, &err)

	entries = make(map[string]Entry, len(zr.File))
	for _, member := range zr.File {
		name := member.Name
		if ext := filepath.Ext(name); ext == ".npy" {
			name = name[:len(name)-len(ext)]
		}

		e, rerr := readMember(member, name)
		if rerr != nil {
			return nil, fmt.Errorf("reading member '%s': %w", member.Name, rerr)
		}
		entries[name] = e
	}
	return entries, nil
}

func readMember(member *zip.File, name string) (e Entry, err error) {
	rc, err := member.Open()
	if err != nil {
		return e, err
	}
	defer closeWithError(rc, &err)

	r, err := npyio.NewReader(rc)
	if err != nil {
		return e, err
	}

	e.Name = name
	switch len(r.Header.Descr.Shape) {
	case 2:
		var m mat.Dense
		if err = r.Read(&m); err != nil {
			return e, err
		}
		e.Matrix = &m

	default:
		if err = r.Read(&e.Vector); err != nil {
			return e, err
		}
	}
	return e, nil
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
