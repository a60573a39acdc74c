package store

import (
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kartikbazzad/coldb/internal/config"
	"github.com/kartikbazzad/coldb/internal/errors"
	"github.com/kartikbazzad/coldb/internal/logger"
)

func newStoreAt(t *testing.T, dir string) *Store {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	return New(cfg, logger.New(io.Discard, logger.LevelError, "[test]"))
}

// Round-trip law: persist then load into an equivalently-schemaed fresh
// store reproduces all column contents.
func TestPersistLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	src := newStoreAt(t, dir)
	buildSchema(t, src)
	rows := [][]int64{{90, 17}, {75, 18}, {-5, 19}}
	for _, row := range rows {
		if err := src.InsertRow("school.students", row); err != nil {
			t.Fatal(err)
		}
	}

	if err := src.PersistCSV(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "school.students.csv")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("persisted file missing: %v", err)
	}

	dst := newStoreAt(t, t.TempDir())
	buildSchema(t, dst)
	if err := dst.LoadCSV(path); err != nil {
		t.Fatal(err)
	}

	for i, colName := range []string{"school.students.grade", "school.students.age"} {
		col, err := dst.LookupColumn(colName)
		if err != nil {
			t.Fatal(err)
		}
		if len(col.Values) != len(rows) {
			t.Fatalf("%s has %d values, want %d", colName, len(col.Values), len(rows))
		}
		for r := range rows {
			if col.Values[r] != rows[r][i] {
				t.Errorf("%s[%d] = %d, want %d", colName, r, col.Values[r], rows[r][i])
			}
		}
	}
}

func TestLoadCSVUnknownColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	data := "school.students.ghost\n1\n2\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s := newStoreAt(t, dir)
	buildSchema(t, s)
	if err := s.LoadCSV(path); !stderrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("want not-found, got %v", err)
	}
}

func TestLoadCSVPartialTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.csv")
	data := "school.students.grade\n1\n2\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s := newStoreAt(t, dir)
	buildSchema(t, s)
	if err := s.LoadCSV(path); !stderrors.Is(err, errors.ErrFormat) {
		t.Fatalf("want format error for partial table coverage, got %v", err)
	}

	// equal-length invariant preserved: nothing was appended
	grade, _ := s.LookupColumn("school.students.grade")
	if len(grade.Values) != 0 {
		t.Errorf("rejected load mutated column: %v", grade.Values)
	}
}

func TestLoadCSVNonInteger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "text.csv")
	data := "school.students.grade,school.students.age\n90,seventeen\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s := newStoreAt(t, dir)
	buildSchema(t, s)
	if err := s.LoadCSV(path); !stderrors.Is(err, errors.ErrFormat) {
		t.Fatalf("want format error, got %v", err)
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	s := newStoreAt(t, t.TempDir())
	buildSchema(t, s)

	if err := s.LoadCSV("/nonexistent/data.csv"); !stderrors.Is(err, errors.ErrIO) {
		t.Fatalf("want i/o error, got %v", err)
	}
}

func TestPersistCSVHeader(t *testing.T) {
	dir := t.TempDir()
	s := newStoreAt(t, dir)
	buildSchema(t, s)

	if err := s.PersistCSV(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "school.students.csv"))
	if err != nil {
		t.Fatal(err)
	}
	want := "school.students.grade,school.students.age\n"
	if string(data) != want {
		t.Errorf("empty-table file = %q, want header only %q", data, want)
	}
}
