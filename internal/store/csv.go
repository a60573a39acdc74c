package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kartikbazzad/coldb/internal/errors"
)

// LoadCSV bulk-loads a flat file into existing columns matched by header
// name. The header row holds fully qualified column names; every following
// row holds one integer per header column.
//
// The load is atomic per table: every declared column of a touched table
// must appear in the header, and the whole file is parsed and validated
// before any column is mutated.
func (s *Store) LoadCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %v: %w", path, err, errors.ErrIO)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read %q: %v: %w", path, err, errors.ErrIO)
	}
	if len(records) == 0 {
		return fmt.Errorf("%q has no header row: %w", path, errors.ErrFormat)
	}

	header := records[0]
	parsed := make([][]int64, len(header))
	for i := range parsed {
		parsed[i] = make([]int64, 0, len(records)-1)
	}
	for rowNum, rec := range records[1:] {
		if len(rec) != len(header) {
			return fmt.Errorf("row %d has %d fields, header has %d: %w",
				rowNum+1, len(rec), len(header), errors.ErrFormat)
		}
		for i, field := range rec {
			v, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return fmt.Errorf("row %d field %q: %w", rowNum+1, field, errors.ErrFormat)
			}
			parsed[i] = append(parsed[i], v)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cols := make([]*Column, len(header))
	loaded := make(map[string]bool, len(header))
	for i, name := range header {
		col, exists := s.columns[name]
		if !exists {
			return fmt.Errorf("%q: %w", name, ErrColumnNotFound)
		}
		cols[i] = col
		loaded[name] = true
	}

	// Equal-length invariant: a table is either fully covered by the
	// header or untouched.
	for _, tbl := range s.tables {
		touched := 0
		for _, col := range tbl.Columns {
			if loaded[col.Name] {
				touched++
			}
		}
		if touched > 0 && touched != tbl.ColCount {
			return fmt.Errorf("header covers %d of %d columns of table %q: %w",
				touched, tbl.ColCount, tbl.Name, errors.ErrFormat)
		}
	}

	for i, col := range cols {
		col.Values = append(col.Values, parsed[i]...)
	}
	s.logger.Info("loaded %d rows from %q into %d columns", len(records)-1, path, len(header))
	return nil
}

// PersistCSV writes every known table to its own CSV file under the data
// directory: header row of qualified column names, then one row per
// record. Each file is written to a temp path and renamed into place.
// Tables are persisted in sorted name order so repeated runs write and log
// identically.
func (s *Store) PersistCSV() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("mkdir %q: %v: %w", s.dataDir, err, errors.ErrIO)
	}

	for _, name := range s.tableNames() {
		if err := s.persistTable(s.tables[name]); err != nil {
			return fmt.Errorf("persist table %q: %w", name, err)
		}
	}
	return nil
}

func (s *Store) persistTable(tbl *Table) error {
	target := filepath.Join(s.dataDir, tbl.Name+".csv")
	tmp := target + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %q: %v: %w", tmp, err, errors.ErrIO)
	}

	w := csv.NewWriter(f)
	header := make([]string, len(tbl.Columns))
	for i, col := range tbl.Columns {
		header[i] = col.Name
	}
	if err := w.Write(header); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write header: %v: %w", err, errors.ErrIO)
	}

	rows := tbl.Rows()
	record := make([]string, len(tbl.Columns))
	for r := 0; r < rows; r++ {
		for i, col := range tbl.Columns {
			record[i] = strconv.FormatInt(col.Values[r], 10)
		}
		if err := w.Write(record); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("write row %d: %v: %w", r, err, errors.ErrIO)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush: %v: %w", err, errors.ErrIO)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close: %v: %w", err, errors.ErrIO)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %q: %v: %w", target, err, errors.ErrIO)
	}

	s.logger.Info("persisted table %q (%d rows) to %q", tbl.Name, rows, target)
	return nil
}
