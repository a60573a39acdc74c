package store

import (
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kartikbazzad/coldb/internal/config"
	"github.com/kartikbazzad/coldb/internal/errors"
	"github.com/kartikbazzad/coldb/internal/logger"
)

var (
	ErrDBNotFound     = fmt.Errorf("database %w", errors.ErrNotFound)
	ErrTableNotFound  = fmt.Errorf("table %w", errors.ErrNotFound)
	ErrColumnNotFound = fmt.Errorf("column %w", errors.ErrNotFound)
)

// Column holds one ordered sequence of signed integers, indexed by row id.
// Name is fully qualified: db.table.column.
type Column struct {
	Name   string
	Values []int64
}

// Table owns up to ColCount columns in declaration order. All columns have
// equal length at any point observable outside the store lock.
type Table struct {
	Name     string // qualified: db.table
	ColCount int
	Columns  []*Column
}

// Rows reports the table's current row count.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

type Database struct {
	Name   string
	Tables []string // qualified table names in creation order
}

// Store is the Database→Table→Column registry. All three maps are keyed by
// fully qualified name, so lookups are unambiguous process-wide. A single
// RWMutex serializes mutation; committed reads only take the read lock.
type Store struct {
	mu      sync.RWMutex
	caps    config.StoreConfig
	dataDir string
	logger  *logger.Logger

	databases map[string]*Database
	tables    map[string]*Table
	columns   map[string]*Column
}

func New(cfg *config.Config, log *logger.Logger) *Store {
	return &Store{
		caps:      cfg.Store,
		dataDir:   cfg.DataDir,
		logger:    log,
		databases: make(map[string]*Database),
		tables:    make(map[string]*Table),
		columns:   make(map[string]*Column),
	}
}

func (s *Store) CreateDatabase(name string) error {
	if name == "" {
		return fmt.Errorf("empty database name: %w", errors.ErrFormat)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.databases[name]; exists {
		return fmt.Errorf("database %q: %w", name, errors.ErrConflict)
	}
	if len(s.databases) >= s.caps.MaxDatabases {
		return fmt.Errorf("database registry full (%d): %w", s.caps.MaxDatabases, errors.ErrCapacity)
	}

	s.databases[name] = &Database{Name: name}
	s.logger.Info("created database %q", name)
	return nil
}

// CreateTable registers qualified name under an existing database.
// name must already carry the db prefix (db.table).
func (s *Store) CreateTable(dbName, name string, colCount int) (*Table, error) {
	if colCount < 1 {
		return nil, fmt.Errorf("column count %d: %w", colCount, errors.ErrCapacity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, exists := s.databases[dbName]
	if !exists {
		return nil, fmt.Errorf("%q: %w", dbName, ErrDBNotFound)
	}
	if _, exists := s.tables[name]; exists {
		return nil, fmt.Errorf("table %q: %w", name, errors.ErrConflict)
	}
	if len(s.tables) >= s.caps.MaxTables {
		return nil, fmt.Errorf("table registry full (%d): %w", s.caps.MaxTables, errors.ErrCapacity)
	}

	tbl := &Table{Name: name, ColCount: colCount}
	s.tables[name] = tbl
	db.Tables = append(db.Tables, name)
	s.logger.Info("created table %q with %d columns", name, colCount)
	return tbl, nil
}

// CreateColumn registers qualified name under an existing table.
// name must already carry the table prefix (db.table.column).
func (s *Store) CreateColumn(tblName, name string) (*Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, exists := s.tables[tblName]
	if !exists {
		return nil, fmt.Errorf("%q: %w", tblName, ErrTableNotFound)
	}
	if _, exists := s.columns[name]; exists {
		return nil, fmt.Errorf("column %q: %w", name, errors.ErrConflict)
	}
	if len(tbl.Columns) >= tbl.ColCount {
		return nil, fmt.Errorf("table %q already has %d columns: %w", tblName, tbl.ColCount, errors.ErrCapacity)
	}
	if len(s.columns) >= s.caps.MaxColumns {
		return nil, fmt.Errorf("column registry full (%d): %w", s.caps.MaxColumns, errors.ErrCapacity)
	}

	col := &Column{Name: name}
	s.columns[name] = col
	tbl.Columns = append(tbl.Columns, col)
	s.logger.Info("created column %q", name)
	return col, nil
}

func (s *Store) LookupTable(name string) (*Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl, exists := s.tables[name]
	if !exists {
		return nil, fmt.Errorf("%q: %w", name, ErrTableNotFound)
	}
	return tbl, nil
}

func (s *Store) LookupColumn(name string) (*Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, exists := s.columns[name]
	if !exists {
		return nil, fmt.Errorf("%q: %w", name, ErrColumnNotFound)
	}
	return col, nil
}

// InsertRow appends exactly one value per declared column, in declaration
// order. The row is all-or-nothing: on any precondition failure no column
// is mutated.
func (s *Store) InsertRow(tblName string, values []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, exists := s.tables[tblName]
	if !exists {
		return fmt.Errorf("%q: %w", tblName, ErrTableNotFound)
	}
	if len(values) != tbl.ColCount {
		return fmt.Errorf("got %d values for %d columns: %w", len(values), tbl.ColCount, errors.ErrFormat)
	}
	if len(tbl.Columns) != tbl.ColCount {
		return fmt.Errorf("table %q has %d of %d columns created: %w",
			tblName, len(tbl.Columns), tbl.ColCount, errors.ErrNotFound)
	}

	for i, col := range tbl.Columns {
		col.Values = append(col.Values, values[i])
	}
	return nil
}

// SelectRange returns the row ids whose value v satisfies low <= v < high.
func (s *Store) SelectRange(colName string, low, high int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, exists := s.columns[colName]
	if !exists {
		return nil, fmt.Errorf("%q: %w", colName, ErrColumnNotFound)
	}

	rows := make([]int64, 0)
	for i, v := range col.Values {
		if v >= low && v < high {
			rows = append(rows, int64(i))
		}
	}
	return rows, nil
}

// FetchRows materializes the column's values at the given row ids.
func (s *Store) FetchRows(colName string, rows []int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, exists := s.columns[colName]
	if !exists {
		return nil, fmt.Errorf("%q: %w", colName, ErrColumnNotFound)
	}

	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		if r < 0 || int(r) >= len(col.Values) {
			return nil, fmt.Errorf("row id %d out of range: %w", r, errors.ErrFormat)
		}
		out = append(out, col.Values[r])
	}
	return out, nil
}

// Tables returns the qualified names of all tables, sorted.
func (s *Store) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tableNames()
}

// tableNames is Tables without the lock, for callers already holding it.
func (s *Store) tableNames() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsNotFound reports whether err stems from an unknown reference.
func IsNotFound(err error) bool {
	return stderrors.Is(err, errors.ErrNotFound)
}
