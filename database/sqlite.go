package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore backs the statement and collection contracts with an embedded
// SQLite engine (pure Go driver). In file mode the engine itself is durable.
// In memory mode every mutation ends with a full-database snapshot written
// to a side-channel blob, reloaded whole on the next Initialize. That is an
// O(database size) write, acceptable for a single-school dataset.
type SQLStore struct {
	cfg         Config
	db          *gorm.DB
	memory      bool
	initialized bool

	snapMu    sync.Mutex
	restoring bool
}

func NewSQLStore(cfg Config) *SQLStore {
	if cfg.Backend == BackendMemory && cfg.SnapshotPath == "" {
		cfg.SnapshotPath = "scolarite-snapshot.json"
	}
	return &SQLStore{cfg: cfg, memory: cfg.Backend == BackendMemory}
}

func (s *SQLStore) Initialize() error {
	if s.initialized {
		return nil
	}

	dsn := s.cfg.SQLitePath
	if s.memory {
		dsn = ":memory:"
	} else if dsn == "" {
		dsn = "scolarite.db"
	}

	if !s.memory {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create database dir %s: %w", dir, err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("open sqlite (%s): %w", dsn, err)
	}
	s.db = db
	s.initialized = true

	// Snapshot writes stay off until migrate and restore both finish;
	// the index migration runs through Execute, which would otherwise
	// overwrite the blob with an empty database before it is read back.
	if s.memory {
		s.setRestoring(true)
		defer s.setRestoring(false)
	}

	if err := s.migrate(); err != nil {
		s.initialized = false
		return err
	}

	if s.memory {
		if err := s.restoreSnapshot(); err != nil {
			s.initialized = false
			return err
		}
	}
	return nil
}

func (s *SQLStore) setRestoring(v bool) {
	s.snapMu.Lock()
	s.restoring = v
	s.snapMu.Unlock()
}

func (s *SQLStore) Execute(query string, args ...any) (Result, error) {
	if !s.initialized {
		return Result{}, ErrNotInitialized
	}
	tx := s.db.Exec(query, args...)
	if tx.Error != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrQueryFailed, tx.Error)
	}
	if err := s.persistSnapshot(); err != nil {
		return Result{}, err
	}
	return Result{RowsAffected: tx.RowsAffected}, nil
}

func (s *SQLStore) Query(query string, args ...any) ([]Row, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	var raw []map[string]any
	if err := s.db.Raw(query, args...).Scan(&raw).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	rows := make([]Row, len(raw))
	for i, r := range raw {
		rows[i] = Row(r)
	}
	return rows, nil
}

// QueryOne returns the first matching row, or nil when there is none.
func (s *SQLStore) QueryOne(query string, args ...any) (Row, error) {
	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// SupportsStatements reports that the statement interface is usable.
func (s *SQLStore) SupportsStatements() bool { return true }

func (s *SQLStore) Close() error {
	if !s.initialized {
		return nil
	}
	s.initialized = false
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) LoadCollection(name string, dest any) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if _, ok := collectionByName(name); !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrQueryFailed, name)
	}
	// rowid order == insertion order for these tables.
	if err := s.db.Order("rowid").Find(dest).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return nil
}

func (s *SQLStore) ReplaceCollection(name string, value any) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	col, ok := collectionByName(name)
	if !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrQueryFailed, name)
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(col.newModel()).Error; err != nil {
			return err
		}
		v := reflect.ValueOf(value)
		for v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		if v.Kind() == reflect.Slice && v.Len() > 0 {
			// gorm needs an addressable value to fill timestamps on insert.
			cp := reflect.New(v.Type())
			cp.Elem().Set(v)
			if err := tx.Create(cp.Interface()).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return s.persistSnapshot()
}

func (s *SQLStore) SaveDoc(name string, id string, value any) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if _, ok := collectionByName(name); !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrQueryFailed, name)
	}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return s.persistSnapshot()
}

func (s *SQLStore) DeleteDoc(name string, id string) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	col, ok := collectionByName(name)
	if !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrQueryFailed, name)
	}
	if err := s.db.Where("id = ?", id).Delete(col.newModel()).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return s.persistSnapshot()
}

// TableRows returns a table's raw rows with the engine's column order,
// the stable ordering the SQL-dump export needs.
func (s *SQLStore) TableRows(table string) ([]string, [][]any, error) {
	if !s.initialized {
		return nil, nil, ErrNotInitialized
	}
	rows, err := s.db.Raw("SELECT * FROM " + table).Rows()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return cols, out, nil
}

// persistSnapshot serializes the whole database to the side-channel blob.
// No-op in file mode (the engine file is the durable copy) and while a
// snapshot restore or bulk import is replaying collections.
func (s *SQLStore) persistSnapshot() error {
	if !s.memory {
		return nil
	}
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if s.restoring {
		return nil
	}

	dump, err := buildDump(s)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.cfg.SnapshotPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.cfg.SnapshotPath)
}

func (s *SQLStore) restoreSnapshot() error {
	data, err := os.ReadFile(s.cfg.SnapshotPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	dump, err := parseDump(data)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", s.cfg.SnapshotPath, err)
	}
	// Initialize holds the restoring guard for the whole migrate+restore
	// span, so the per-collection replays here never write the blob back.
	return applyDump(s, dump)
}
