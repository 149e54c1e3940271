package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FlatStore is the no-engine fallback: one JSON document per collection,
// each write an atomic whole-collection replacement. It trades query
// expressiveness for reliability: the statement interface is deliberately
// unavailable, and the fee store and ledger run on collection snapshots
// instead.
type FlatStore struct {
	dir         string
	mu          sync.Mutex
	initialized bool
}

func NewFlatStore(dir string) *FlatStore {
	if dir == "" {
		dir = "data"
	}
	return &FlatStore{dir: dir}
}

func (s *FlatStore) Initialize() error {
	if s.initialized {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", s.dir, err)
	}
	s.initialized = true
	return nil
}

// Execute is not available on flat storage; it fails loudly rather than
// pretending the statement ran.
func (s *FlatStore) Execute(query string, args ...any) (Result, error) {
	if !s.initialized {
		return Result{}, ErrNotInitialized
	}
	return Result{}, fmt.Errorf("%w: statement interface unavailable on flat storage", ErrQueryFailed)
}

func (s *FlatStore) Query(query string, args ...any) ([]Row, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	return nil, fmt.Errorf("%w: statement interface unavailable on flat storage", ErrQueryFailed)
}

func (s *FlatStore) QueryOne(query string, args ...any) (Row, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	return nil, fmt.Errorf("%w: statement interface unavailable on flat storage", ErrQueryFailed)
}

// SupportsStatements reports whether the statement interface is usable.
// The export gateway checks it before attempting SQL-dump work.
func (s *FlatStore) SupportsStatements() bool { return false }

func (s *FlatStore) Close() error {
	s.initialized = false
	return nil
}

func (s *FlatStore) docPath(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *FlatStore) LoadCollection(name string, dest any) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if _, ok := collectionByName(name); !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrQueryFailed, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.docPath(name))
	if os.IsNotExist(err) {
		return nil // absent document == empty collection
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *FlatStore) ReplaceCollection(name string, value any) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if _, ok := collectionByName(name); !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrQueryFailed, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDoc(name, value)
}

// writeDoc marshals the full collection and swaps it in with a rename so a
// crash mid-write never leaves a truncated document. Caller holds s.mu.
func (s *FlatStore) writeDoc(name string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+"-*")
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
	return os.Rename(tmp.Name(), s.docPath(name))
}

// SaveDoc rewrites the whole collection with the entity replaced in place
// (or appended). Whole-document writes keep the flat format simple; the
// dataset is a single school.
func (s *FlatStore) SaveDoc(name string, id string, value any) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if _, ok := collectionByName(name); !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrQueryFailed, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.readRaw(name)
	if err != nil {
		return err
	}
	entity, err := toRaw(value)
	if err != nil {
		return err
	}

	replaced := false
	for i, d := range docs {
		if rawID(d) == id {
			docs[i] = entity
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append(docs, entity)
	}
	return s.writeDoc(name, docs)
}

func (s *FlatStore) DeleteDoc(name string, id string) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if _, ok := collectionByName(name); !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrQueryFailed, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.readRaw(name)
	if err != nil {
		return err
	}
	out := docs[:0]
	for _, d := range docs {
		if rawID(d) != id {
			out = append(out, d)
		}
	}
	return s.writeDoc(name, out)
}

func (s *FlatStore) readRaw(name string) ([]map[string]any, error) {
	data, err := os.ReadFile(s.docPath(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var docs []map[string]any
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func toRaw(value any) (map[string]any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func rawID(m map[string]any) string {
	id, _ := m["id"].(string)
	return id
}
