package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scolarite-backend/models"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	s := NewSQLStore(Config{
		Backend:    BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, s.Initialize())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStoreRequiresInitialize(t *testing.T) {
	s := NewSQLStore(Config{Backend: BackendSQLite, SQLitePath: "unused.db"})

	_, err := s.Execute("SELECT 1")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = s.Query("SELECT 1")
	assert.ErrorIs(t, err, ErrNotInitialized)
	var dest []models.Service
	assert.ErrorIs(t, s.LoadCollection("services", &dest), ErrNotInitialized)
	assert.ErrorIs(t, s.SaveDoc("services", "x", &models.Service{ID: "x"}), ErrNotInitialized)
}

func TestSQLStoreReadAfterWrite(t *testing.T) {
	s := newSQLiteStore(t)

	_, err := s.Execute(`INSERT INTO classes (id, name, student_count) VALUES (?, ?, ?)`, "c1", "CM2", 0)
	require.NoError(t, err)

	row, err := s.QueryOne(`SELECT name FROM classes WHERE id = ?`, "c1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "CM2", row["name"])

	// No match yields a nil row, not an error.
	row, err = s.QueryOne(`SELECT name FROM classes WHERE id = ?`, "missing")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestSQLStoreMalformedStatement(t *testing.T) {
	s := newSQLiteStore(t)

	_, err := s.Execute("BANANA SPLIT")
	assert.ErrorIs(t, err, ErrQueryFailed)
	_, err = s.Query("SELECT FROM WHERE")
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestSQLStoreMigrateIsIdempotent(t *testing.T) {
	s := newSQLiteStore(t)

	// Initialize already migrated once; two more passes must not fail or
	// clobber data.
	require.NoError(t, Migrate(s))
	require.NoError(t, s.SaveDoc("services", "svc1", &models.Service{ID: "svc1", Name: "Cantine", Price: 15000}))
	require.NoError(t, Migrate(s))

	var services []models.Service
	require.NoError(t, s.LoadCollection("services", &services))
	require.Len(t, services, 1)
	assert.Equal(t, "Cantine", services[0].Name)
}

func TestSQLStoreSaveDocUpserts(t *testing.T) {
	s := newSQLiteStore(t)

	require.NoError(t, s.SaveDoc("services", "svc1", &models.Service{ID: "svc1", Name: "Cantine", Price: 15000}))
	require.NoError(t, s.SaveDoc("services", "svc1", &models.Service{ID: "svc1", Name: "Cantine", Price: 17500}))

	var services []models.Service
	require.NoError(t, s.LoadCollection("services", &services))
	require.Len(t, services, 1)
	assert.Equal(t, 17500.0, services[0].Price)

	require.NoError(t, s.DeleteDoc("services", "svc1"))
	services = nil
	require.NoError(t, s.LoadCollection("services", &services))
	assert.Empty(t, services)
}

func TestSQLStoreLoadCollectionKeepsInsertionOrder(t *testing.T) {
	s := newSQLiteStore(t)

	for _, id := range []string{"s3", "s1", "s2"} {
		require.NoError(t, s.SaveDoc("students", id, &models.Student{
			ID: id, FirstName: "A", LastName: "B", ClassID: "c1",
		}))
	}

	var students []models.Student
	require.NoError(t, s.LoadCollection("students", &students))
	require.Len(t, students, 3)
	assert.Equal(t, "s3", students[0].ID)
	assert.Equal(t, "s1", students[1].ID)
	assert.Equal(t, "s2", students[2].ID)
}

func TestSQLStoreUnknownCollection(t *testing.T) {
	s := newSQLiteStore(t)

	var dest []models.Service
	assert.ErrorIs(t, s.LoadCollection("nonsense", &dest), ErrQueryFailed)
	assert.ErrorIs(t, s.SaveDoc("nonsense", "x", &models.Service{ID: "x"}), ErrQueryFailed)
}

func TestMemoryBackendSnapshotRoundTrip(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "snapshot.json")
	cfg := Config{Backend: BackendMemory, SnapshotPath: snap}

	s := NewSQLStore(cfg)
	require.NoError(t, s.Initialize())
	require.NoError(t, s.SaveDoc("services", "svc1", &models.Service{ID: "svc1", Name: "Cantine", Price: 15000}))
	require.NoError(t, s.SaveDoc("classes", "c1", &models.Class{ID: "c1", Name: "CM2"}))
	require.NoError(t, s.Close())

	// A fresh memory instance starts empty and rehydrates from the
	// snapshot blob during Initialize.
	s2 := NewSQLStore(cfg)
	require.NoError(t, s2.Initialize())
	defer s2.Close()

	var services []models.Service
	require.NoError(t, s2.LoadCollection("services", &services))
	require.Len(t, services, 1)
	assert.Equal(t, "Cantine", services[0].Name)

	var classes []models.Class
	require.NoError(t, s2.LoadCollection("classes", &classes))
	require.Len(t, classes, 1)
}

func TestMemoryBackendSnapshotSurvivesRestartWithoutWrites(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "snapshot.json")
	cfg := Config{Backend: BackendMemory, SnapshotPath: snap}

	s := NewSQLStore(cfg)
	require.NoError(t, s.Initialize())
	require.NoError(t, s.SaveDoc("services", "svc1", &models.Service{ID: "svc1", Name: "Cantine", Price: 15000}))
	require.NoError(t, s.Close())

	// Initialize runs the index migration through Execute; that must not
	// write an empty database over the blob before it is restored.
	s2 := NewSQLStore(cfg)
	require.NoError(t, s2.Initialize())
	require.NoError(t, s2.Close())

	s3 := NewSQLStore(cfg)
	require.NoError(t, s3.Initialize())
	defer s3.Close()

	var services []models.Service
	require.NoError(t, s3.LoadCollection("services", &services))
	require.Len(t, services, 1)
	assert.Equal(t, "Cantine", services[0].Name)
}

func TestSQLStoreCreatesParentDirectories(t *testing.T) {
	base := t.TempDir()

	s := NewSQLStore(Config{
		Backend:    BackendSQLite,
		SQLitePath: filepath.Join(base, "data", "nested", "scolarite.db"),
	})
	require.NoError(t, s.Initialize())
	require.NoError(t, s.Close())

	m := NewSQLStore(Config{
		Backend:      BackendMemory,
		SnapshotPath: filepath.Join(base, "snapshots", "snapshot.json"),
	})
	require.NoError(t, m.Initialize())
	require.NoError(t, m.SaveDoc("classes", "c1", &models.Class{ID: "c1", Name: "CM2"}))
	require.NoError(t, m.Close())
}

func TestMemoryBackendWithoutSnapshotStartsEmpty(t *testing.T) {
	s := NewSQLStore(Config{
		Backend:      BackendMemory,
		SnapshotPath: filepath.Join(t.TempDir(), "never-written.json"),
	})
	require.NoError(t, s.Initialize())
	defer s.Close()

	var classes []models.Class
	require.NoError(t, s.LoadCollection("classes", &classes))
	assert.Empty(t, classes)
}

func TestOpenSelectsBackend(t *testing.T) {
	store, err := Open(Config{Backend: BackendFlat, DataDir: t.TempDir()})
	require.NoError(t, err)
	_, ok := store.(*FlatStore)
	assert.True(t, ok)

	store, err = Open(Config{Backend: BackendSQLite, SQLitePath: "x.db"})
	require.NoError(t, err)
	_, ok = store.(*SQLStore)
	assert.True(t, ok)

	_, err = Open(Config{Backend: "cloud"})
	assert.Error(t, err)
}
