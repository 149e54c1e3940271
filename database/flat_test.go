package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scolarite-backend/models"
)

func newFlatStore(t *testing.T) *FlatStore {
	t.Helper()
	s := NewFlatStore(t.TempDir())
	require.NoError(t, s.Initialize())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFlatStoreStatementsUnavailable(t *testing.T) {
	s := newFlatStore(t)

	assert.False(t, s.SupportsStatements())
	_, err := s.Execute("DELETE FROM classes")
	assert.ErrorIs(t, err, ErrQueryFailed)
	_, err = s.Query("SELECT * FROM classes")
	assert.ErrorIs(t, err, ErrQueryFailed)
	_, err = s.QueryOne("SELECT * FROM classes")
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestFlatStoreRequiresInitialize(t *testing.T) {
	s := NewFlatStore(t.TempDir())

	var dest []models.Class
	assert.ErrorIs(t, s.LoadCollection("classes", &dest), ErrNotInitialized)
	assert.ErrorIs(t, s.SaveDoc("classes", "c1", &models.Class{ID: "c1"}), ErrNotInitialized)
	_, err := s.Execute("SELECT 1")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestFlatStoreAbsentDocumentIsEmptyCollection(t *testing.T) {
	s := newFlatStore(t)

	dest := []models.Class{}
	require.NoError(t, s.LoadCollection("classes", &dest))
	assert.Empty(t, dest)
}

func TestFlatStoreSaveDocReplaceAndDelete(t *testing.T) {
	s := newFlatStore(t)

	require.NoError(t, s.SaveDoc("classes", "c1", &models.Class{ID: "c1", Name: "CM2"}))
	require.NoError(t, s.SaveDoc("classes", "c2", &models.Class{ID: "c2", Name: "CE1"}))
	require.NoError(t, s.SaveDoc("classes", "c1", &models.Class{ID: "c1", Name: "CM2 A"}))

	var classes []models.Class
	require.NoError(t, s.LoadCollection("classes", &classes))
	require.Len(t, classes, 2)
	// In-place replace keeps document order.
	assert.Equal(t, "CM2 A", classes[0].Name)
	assert.Equal(t, "CE1", classes[1].Name)

	require.NoError(t, s.DeleteDoc("classes", "c1"))
	classes = nil
	require.NoError(t, s.LoadCollection("classes", &classes))
	require.Len(t, classes, 1)
	assert.Equal(t, "c2", classes[0].ID)
}

func TestFlatStoreReplaceCollection(t *testing.T) {
	s := newFlatStore(t)

	require.NoError(t, s.SaveDoc("services", "old", &models.Service{ID: "old", Name: "Ancien"}))
	require.NoError(t, s.ReplaceCollection("services", []models.Service{
		{ID: "n1", Name: "Cantine", Price: 15000},
		{ID: "n2", Name: "Transport", Price: 20000},
	}))

	var services []models.Service
	require.NoError(t, s.LoadCollection("services", &services))
	require.Len(t, services, 2)
	assert.Equal(t, "n1", services[0].ID)
}

func TestFlatStoreUnknownCollection(t *testing.T) {
	s := newFlatStore(t)

	var dest []models.Class
	assert.ErrorIs(t, s.LoadCollection("nonsense", &dest), ErrQueryFailed)
	assert.ErrorIs(t, s.SaveDoc("nonsense", "x", &models.Class{ID: "x"}), ErrQueryFailed)
	assert.ErrorIs(t, s.DeleteDoc("nonsense", "x"), ErrQueryFailed)
}

func TestFlatStoreWritesOneDocumentPerCollection(t *testing.T) {
	dir := t.TempDir()
	s := NewFlatStore(dir)
	require.NoError(t, s.Initialize())
	defer s.Close()

	require.NoError(t, s.SaveDoc("classes", "c1", &models.Class{ID: "c1", Name: "CM2"}))

	if _, err := os.Stat(filepath.Join(dir, "classes.json")); err != nil {
		t.Fatalf("expected classes.json document: %v", err)
	}
	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
