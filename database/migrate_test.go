package database

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"scolarite-backend/models"
)

func writeLegacyDoc(t *testing.T, dir, name string, value any) {
	t.Helper()
	data, err := json.Marshal(value)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644))
}

func TestImportLegacyFlat(t *testing.T) {
	legacyDir := t.TempDir()
	writeLegacyDoc(t, legacyDir, "school-classes", []models.Class{
		{ID: "c1", Name: "CM2", StudentCount: 2},
	})
	writeLegacyDoc(t, legacyDir, "school-services", []models.Service{
		{ID: "svc1", Name: "Cantine", Price: 15000, IsRequired: true},
	})
	writeLegacyDoc(t, legacyDir, "school-class-fees", []models.ClassFeeConfig{
		{ID: "cf1", ClassID: "c1", ClassName: "CM2", MonthlyFee: 30000,
			RegistrationFees: datatypes.JSONSlice[models.RegistrationFee]{
				{ID: "rf1", Name: "Inscription", Amount: 10000},
			}},
	})
	writeLegacyDoc(t, legacyDir, "school-payments", []models.StudentPayment{
		{ID: "p1", StudentID: "s1", Month: "2025-09", Year: 2025, ClassID: "c1",
			MonthlyFee: 30000, TotalAmount: 30000, PaidAmount: 10000, RemainingAmount: 20000},
	})

	s := newSQLiteStore(t)
	require.NoError(t, ImportLegacyFlat(s, legacyDir))

	var classes []models.Class
	require.NoError(t, s.LoadCollection("classes", &classes))
	require.Len(t, classes, 1)
	assert.Equal(t, "CM2", classes[0].Name)

	var fees []models.ClassFeeConfig
	require.NoError(t, s.LoadCollection("classFees", &fees))
	require.Len(t, fees, 1)
	require.Len(t, fees[0].RegistrationFees, 1)
	assert.Equal(t, 10000.0, fees[0].RegistrationFees[0].Amount)

	var payments []models.StudentPayment
	require.NoError(t, s.LoadCollection("payments", &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, 20000.0, payments[0].RemainingAmount)

	// The guard flag is persisted.
	row, err := s.QueryOne(`SELECT value FROM app_settings WHERE key = ?`, legacyImportFlag)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "true", row["value"])
}

func TestImportLegacyFlatRunsOnce(t *testing.T) {
	legacyDir := t.TempDir()
	writeLegacyDoc(t, legacyDir, "school-classes", []models.Class{{ID: "c1", Name: "CM2"}})

	s := newSQLiteStore(t)
	require.NoError(t, ImportLegacyFlat(s, legacyDir))

	// A second run is guarded off entirely; mutating the source after the
	// first import changes nothing.
	writeLegacyDoc(t, legacyDir, "school-classes", []models.Class{
		{ID: "c1", Name: "CM2"}, {ID: "c2", Name: "CE1"},
	})
	require.NoError(t, ImportLegacyFlat(s, legacyDir))

	var classes []models.Class
	require.NoError(t, s.LoadCollection("classes", &classes))
	assert.Len(t, classes, 1)
}

func TestImportLegacyFlatMissingDocsAreSkipped(t *testing.T) {
	s := newSQLiteStore(t)
	// Empty directory: every document absent, import completes clean.
	require.NoError(t, ImportLegacyFlat(s, t.TempDir()))
}

func TestImportLegacyFlatNoopOnFlatBackend(t *testing.T) {
	legacyDir := t.TempDir()
	writeLegacyDoc(t, legacyDir, "school-classes", []models.Class{{ID: "c1", Name: "CM2"}})

	s := newFlatStore(t)
	require.NoError(t, ImportLegacyFlat(s, legacyDir))

	var classes []models.Class
	require.NoError(t, s.LoadCollection("classes", &classes))
	assert.Empty(t, classes)
}

func TestMigrateOnFlatBackendIsNoop(t *testing.T) {
	require.NoError(t, Migrate(newFlatStore(t)))
}

func TestMigrateRequiresInitializedStore(t *testing.T) {
	s := NewSQLStore(Config{Backend: BackendSQLite, SQLitePath: "unused.db"})
	assert.ErrorIs(t, Migrate(s), ErrNotInitialized)
}
