package stores

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scolarite-backend/database"
	"scolarite-backend/models"
)

func newTestFeeStore(t *testing.T) *FeeConfigStore {
	t.Helper()
	store := database.NewFlatStore(t.TempDir())
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })

	fees := NewFeeConfigStore(store)
	require.NoError(t, fees.Load())
	return fees
}

func TestServiceCatalogCRUD(t *testing.T) {
	fees := newTestFeeStore(t)

	id, err := fees.AddService(models.Service{Name: "Cantine", Price: 15000, IsRequired: true})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	svc, ok := fees.GetService(id)
	require.True(t, ok)
	assert.Equal(t, "Cantine", svc.Name)
	assert.Equal(t, 15000.0, svc.Price)
	assert.False(t, svc.CreatedAt.IsZero())

	name := "Cantine + goûter"
	price := 17500.0
	require.NoError(t, fees.UpdateService(id, ServicePatch{Name: &name, Price: &price}))
	svc, _ = fees.GetService(id)
	assert.Equal(t, "Cantine + goûter", svc.Name)
	assert.Equal(t, 17500.0, svc.Price)

	require.NoError(t, fees.DeleteService(id))
	_, ok = fees.GetService(id)
	assert.False(t, ok)
	assert.Empty(t, fees.ListServices())

	// Absent ids are no-ops, not errors.
	require.NoError(t, fees.UpdateService("missing", ServicePatch{Name: &name}))
	require.NoError(t, fees.DeleteService("missing"))
}

func TestAddServiceRejectsInvalidPrice(t *testing.T) {
	fees := newTestFeeStore(t)

	tests := []struct {
		name  string
		price float64
	}{
		{name: "negative", price: -100},
		{name: "nan", price: math.NaN()},
		{name: "inf", price: math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fees.AddService(models.Service{Name: "x", Price: tt.price})
			assert.ErrorIs(t, err, database.ErrInvalidAmount)
		})
	}

	id, err := fees.AddService(models.Service{Name: "ok", Price: 100})
	require.NoError(t, err)
	bad := -5.0
	assert.ErrorIs(t, fees.UpdateService(id, ServicePatch{Price: &bad}), database.ErrInvalidAmount)
}

func TestSetClassMonthlyFeeUpserts(t *testing.T) {
	fees := newTestFeeStore(t)

	require.NoError(t, fees.SetClassMonthlyFee("c1", "CM2", 30000))
	cf, ok := fees.GetClassFees("c1")
	require.True(t, ok)
	assert.Equal(t, 30000.0, cf.MonthlyFee)
	assert.Equal(t, "CM2", cf.ClassName)
	assert.NotNil(t, cf.RegistrationFees)

	_, err := fees.AddRegistrationFee("c1", models.RegistrationFee{Name: "Inscription", Amount: 10000, IsRequired: true})
	require.NoError(t, err)

	// Second write overwrites fee and name, keeps the registration fees
	// and the config id.
	require.NoError(t, fees.SetClassMonthlyFee("c1", "CM2 B", 35000))
	upd, _ := fees.GetClassFees("c1")
	assert.Equal(t, cf.ID, upd.ID)
	assert.Equal(t, 35000.0, upd.MonthlyFee)
	assert.Equal(t, "CM2 B", upd.ClassName)
	assert.Len(t, upd.RegistrationFees, 1)

	assert.Len(t, fees.ListClassFees(), 1)
	assert.ErrorIs(t, fees.SetClassMonthlyFee("c1", "CM2", -1), database.ErrInvalidAmount)
}

func TestRegistrationFeesPerClass(t *testing.T) {
	fees := newTestFeeStore(t)

	// Without a fee config the add is a no-op returning an empty id.
	id, err := fees.AddRegistrationFee("c1", models.RegistrationFee{Name: "Inscription", Amount: 10000})
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, fees.SetClassMonthlyFee("c1", "CM2", 30000))
	require.NoError(t, fees.SetClassMonthlyFee("c2", "CE1", 25000))

	id, err = fees.AddRegistrationFee("c1", models.RegistrationFee{Name: "Inscription", Amount: 10000, IsRequired: true})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	_, err = fees.AddRegistrationFee("c1", models.RegistrationFee{Name: "Uniforme", Amount: 7500})
	require.NoError(t, err)

	// Fees attach to one class only.
	c1, _ := fees.GetClassFees("c1")
	c2, _ := fees.GetClassFees("c2")
	assert.Len(t, c1.RegistrationFees, 2)
	assert.Empty(t, c2.RegistrationFees)

	require.NoError(t, fees.RemoveRegistrationFee("c1", id))
	c1, _ = fees.GetClassFees("c1")
	require.Len(t, c1.RegistrationFees, 1)
	assert.Equal(t, "Uniforme", c1.RegistrationFees[0].Name)

	// Absent class or fee id: no-op.
	require.NoError(t, fees.RemoveRegistrationFee("c9", id))
	require.NoError(t, fees.RemoveRegistrationFee("c1", "missing"))

	_, err = fees.AddRegistrationFee("c1", models.RegistrationFee{Name: "bad", Amount: -1})
	assert.ErrorIs(t, err, database.ErrInvalidAmount)
}

func TestGetClassFeesReturnsCopy(t *testing.T) {
	fees := newTestFeeStore(t)
	require.NoError(t, fees.SetClassMonthlyFee("c1", "CM2", 30000))
	_, err := fees.AddRegistrationFee("c1", models.RegistrationFee{Name: "Inscription", Amount: 10000})
	require.NoError(t, err)

	cf, _ := fees.GetClassFees("c1")
	cf.RegistrationFees[0].Amount = 999999

	again, _ := fees.GetClassFees("c1")
	assert.Equal(t, 10000.0, again.RegistrationFees[0].Amount)
}

func TestFeeConfigSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	store := database.NewFlatStore(dir)
	require.NoError(t, store.Initialize())
	fees := NewFeeConfigStore(store)
	require.NoError(t, fees.Load())

	svcID, err := fees.AddService(models.Service{Name: "Transport", Price: 20000})
	require.NoError(t, err)
	require.NoError(t, fees.SetClassMonthlyFee("c1", "CM2", 30000))
	require.NoError(t, store.Close())

	store2 := database.NewFlatStore(dir)
	require.NoError(t, store2.Initialize())
	fees2 := NewFeeConfigStore(store2)
	require.NoError(t, fees2.Load())

	svc, ok := fees2.GetService(svcID)
	require.True(t, ok)
	assert.Equal(t, "Transport", svc.Name)
	cf, ok := fees2.GetClassFees("c1")
	require.True(t, ok)
	assert.Equal(t, 30000.0, cf.MonthlyFee)
}
