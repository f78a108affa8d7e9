package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFacility(t *testing.T, s *Store) *Facility {
	t.Helper()
	fac, err := s.InsertFacility(&Facility{Name: "Stock Clinic", Email: "stock@example.com", Password: "pw"})
	require.NoError(t, err)
	return fac
}

func TestUpsertInventoryIsIdempotentPerVaccine(t *testing.T) {
	s := newTestStore(t)
	fac := seedFacility(t, s)

	first, err := s.UpsertInventory(fac.ID, &InventoryItem{VaccineName: "MMR", Quantity: 10, MinAge: 1, MaxAge: 12})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	// Restocking replaces the row, it does not add a second one.
	second, err := s.UpsertInventory(fac.ID, &InventoryItem{VaccineName: "MMR", Quantity: 15, MinAge: 1, MaxAge: 12})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(15), second.Quantity)

	items, err := s.InventoryByFacility(fac.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(15), items[0].Quantity)
}

func TestUpsertInventoryDefaultsMaxAge(t *testing.T) {
	s := newTestStore(t)
	fac := seedFacility(t, s)

	item, err := s.UpsertInventory(fac.ID, &InventoryItem{VaccineName: "Influenza", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(100), item.MaxAge)
}

func TestFindAvailableInventoryFiltersByAgeAndStock(t *testing.T) {
	s := newTestStore(t)
	fac := seedFacility(t, s)

	_, err := s.UpsertInventory(fac.ID, &InventoryItem{VaccineName: "MMR", Quantity: 10, MinAge: 1, MaxAge: 12})
	require.NoError(t, err)
	_, err = s.UpsertInventory(fac.ID, &InventoryItem{VaccineName: "Shingles", Quantity: 5, MinAge: 50, MaxAge: 100})
	require.NoError(t, err)
	_, err = s.UpsertInventory(fac.ID, &InventoryItem{VaccineName: "Influenza", Quantity: 0})
	require.NoError(t, err)

	age := int64(10)
	items, err := s.FindAvailableInventory(fac.ID, &age)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "MMR", items[0].VaccineName)

	age = 20
	items, err = s.FindAvailableInventory(fac.ID, &age)
	require.NoError(t, err)
	assert.Empty(t, items)

	// No age filter: everything in stock, zero-quantity rows excluded.
	items, err = s.FindAvailableInventory(fac.ID, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "MMR", items[0].VaccineName)
	assert.Equal(t, "Shingles", items[1].VaccineName)
}

func TestRemoveInventory(t *testing.T) {
	s := newTestStore(t)
	fac := seedFacility(t, s)

	item, err := s.UpsertInventory(fac.ID, &InventoryItem{VaccineName: "MMR", Quantity: 10})
	require.NoError(t, err)

	ok, err := s.RemoveInventory(item.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.RemoveInventory(item.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
