package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccountAndFacility(t *testing.T, s *Store) (*Account, *Facility) {
	t.Helper()
	acct, err := s.InsertAccount(&Account{Email: "parent@example.com", Name: "Parent", Password: "pw"})
	require.NoError(t, err)
	fac, err := s.InsertFacility(&Facility{Name: "City Clinic", Email: "clinic@example.com", Password: "pw", Location: "Nashik"})
	require.NoError(t, err)
	return acct, fac
}

func TestCreateAppointmentAndListByAccount(t *testing.T) {
	s := newTestStore(t)
	acct, fac := seedAccountAndFacility(t, s)

	dep, err := s.AddDependent(&Dependent{Name: "Child", Relation: "Daughter", Age: 4}, acct.ID)
	require.NoError(t, err)

	created, err := s.CreateAppointment(&Appointment{
		AccountID:   &acct.ID,
		FacilityID:  fac.ID,
		DependentID: &dep.ID,
		Vaccine:     "MMR",
		Date:        "2026-09-15",
		Time:        "09:30",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, StatusPending, created.Status)

	list, err := s.AppointmentsByAccount(acct.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	require.NotNil(t, got.FacilityName)
	assert.Equal(t, "City Clinic", *got.FacilityName)
	require.NotNil(t, got.DependentName)
	assert.Equal(t, "Child", *got.DependentName)
	require.NotNil(t, got.DependentAge)
	assert.Equal(t, int64(4), *got.DependentAge)
}

func TestAppointmentsByFacilityJoinsAccount(t *testing.T) {
	s := newTestStore(t)
	acct, fac := seedAccountAndFacility(t, s)

	_, err := s.CreateAppointment(&Appointment{
		AccountID:  &acct.ID,
		FacilityID: fac.ID,
		Vaccine:    "Hepatitis B",
		Date:       "2026-09-16",
		Time:       "11:00",
	})
	require.NoError(t, err)

	list, err := s.AppointmentsByFacility(fac.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].AccountName)
	assert.Equal(t, "Parent", *list[0].AccountName)
}

func TestCreateAppointmentUnknownFacility(t *testing.T) {
	s := newTestStore(t)
	acct, _ := seedAccountAndFacility(t, s)

	_, err := s.CreateAppointment(&Appointment{AccountID: &acct.ID, FacilityID: 9999, Vaccine: "MMR"})
	require.Error(t, err)
	assert.IsType(t, &StoreError{}, err)
}

func TestWalkInAppointment(t *testing.T) {
	s := newTestStore(t)
	_, fac := seedAccountAndFacility(t, s)

	age := int64(34)
	detail, err := s.CreateWalkInAppointment(&WalkIn{
		FacilityID:  fac.ID,
		PatientName: "Sanjay Patil",
		PatientAge:  &age,
		Vaccine:     "Influenza",
	})
	require.NoError(t, err)

	assert.Nil(t, detail.AccountID, "walk-ins have no owning account")
	require.NotNil(t, detail.DependentID)
	assert.Equal(t, StatusPending, detail.Status)
	require.NotNil(t, detail.DependentName)
	assert.Equal(t, "Sanjay Patil", *detail.DependentName)
	require.NotNil(t, detail.DependentRelation)
	assert.Equal(t, "Walk-in Patient", *detail.DependentRelation)
	require.NotNil(t, detail.DependentGender)
	assert.Equal(t, "unknown", *detail.DependentGender)

	counts := rowCounts(t, s)
	assert.Equal(t, 1, counts["dependents"])
	assert.Equal(t, 1, counts["appointments"])
}

func TestWalkInRollsBackOnFailure(t *testing.T) {
	s := newTestStore(t)

	// No facilities exist: the appointment insert inside the transaction
	// fails, and the already-inserted dependent must be rolled back with it.
	_, err := s.CreateWalkInAppointment(&WalkIn{FacilityID: 42, PatientName: "Orphan Row"})
	require.Error(t, err)

	counts := rowCounts(t, s)
	assert.Equal(t, 0, counts["dependents"], "dependent insert leaked out of the failed transaction")
	assert.Equal(t, 0, counts["appointments"])
}

func TestSetAppointmentStatus(t *testing.T) {
	s := newTestStore(t)
	acct, fac := seedAccountAndFacility(t, s)

	created, err := s.CreateAppointment(&Appointment{AccountID: &acct.ID, FacilityID: fac.ID, Vaccine: "MMR", Date: "2026-09-17", Time: "14:00"})
	require.NoError(t, err)

	ok, err := s.SetAppointmentStatus(created.ID, StatusCompleted)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := s.AppointmentsByAccount(acct.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, StatusCompleted, list[0].Status)

	ok, err = s.SetAppointmentStatus(9999, StatusCompleted)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.SetAppointmentStatus(created.ID, "cancelled")
	assert.IsType(t, &ValidationError{}, err)
}

func TestCancelAppointmentTwice(t *testing.T) {
	s := newTestStore(t)
	acct, fac := seedAccountAndFacility(t, s)

	created, err := s.CreateAppointment(&Appointment{AccountID: &acct.ID, FacilityID: fac.ID, Vaccine: "MMR", Date: "2026-09-18", Time: "15:00"})
	require.NoError(t, err)

	ok, err := s.CancelAppointment(created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CancelAppointment(created.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second cancel of the same id should report no row")
}
