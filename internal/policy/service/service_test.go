package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fleetModel "motorcover/internal/fleet/models"
	fleetstore "motorcover/internal/fleet/store"
	policystore "motorcover/internal/policy/store"
	"motorcover/pkg/dates"
	dErrors "motorcover/pkg/domain-errors"
)

func newTestService(t *testing.T) (*Service, int64) {
	t.Helper()

	ctx := context.Background()
	fleet := fleetstore.NewInMemory()
	ownerID, err := fleet.AddOwner(ctx, fleetModel.Owner{Name: "Ana Pop"})
	require.NoError(t, err)
	carID, err := fleet.AddCar(ctx, fleetModel.Car{VIN: "VIN12345", OwnerID: ownerID, YearOfManufacture: 2018})
	require.NoError(t, err)

	return New(fleet, policystore.NewInMemory(fleet)), carID
}

func TestIsCoveredBoundaryDays(t *testing.T) {
	svc, carID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, carID, "Allianz",
		dates.MustNew(2024, time.January, 1), dates.MustNew(2024, time.December, 31))
	require.NoError(t, err)

	cases := []struct {
		date string
		want bool
	}{
		{"2023-12-31", false}, // day before the policy starts
		{"2024-01-01", true},  // first covered day
		{"2024-06-15", true},
		{"2024-12-31", true},  // last covered day
		{"2025-01-01", false}, // day after the policy ends
	}
	for _, tc := range cases {
		d, err := dates.Parse(tc.date)
		require.NoError(t, err)
		got, err := svc.IsCovered(ctx, carID, d)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "coverage on %s", tc.date)
	}
}

func TestIsCoveredAnyPolicyMatches(t *testing.T) {
	svc, carID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, carID, "Allianz",
		dates.MustNew(2024, time.January, 1), dates.MustNew(2024, time.June, 30))
	require.NoError(t, err)
	_, err = svc.Create(ctx, carID, "Groupama",
		dates.MustNew(2024, time.September, 1), dates.MustNew(2024, time.December, 31))
	require.NoError(t, err)

	got, err := svc.IsCovered(ctx, carID, dates.MustNew(2024, time.October, 10))
	require.NoError(t, err)
	assert.True(t, got)

	// Gap between the two policies.
	got, err = svc.IsCovered(ctx, carID, dates.MustNew(2024, time.August, 1))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestIsCoveredNoPoliciesIsFalseNotError(t *testing.T) {
	svc, carID := newTestService(t)

	got, err := svc.IsCovered(context.Background(), carID, dates.MustNew(2024, time.June, 15))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestIsCoveredUnknownCar(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.IsCovered(context.Background(), 9999, dates.MustNew(2024, time.June, 15))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestCreateRejectsInvalidInterval(t *testing.T) {
	svc, carID := newTestService(t)
	ctx := context.Background()

	t.Run("start equals end", func(t *testing.T) {
		d := dates.MustNew(2024, time.June, 15)
		_, err := svc.Create(ctx, carID, "Allianz", d, d)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("start after end", func(t *testing.T) {
		_, err := svc.Create(ctx, carID, "Allianz",
			dates.MustNew(2024, time.June, 15), dates.MustNew(2024, time.June, 14))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestCreateRejectsOverlap(t *testing.T) {
	svc, carID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, carID, "Allianz",
		dates.MustNew(2024, time.January, 1), dates.MustNew(2024, time.June, 30))
	require.NoError(t, err)

	// Sharing the boundary day is an overlap.
	_, err = svc.Create(ctx, carID, "Groupama",
		dates.MustNew(2024, time.June, 30), dates.MustNew(2024, time.December, 31))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	// Starting the next day is not.
	created, err := svc.Create(ctx, carID, "Groupama",
		dates.MustNew(2024, time.July, 1), dates.MustNew(2024, time.December, 31))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, carID, created.CarID)
}

func TestCreateUnknownCar(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), 9999, "Allianz",
		dates.MustNew(2024, time.January, 1), dates.MustNew(2024, time.December, 31))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestListByCar(t *testing.T) {
	svc, carID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, carID, "Groupama",
		dates.MustNew(2025, time.January, 1), dates.MustNew(2025, time.December, 31))
	require.NoError(t, err)
	_, err = svc.Create(ctx, carID, "Allianz",
		dates.MustNew(2024, time.January, 1), dates.MustNew(2024, time.December, 31))
	require.NoError(t, err)

	policies, err := svc.ListByCar(ctx, carID)
	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, "Allianz", policies[0].Provider, "ordered by start date")
	assert.Equal(t, "Groupama", policies[1].Provider)

	_, err = svc.ListByCar(ctx, 9999)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
