package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentService_CreatePricesFromQuote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAppointmentService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "client", models.RoleUser)
	cat := testutil.CreateAppointmentCategory(t, db, "Pedicure", "60.00")

	tests := []struct {
		name     string
		duration int
		want     string
	}{
		{"ninety minutes", 90, "90.00"},
		{"one hour", 60, "60.00"},
		{"quarter hour", 15, "15.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := svc.Create(ctx, principalOf(user), CreateAppointmentInput{
				UserID:      user.ID,
				CategoryID:  cat.ID,
				Date:        time.Date(2026, 6, 1, 15, 30, 0, 0, time.UTC),
				Duration:    tt.duration,
				Description: "Spa pedicure",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Price.StringFixed(2))
			assert.Equal(t, models.AppointmentStatusWaiting, a.Status)
			assert.Equal(t, 0, a.Date.Hour(), "time of day is dropped")
		})
	}
}

func TestAppointmentService_CreateValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAppointmentService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "client", models.RoleUser)
	other := testutil.CreateUser(t, db, "other", models.RoleUser)
	cat := testutil.CreateAppointmentCategory(t, db, "Pedicure", "60.00")
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, principalOf(user), CreateAppointmentInput{UserID: user.ID, CategoryID: cat.ID, Date: date, Duration: 0})
	assert.Equal(t, "INVALID_DURATION", ErrorCode(err))

	_, err = svc.Create(ctx, principalOf(user), CreateAppointmentInput{UserID: user.ID, CategoryID: 4242, Date: date, Duration: 30})
	assert.Equal(t, "APPOINTMENT_CATEGORY_NOT_FOUND", ErrorCode(err))

	_, err = svc.Create(ctx, adminPrincipal(), CreateAppointmentInput{UserID: 4242, CategoryID: cat.ID, Date: date, Duration: 30})
	assert.Equal(t, "USER_NOT_FOUND", ErrorCode(err))

	_, err = svc.Create(ctx, principalOf(other), CreateAppointmentInput{UserID: user.ID, CategoryID: cat.ID, Date: date, Duration: 30})
	assert.True(t, errors.Is(err, ErrForbidden))

	var count int64
	require.NoError(t, db.Model(&models.Appointment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAppointmentService_UpdateReprices(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAppointmentService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "client", models.RoleUser)
	cat := testutil.CreateAppointmentCategory(t, db, "Gel", "90.00")

	a, err := svc.Create(ctx, principalOf(user), CreateAppointmentInput{
		UserID: user.ID, CategoryID: cat.ID, Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), Duration: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, "90.00", a.Price.StringFixed(2))

	thirty := 30
	desc := "Quick refill"
	updated, err := svc.Update(ctx, principalOf(user), a.ID, UpdateAppointmentInput{Duration: &thirty, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, 30, updated.Duration)
	assert.Equal(t, "45.00", updated.Price.StringFixed(2))
	assert.Equal(t, "Quick refill", updated.Description)

	zero := 0
	_, err = svc.Update(ctx, principalOf(user), a.ID, UpdateAppointmentInput{Duration: &zero})
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestAppointmentService_StatusListDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAppointmentService(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	bob := testutil.CreateUser(t, db, "bob", models.RoleUser)
	cat := testutil.CreateAppointmentCategory(t, db, "Gel", "60.00")
	a1 := testutil.CreateAppointment(t, db, alice, cat, "60.00")
	testutil.CreateAppointment(t, db, bob, cat, "60.00")

	confirmed, err := svc.ChangeStatus(ctx, adminPrincipal(), a1.ID, models.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, confirmed.Status)

	_, err = svc.ChangeStatus(ctx, adminPrincipal(), a1.ID, "LATE")
	assert.Equal(t, "INVALID_STATUS", ErrorCode(err))
	_, err = svc.ChangeStatus(ctx, adminPrincipal(), 4242, models.AppointmentStatusCancelled)
	assert.True(t, errors.Is(err, ErrNotFound))

	all, err := svc.List(ctx, adminPrincipal(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.List(ctx, principalOf(alice), uintPtr(bob.ID))
	require.NoError(t, err)
	require.Len(t, own, 1, "non-admin filter is pinned to the caller")
	assert.Equal(t, alice.ID, own[0].UserID)

	_, err = svc.Get(ctx, principalOf(bob), a1.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	assert.True(t, errors.Is(svc.Delete(ctx, principalOf(bob), a1.ID), ErrForbidden))
	require.NoError(t, svc.Delete(ctx, principalOf(alice), a1.ID))
	assert.True(t, errors.Is(svc.Delete(ctx, principalOf(alice), a1.ID), ErrNotFound))

	all, err = svc.List(ctx, adminPrincipal(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 1, "deleting a missing appointment leaves the store unchanged")
}

func TestAppointmentService_BookedDays(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAppointmentService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "client", models.RoleUser)
	cat := testutil.CreateAppointmentCategory(t, db, "Gel", "60.00")

	days := []time.Time{
		time.Date(2026, 7, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 2, 16, 0, 0, 0, time.UTC),
	}
	for _, d := range days {
		_, err := svc.Create(ctx, principalOf(user), CreateAppointmentInput{UserID: user.ID, CategoryID: cat.ID, Date: d, Duration: 30})
		require.NoError(t, err)
	}

	booked, err := svc.BookedDays(ctx)
	require.NoError(t, err)
	require.Len(t, booked, 2)
	assert.Equal(t, "2026-07-01", booked[0].Format(time.DateOnly))
	assert.Equal(t, "2026-07-02", booked[1].Format(time.DateOnly))
}
