package bookings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/enums"
	"github.com/safariconnector/backend/pkg/pagination"
)

func setupBookingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	bookings := `
CREATE TABLE IF NOT EXISTS bookings (
  id TEXT PRIMARY KEY,
  quote_id TEXT,
  enquiry_id TEXT,
  trip_id TEXT,
  traveller_id TEXT NOT NULL,
  operator_id TEXT NOT NULL,
  reference TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'awaiting_payment',
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  date_from DATETIME,
  date_to DATETIME,
  pax INTEGER NOT NULL DEFAULT 1,
  total_amount TEXT NOT NULL,
  currency TEXT NOT NULL,
  commission_percent TEXT NOT NULL DEFAULT '10',
  payment_ref TEXT,
  payment_note TEXT,
  payment_submitted_at DATETIME,
  payment_verified_at DATETIME,
  verified_by TEXT,
  disbursement_status TEXT,
  meta TEXT,
  confirmed_at DATETIME,
  cancelled_at DATETIME,
  expired_at DATETIME,
  nudged_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(bookings).Error)
	return db
}

func newBooking(t *testing.T, db *gorm.DB, travellerID uuid.UUID, status enums.BookingStatus, createdAt time.Time) *models.Booking {
	t.Helper()

	booking := &models.Booking{
		ID:          uuid.New(),
		TravellerID: travellerID,
		OperatorID:  uuid.New(),
		Reference:   fmt.Sprintf("SC-%s", uuid.NewString()[:8]),
		Status:      status,
		TotalAmount: decimal.NewFromInt(2500),
		Currency:    enums.CurrencyUSD,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func TestRepositoryTransitionStatusConditional(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	booking := newBooking(t, db, uuid.New(), enums.BookingStatusAwaitingPayment, time.Now().UTC())

	rows, err := repo.TransitionStatus(ctx, booking.ID,
		[]enums.BookingStatus{enums.BookingStatusAwaitingPayment},
		map[string]any{"status": enums.BookingStatusPaymentSubmitted},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// Same precondition again hits zero rows once the status moved on.
	rows, err = repo.TransitionStatus(ctx, booking.ID,
		[]enums.BookingStatus{enums.BookingStatusAwaitingPayment},
		map[string]any{"status": enums.BookingStatusPaymentSubmitted},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	stored, err := repo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusPaymentSubmitted, stored.Status)
}

func TestRepositoryListByTravellerPaginates(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	travellerID := uuid.New()
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		newBooking(t, db, travellerID, enums.BookingStatusAwaitingPayment, base.Add(time.Duration(i)*time.Hour))
	}
	newBooking(t, db, uuid.New(), enums.BookingStatusAwaitingPayment, base)

	first, err := repo.ListByTraveller(ctx, travellerID, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	second, err := repo.ListByTraveller(ctx, travellerID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, second[0].CreatedAt.Before(first[1].CreatedAt))
}

func TestRepositoryListUnnudgedAwaitingPaymentBefore(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cutoff := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	stale := newBooking(t, db, uuid.New(), enums.BookingStatusAwaitingPayment, cutoff.Add(-48*time.Hour))
	nudgedAt := cutoff.Add(-24 * time.Hour)
	nudged := newBooking(t, db, uuid.New(), enums.BookingStatusAwaitingPayment, cutoff.Add(-48*time.Hour))
	require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", nudged.ID).Update("nudged_at", nudgedAt).Error)
	newBooking(t, db, uuid.New(), enums.BookingStatusAwaitingPayment, cutoff.Add(time.Hour))
	newBooking(t, db, uuid.New(), enums.BookingStatusConfirmed, cutoff.Add(-48*time.Hour))

	rows, err := repo.ListUnnudgedAwaitingPaymentBefore(ctx, cutoff, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, stale.ID, rows[0].ID)
}

func TestRepositoryListAllFiltersByStatus(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	newBooking(t, db, uuid.New(), enums.BookingStatusAwaitingPayment, base)
	submitted := newBooking(t, db, uuid.New(), enums.BookingStatusPaymentSubmitted, base.Add(time.Hour))

	status := enums.BookingStatusPaymentSubmitted
	rows, err := repo.ListAll(ctx, &status, nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, submitted.ID, rows[0].ID)
}
