package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/enums"
	"github.com/safariconnector/backend/pkg/pagination"
)

// Repository exposes booking persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*models.Booking, error)
	FindTripByID(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	FindOperatorByID(ctx context.Context, operatorID uuid.UUID) (*models.Operator, error)
	ListByTraveller(ctx context.Context, travellerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Booking, error)
	ListByOperator(ctx context.Context, operatorID uuid.UUID, status *enums.BookingStatus, cursor *pagination.Cursor, limit int) ([]models.Booking, error)
	ListAll(ctx context.Context, status *enums.BookingStatus, cursor *pagination.Cursor, limit int) ([]models.Booking, error)
	// TransitionStatus applies updates only when the booking is in one of the
	// from statuses, returning the affected row count for conflict detection.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []enums.BookingStatus, updates map[string]any) (int64, error)
	ListAwaitingPaymentBefore(ctx context.Context, createdBefore time.Time, limit int) ([]models.Booking, error)
	ListUnnudgedAwaitingPaymentBefore(ctx context.Context, createdBefore time.Time, limit int) ([]models.Booking, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Quote").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindTripByID(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).
		Where("id = ?", tripID).
		First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repository) FindOperatorByID(ctx context.Context, operatorID uuid.UUID) (*models.Operator, error) {
	var operator models.Operator
	err := r.db.WithContext(ctx).
		Where("id = ?", operatorID).
		First(&operator).Error
	if err != nil {
		return nil, err
	}
	return &operator, nil
}

func (r *repository) ListByTraveller(ctx context.Context, travellerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).Where("traveller_id = ?", travellerID)
	return r.list(query, cursor, limit)
}

func (r *repository) ListByOperator(ctx context.Context, operatorID uuid.UUID, status *enums.BookingStatus, cursor *pagination.Cursor, limit int) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).Where("operator_id = ?", operatorID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return r.list(query, cursor, limit)
}

func (r *repository) ListAll(ctx context.Context, status *enums.BookingStatus, cursor *pagination.Cursor, limit int) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).Model(&models.Booking{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return r.list(query, cursor, limit)
}

func (r *repository) list(query *gorm.DB, cursor *pagination.Cursor, limit int) ([]models.Booking, error) {
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Booking
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from []enums.BookingStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) ListAwaitingPaymentBefore(ctx context.Context, createdBefore time.Time, limit int) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.BookingStatusAwaitingPayment, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListUnnudgedAwaitingPaymentBefore(ctx context.Context, createdBefore time.Time, limit int) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ? AND nudged_at IS NULL", enums.BookingStatusAwaitingPayment, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
