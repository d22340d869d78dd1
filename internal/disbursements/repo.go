package disbursements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/enums"
	"github.com/safariconnector/backend/pkg/pagination"
)

// Repository exposes disbursement persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, disbursement *models.Disbursement) (*models.Disbursement, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Disbursement, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Disbursement, error)
	ListByOperator(ctx context.Context, operatorID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Disbursement, error)
	ListAll(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Disbursement, error)
	// TransitionStatus applies a conditional status move and reports affected rows.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []enums.DisbursementStatus, updates map[string]any) (int64, error)
	FindBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindOperatorByID(ctx context.Context, id uuid.UUID) (*models.Operator, error)
	SetBookingDisbursementStatus(ctx context.Context, bookingID uuid.UUID, status enums.DisbursementStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a disbursements repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, disbursement *models.Disbursement) (*models.Disbursement, error) {
	if err := r.db.WithContext(ctx).Create(disbursement).Error; err != nil {
		return nil, err
	}
	return disbursement, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Disbursement, error) {
	var row models.Disbursement
	err := r.db.WithContext(ctx).
		Preload("Booking").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Disbursement, error) {
	var row models.Disbursement
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListByOperator(ctx context.Context, operatorID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Disbursement, error) {
	query := r.db.WithContext(ctx).Where("operator_id = ?", operatorID)
	return r.list(query, cursor, limit)
}

func (r *repository) ListAll(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Disbursement, error) {
	query := r.db.WithContext(ctx).Model(&models.Disbursement{})
	return r.list(query, cursor, limit)
}

func (r *repository) list(query *gorm.DB, cursor *pagination.Cursor, limit int) ([]models.Disbursement, error) {
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Disbursement
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from []enums.DisbursementStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Disbursement{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) FindBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) SetBookingDisbursementStatus(ctx context.Context, bookingID uuid.UUID, status enums.DisbursementStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		UpdateColumn("disbursement_status", status).Error
}

func (r *repository) FindOperatorByID(ctx context.Context, id uuid.UUID) (*models.Operator, error) {
	var operator models.Operator
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&operator).Error
	if err != nil {
		return nil, err
	}
	return &operator, nil
}
