package enquiries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/enums"
	"github.com/safariconnector/backend/pkg/pagination"
)

// Repository exposes enquiry persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, enquiry *models.Enquiry) (*models.Enquiry, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Enquiry, error)
	ListByOperator(ctx context.Context, operatorID uuid.UUID, status *enums.EnquiryStatus, cursor *pagination.Cursor, limit int) ([]models.Enquiry, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.EnquiryStatus, to enums.EnquiryStatus) (int64, error)
	FindOperatorByID(ctx context.Context, id uuid.UUID) (*models.Operator, error)
	FindTripByID(ctx context.Context, id uuid.UUID) (*models.Trip, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an enquiries repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, enquiry *models.Enquiry) (*models.Enquiry, error) {
	if err := r.db.WithContext(ctx).Create(enquiry).Error; err != nil {
		return nil, err
	}
	return enquiry, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Enquiry, error) {
	var enquiry models.Enquiry
	err := r.db.WithContext(ctx).
		Preload("Quotes").
		Where("id = ?", id).
		First(&enquiry).Error
	if err != nil {
		return nil, err
	}
	return &enquiry, nil
}

func (r *repository) ListByOperator(ctx context.Context, operatorID uuid.UUID, status *enums.EnquiryStatus, cursor *pagination.Cursor, limit int) ([]models.Enquiry, error) {
	query := r.db.WithContext(ctx).Where("operator_id = ?", operatorID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Enquiry
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// UpdateStatus performs a conditional transition and reports affected rows so
// callers can distinguish missing rows from state conflicts.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.EnquiryStatus, to enums.EnquiryStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Enquiry{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *repository) FindOperatorByID(ctx context.Context, id uuid.UUID) (*models.Operator, error) {
	var operator models.Operator
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&operator).Error
	if err != nil {
		return nil, err
	}
	return &operator, nil
}

func (r *repository) FindTripByID(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}
