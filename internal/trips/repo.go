package trips

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/pagination"
)

// Repository exposes trip persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, trip *models.Trip) (*models.Trip, error)
	Update(ctx context.Context, trip *models.Trip) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	FindBySlug(ctx context.Context, slug string) (*models.Trip, error)
	ListPublished(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Trip, error)
	ListByOperator(ctx context.Context, operatorID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Trip, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a trips repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	if err := r.db.WithContext(ctx).Create(trip).Error; err != nil {
		return nil, err
	}
	return trip, nil
}

func (r *repository) Update(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Save(trip).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).
		Preload("Operator").
		Where("id = ?", id).
		First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).
		Preload("Operator").
		Where("slug = ?", slug).
		First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repository) ListPublished(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Trip, error) {
	query := r.db.WithContext(ctx).Where("is_published = ?", true)
	return r.list(query, cursor, limit)
}

func (r *repository) ListByOperator(ctx context.Context, operatorID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Trip, error) {
	query := r.db.WithContext(ctx).Where("operator_id = ?", operatorID)
	return r.list(query, cursor, limit)
}

func (r *repository) list(query *gorm.DB, cursor *pagination.Cursor, limit int) ([]models.Trip, error) {
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Trip
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
