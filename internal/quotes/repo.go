package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/enums"
	"github.com/safariconnector/backend/pkg/pagination"
)

// Repository exposes quote persistence operations, including the enquiry
// status moves that ride along in quote transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	Save(ctx context.Context, quote *models.Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	FindSentByEnquiryAndOperator(ctx context.Context, enquiryID, operatorID uuid.UUID) (*models.Quote, error)
	ListByTraveller(ctx context.Context, travellerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Quote, error)
	// TransitionStatus applies a conditional quote status move and reports affected rows.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []enums.QuoteStatus, updates map[string]any) (int64, error)
	DeclineSiblings(ctx context.Context, enquiryID, acceptedQuoteID uuid.UUID) error
	FindEnquiryByID(ctx context.Context, id uuid.UUID) (*models.Enquiry, error)
	UpdateEnquiryStatus(ctx context.Context, id uuid.UUID, from []enums.EnquiryStatus, to enums.EnquiryStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quotes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) Save(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("Enquiry").
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) FindSentByEnquiryAndOperator(ctx context.Context, enquiryID, operatorID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Where("enquiry_id = ? AND operator_id = ? AND status = ?", enquiryID, operatorID, enums.QuoteStatusSent).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) ListByTraveller(ctx context.Context, travellerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Quote, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN enquiries ON enquiries.id = quotes.enquiry_id").
		Where("enquiries.traveller_id = ?", travellerID)
	if cursor != nil {
		query = query.Where("(quotes.created_at, quotes.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Quote
	err := query.
		Order("quotes.created_at DESC").
		Order("quotes.id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from []enums.QuoteStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) DeclineSiblings(ctx context.Context, enquiryID, acceptedQuoteID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("enquiry_id = ? AND id <> ? AND status = ?", enquiryID, acceptedQuoteID, enums.QuoteStatusSent).
		Updates(map[string]any{
			"status":     enums.QuoteStatusDeclined,
			"decided_at": gorm.Expr("now()"),
		}).Error
}

func (r *repository) FindEnquiryByID(ctx context.Context, id uuid.UUID) (*models.Enquiry, error) {
	var enquiry models.Enquiry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&enquiry).Error
	if err != nil {
		return nil, err
	}
	return &enquiry, nil
}

func (r *repository) UpdateEnquiryStatus(ctx context.Context, id uuid.UUID, from []enums.EnquiryStatus, to enums.EnquiryStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Enquiry{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}
