package enquiries

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/internal/authz"
	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/enums"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/outbox"
	"github.com/safariconnector/backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines enquiry intake and triage operations.
type Service interface {
	Create(ctx context.Context, input CreateEnquiryInput) (*models.Enquiry, error)
	Get(ctx context.Context, actor authz.Actor, enquiryID uuid.UUID) (*models.Enquiry, error)
	ListForOperator(ctx context.Context, actor authz.Actor, filters ListFilters, params pagination.Params) (*EnquiryList, error)
	Close(ctx context.Context, actor authz.Actor, enquiryID uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	authz  *authz.Service
}

// NewService builds an enquiries service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, az *authz.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("enquiries repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if az == nil {
		return nil, fmt.Errorf("authorization service required")
	}
	return &service{repo: repo, tx: tx, outbox: ob, authz: az}, nil
}

func (s *service) Create(ctx context.Context, input CreateEnquiryInput) (*models.Enquiry, error) {
	if input.OperatorID != nil && *input.OperatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator id must not be empty")
	}
	if strings.TrimSpace(input.TravellerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "traveller name required")
	}
	if _, err := mail.ParseAddress(input.TravellerEmail); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid traveller email required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}
	if input.PartySize <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party size must be positive")
	}
	if input.TravelDateFrom != nil && input.TravelDateTo != nil && input.TravelDateTo.Before(*input.TravelDateFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "travel date range is inverted")
	}
	source := input.Source
	if source == "" {
		source = enums.EnquirySourceManual
	}
	if !source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid enquiry source")
	}

	operatorID := input.OperatorID
	if input.TripID != nil {
		trip, err := s.repo.FindTripByID(ctx, *input.TripID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
		}
		if operatorID == nil {
			// A trip enquiry is always routed to the trip's operator.
			tripOperator := trip.OperatorID
			operatorID = &tripOperator
		} else if trip.OperatorID != *operatorID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip does not belong to operator")
		}
	}

	if operatorID != nil {
		operator, err := s.repo.FindOperatorByID(ctx, *operatorID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "operator not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load operator")
		}
		if !operator.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "operator is not accepting enquiries")
		}
	}

	enquiry := &models.Enquiry{
		TravellerID:    input.TravellerID,
		OperatorID:     operatorID,
		TripID:         input.TripID,
		TravellerName:  strings.TrimSpace(input.TravellerName),
		TravellerEmail: strings.ToLower(strings.TrimSpace(input.TravellerEmail)),
		TravellerPhone: input.TravellerPhone,
		PartySize:      input.PartySize,
		TravelDateFrom: input.TravelDateFrom,
		TravelDateTo:   input.TravelDateTo,
		Message:        strings.TrimSpace(input.Message),
		Source:         source,
		Status:         enums.EnquiryStatusNew,
		Context:        input.Context,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, enquiry)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create enquiry")
		}
		enquiry = created

		event := outbox.DomainEvent{
			EventType:     enums.EventEnquiryCreated,
			AggregateType: enums.AggregateEnquiry,
			AggregateID:   enquiry.ID,
			Version:       1,
			Data: EnquiryCreatedEvent{
				EnquiryID:      enquiry.ID,
				OperatorID:     enquiry.OperatorID,
				TripID:         enquiry.TripID,
				TravellerEmail: enquiry.TravellerEmail,
				Source:         enquiry.Source,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return enquiry, nil
}

func (s *service) Get(ctx context.Context, actor authz.Actor, enquiryID uuid.UUID) (*models.Enquiry, error) {
	if enquiryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "enquiry id required")
	}
	enquiry, err := s.repo.FindByID(ctx, enquiryID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "enquiry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load enquiry")
	}
	// Unrouted enquiries have no owning operator and stay admin-only.
	if enquiry.OperatorID == nil {
		if err := s.authz.RequireAdmin(actor); err != nil {
			return nil, err
		}
		return enquiry, nil
	}
	if err := s.authz.RequireOperatorAccess(actor, *enquiry.OperatorID); err != nil {
		return nil, err
	}
	return enquiry, nil
}

func (s *service) ListForOperator(ctx context.Context, actor authz.Actor, filters ListFilters, params pagination.Params) (*EnquiryList, error) {
	operatorID, err := s.authz.RequireOperatorContext(actor)
	if err != nil {
		return nil, err
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid enquiry status")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByOperator(ctx, operatorID, filters.Status, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list enquiries")
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	out := &EnquiryList{Enquiries: make([]EnquirySummary, 0, len(rows))}
	for _, row := range rows {
		out.Enquiries = append(out.Enquiries, EnquirySummary{
			ID:             row.ID,
			TripID:         row.TripID,
			TravellerName:  row.TravellerName,
			TravellerEmail: row.TravellerEmail,
			PartySize:      row.PartySize,
			TravelDateFrom: row.TravelDateFrom,
			TravelDateTo:   row.TravelDateTo,
			Message:        row.Message,
			Source:         row.Source,
			Status:         row.Status,
			CreatedAt:      row.CreatedAt,
		})
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return out, nil
}

func (s *service) Close(ctx context.Context, actor authz.Actor, enquiryID uuid.UUID) error {
	enquiry, err := s.Get(ctx, actor, enquiryID)
	if err != nil {
		return err
	}

	affected, err := s.repo.UpdateStatus(ctx, enquiry.ID,
		[]enums.EnquiryStatus{enums.EnquiryStatusNew, enums.EnquiryStatusQuoted},
		enums.EnquiryStatusClosed)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close enquiry")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "enquiry cannot be closed in current state")
	}
	return nil
}
