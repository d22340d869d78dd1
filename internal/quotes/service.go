package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

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

// BookingCreator materializes the booking for an accepted quote inside the
// acceptance transaction.
type BookingCreator interface {
	CreateFromQuote(ctx context.Context, tx *gorm.DB, quote *models.Quote, travellerID uuid.UUID) (*models.Booking, error)
}

// Service defines quote issue and decision operations.
type Service interface {
	Issue(ctx context.Context, actor authz.Actor, input IssueQuoteInput) (*models.Quote, error)
	Decide(ctx context.Context, actor authz.Actor, input DecisionInput) (*DecisionResult, error)
	ListForTraveller(ctx context.Context, actor authz.Actor, params pagination.Params) (*QuoteList, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	bookings BookingCreator
	authz    *authz.Service
}

// NewService builds a quotes service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, bookings BookingCreator, az *authz.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if bookings == nil {
		return nil, fmt.Errorf("booking creator required")
	}
	if az == nil {
		return nil, fmt.Errorf("authorization service required")
	}
	return &service{repo: repo, tx: tx, outbox: ob, bookings: bookings, authz: az}, nil
}

func (s *service) Issue(ctx context.Context, actor authz.Actor, input IssueQuoteInput) (*models.Quote, error) {
	operatorID, err := s.authz.RequireOperatorContext(actor)
	if err != nil {
		return nil, err
	}
	if input.EnquiryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "enquiry id required")
	}
	if input.TotalPrice.IsNegative() || input.TotalPrice.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total price must be positive")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}
	if strings.TrimSpace(input.Itinerary) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "itinerary required")
	}
	if input.ValidUntil != nil && input.ValidUntil.Before(time.Now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid until must be in the future")
	}

	enquiry, err := s.repo.FindEnquiryByID(ctx, input.EnquiryID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "enquiry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load enquiry")
	}
	// An unrouted enquiry is open to quotes from any operator.
	if enquiry.OperatorID != nil && *enquiry.OperatorID != operatorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "enquiry does not belong to operator")
	}
	if enquiry.Status == enums.EnquiryStatusBooked || enquiry.Status == enums.EnquiryStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "enquiry is no longer open for quoting")
	}

	var quote *models.Quote
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindSentByEnquiryAndOperator(ctx, enquiry.ID, operatorID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing quote")
		}

		if existing != nil {
			// Replace the outstanding offer instead of stacking duplicates.
			existing.TripID = input.TripID
			existing.TotalPrice = input.TotalPrice
			existing.Currency = input.Currency
			existing.Itinerary = strings.TrimSpace(input.Itinerary)
			existing.Inclusions = input.Inclusions
			existing.Exclusions = input.Exclusions
			existing.ValidUntil = input.ValidUntil
			existing.Enquiry = nil
			if err := repo.Save(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote")
			}
			quote = existing
		} else {
			created, err := repo.Create(ctx, &models.Quote{
				EnquiryID:  enquiry.ID,
				OperatorID: operatorID,
				TripID:     input.TripID,
				TotalPrice: input.TotalPrice,
				Currency:   input.Currency,
				Itinerary:  strings.TrimSpace(input.Itinerary),
				Inclusions: input.Inclusions,
				Exclusions: input.Exclusions,
				ValidUntil: input.ValidUntil,
				Status:     enums.QuoteStatusSent,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
			}
			quote = created
		}

		if _, err := repo.UpdateEnquiryStatus(ctx, enquiry.ID,
			[]enums.EnquiryStatus{enums.EnquiryStatusNew},
			enums.EnquiryStatusQuoted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark enquiry quoted")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventQuoteIssued,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: QuoteIssuedEvent{
				QuoteID:    quote.ID,
				EnquiryID:  enquiry.ID,
				OperatorID: operatorID,
				TotalPrice: quote.TotalPrice,
				Currency:   quote.Currency,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *service) Decide(ctx context.Context, actor authz.Actor, input DecisionInput) (*DecisionResult, error) {
	if err := s.authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if input.QuoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	if !input.Decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quote decision")
	}

	quote, err := s.repo.FindByID(ctx, input.QuoteID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	if quote.Enquiry == nil || quote.Enquiry.TravellerID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quote is not linked to an account")
	}
	if err := s.authz.RequireTravellerAccess(actor, *quote.Enquiry.TravellerID); err != nil {
		return nil, err
	}
	if quote.ValidUntil != nil && quote.ValidUntil.Before(time.Now()) && input.Decision == enums.QuoteDecisionAccept {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quote has expired")
	}

	travellerID := *quote.Enquiry.TravellerID

	if input.Decision == enums.QuoteDecisionDecline {
		return s.decline(ctx, actor, quote)
	}
	return s.accept(ctx, actor, quote, travellerID)
}

func (s *service) decline(ctx context.Context, actor authz.Actor, quote *models.Quote) (*DecisionResult, error) {
	now := time.Now()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.TransitionStatus(ctx, quote.ID,
			[]enums.QuoteStatus{enums.QuoteStatusSent},
			map[string]any{
				"status":     enums.QuoteStatusDeclined,
				"decided_at": now,
			})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decline quote")
		}
		if affected == 0 {
			return s.decisionConflict(ctx, quote.ID, enums.QuoteStatusDeclined)
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventQuoteDecided,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: QuoteDecidedEvent{
				QuoteID:   quote.ID,
				EnquiryID: quote.EnquiryID,
				Decision:  enums.QuoteDecisionDecline,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	quote.Status = enums.QuoteStatusDeclined
	quote.DecidedAt = &now
	return &DecisionResult{Quote: toSummary(quote)}, nil
}

func (s *service) accept(ctx context.Context, actor authz.Actor, quote *models.Quote, travellerID uuid.UUID) (*DecisionResult, error) {
	now := time.Now()
	var booking *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.TransitionStatus(ctx, quote.ID,
			[]enums.QuoteStatus{enums.QuoteStatusSent},
			map[string]any{
				"status":     enums.QuoteStatusAccepted,
				"decided_at": now,
			})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept quote")
		}
		if affected == 0 {
			return s.decisionConflict(ctx, quote.ID, enums.QuoteStatusAccepted)
		}

		if err := repo.DeclineSiblings(ctx, quote.EnquiryID, quote.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decline sibling quotes")
		}

		if _, err := repo.UpdateEnquiryStatus(ctx, quote.EnquiryID,
			[]enums.EnquiryStatus{enums.EnquiryStatusNew, enums.EnquiryStatusQuoted},
			enums.EnquiryStatusBooked); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark enquiry booked")
		}

		created, err := s.bookings.CreateFromQuote(ctx, tx, quote, travellerID)
		if err != nil {
			return err
		}
		booking = created

		event := outbox.DomainEvent{
			EventType:     enums.EventQuoteDecided,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: QuoteDecidedEvent{
				QuoteID:   quote.ID,
				EnquiryID: quote.EnquiryID,
				Decision:  enums.QuoteDecisionAccept,
				BookingID: &booking.ID,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	quote.Status = enums.QuoteStatusAccepted
	quote.DecidedAt = &now
	return &DecisionResult{
		Quote: toSummary(quote),
		Booking: &BookingRef{
			ID:        booking.ID,
			Reference: booking.Reference,
		},
	}, nil
}

// decisionConflict makes a repeated identical decision a no-op error-wise by
// reporting conflict only when the stored state disagrees with the request.
func (s *service) decisionConflict(ctx context.Context, quoteID uuid.UUID, want enums.QuoteStatus) error {
	current, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	if current.Status == want {
		return pkgerrors.New(pkgerrors.CodeConflict, "quote already decided")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "quote is not open for decisions")
}

func (s *service) ListForTraveller(ctx context.Context, actor authz.Actor, params pagination.Params) (*QuoteList, error) {
	if err := s.authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByTraveller(ctx, actor.UserID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	out := &QuoteList{Quotes: make([]QuoteSummary, 0, len(rows))}
	for i := range rows {
		out.Quotes = append(out.Quotes, *toSummary(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return out, nil
}

func toSummary(quote *models.Quote) *QuoteSummary {
	return &QuoteSummary{
		ID:         quote.ID,
		EnquiryID:  quote.EnquiryID,
		OperatorID: quote.OperatorID,
		TripID:     quote.TripID,
		TotalPrice: quote.TotalPrice,
		Currency:   quote.Currency,
		Itinerary:  quote.Itinerary,
		Inclusions: quote.Inclusions,
		Exclusions: quote.Exclusions,
		ValidUntil: quote.ValidUntil,
		Status:     quote.Status,
		DecidedAt:  quote.DecidedAt,
		CreatedAt:  quote.CreatedAt,
	}
}

func buildActor(actor authz.Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{
		UserID:     actor.UserID,
		OperatorID: actor.OperatorID,
		Role:       actor.Role.String(),
	}
}
