package bookings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/internal/authz"
	dbpkg "github.com/safariconnector/backend/pkg/db"
	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/enums"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/outbox"
	"github.com/safariconnector/backend/pkg/pagination"
	"github.com/safariconnector/backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines booking lifecycle operations.
type Service interface {
	// CreateFromQuote materializes the booking for an accepted quote inside the
	// caller's transaction. Price and currency are copied from the quote as-is.
	CreateFromQuote(ctx context.Context, tx *gorm.DB, quote *models.Quote, travellerID uuid.UUID) (*models.Booking, error)
	// CreateDirect books a published trip without the enquiry/quote flow.
	// The total is the trip's per-person price multiplied by the party size.
	CreateDirect(ctx context.Context, actor authz.Actor, input CreateDirectInput) (*models.Booking, error)
	Get(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*models.Booking, error)
	ListForTraveller(ctx context.Context, actor authz.Actor, params pagination.Params) (*BookingList, error)
	ListForOperator(ctx context.Context, actor authz.Actor, filters ListFilters, params pagination.Params) (*BookingList, error)
	ListAll(ctx context.Context, actor authz.Actor, filters ListFilters, params pagination.Params) (*BookingList, error)
	SubmitPaymentProof(ctx context.Context, actor authz.Actor, input SubmitPaymentProofInput) (*models.Booking, error)
	VerifyPayment(ctx context.Context, actor authz.Actor, input VerifyPaymentInput) (*models.Booking, error)
	Confirm(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*models.Booking, error)
	NudgePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
	ExpireOverdue(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	authz  *authz.Service
}

// NewService builds a bookings service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, az *authz.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
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

func newReference() string {
	return "SC-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *service) CreateFromQuote(ctx context.Context, tx *gorm.DB, quote *models.Quote, travellerID uuid.UUID) (*models.Booking, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if quote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote required")
	}
	if travellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "traveller id required")
	}

	repo := s.repo.WithTx(tx)

	operator, err := repo.FindOperatorByID(ctx, quote.OperatorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load operator")
	}

	// Party size and travel dates come off the enquiry the quote answered.
	pax := 1
	var dateFrom, dateTo *time.Time
	if enquiry := quote.Enquiry; enquiry != nil {
		if enquiry.PartySize > 0 {
			pax = enquiry.PartySize
		}
		dateFrom = enquiry.TravelDateFrom
		dateTo = enquiry.TravelDateTo
	}

	quoteID := quote.ID
	enquiryID := quote.EnquiryID
	booking := &models.Booking{
		QuoteID:           &quoteID,
		EnquiryID:         &enquiryID,
		TravellerID:       travellerID,
		OperatorID:        quote.OperatorID,
		Reference:         newReference(),
		Status:            enums.BookingStatusAwaitingPayment,
		PaymentStatus:     enums.PaymentStatusUnpaid,
		Pax:               pax,
		DateFrom:          dateFrom,
		DateTo:            dateTo,
		TotalAmount:       quote.TotalPrice,
		Currency:          quote.Currency,
		CommissionPercent: operator.CommissionPercent,
		Meta: types.JSONMap{
			"from_quote":      true,
			"source_quote_id": quote.ID.String(),
		},
	}

	created, err := repo.Create(ctx, booking)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_bookings_quote_id") {
			// The quote already produced a booking; acceptance is idempotent.
			existing, findErr := repo.FindByQuoteID(ctx, quote.ID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load existing booking")
			}
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventBookingCreated,
		AggregateType: enums.AggregateBooking,
		AggregateID:   created.ID,
		Version:       1,
		Data: BookingCreatedEvent{
			BookingID:   created.ID,
			QuoteID:     created.QuoteID,
			EnquiryID:   created.EnquiryID,
			TravellerID: created.TravellerID,
			OperatorID:  created.OperatorID,
			Reference:   created.Reference,
			TotalAmount: created.TotalAmount,
			Currency:    created.Currency,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) CreateDirect(ctx context.Context, actor authz.Actor, input CreateDirectInput) (*models.Booking, error) {
	if err := s.authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if input.TripID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id required")
	}
	if input.Pax < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party size must be at least 1")
	}
	if input.DateFrom.IsZero() || input.DateTo.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "travel dates required")
	}
	if !input.DateTo.After(input.DateFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}

	trip, err := s.repo.FindTripByID(ctx, input.TripID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
	}
	if !trip.IsPublished {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
	}
	if input.Pax > trip.MaxGroupSize {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party size exceeds the trip's group limit")
	}

	operator, err := s.repo.FindOperatorByID(ctx, trip.OperatorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load operator")
	}
	if !operator.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "operator is not accepting bookings")
	}

	tripID := trip.ID
	dateFrom := input.DateFrom
	dateTo := input.DateTo
	booking := &models.Booking{
		TripID:            &tripID,
		TravellerID:       actor.UserID,
		OperatorID:        trip.OperatorID,
		Reference:         newReference(),
		Status:            enums.BookingStatusAwaitingPayment,
		PaymentStatus:     enums.PaymentStatusUnpaid,
		DateFrom:          &dateFrom,
		DateTo:            &dateTo,
		Pax:               input.Pax,
		TotalAmount:       trip.PriceFrom.Mul(decimal.NewFromInt(int64(input.Pax))),
		Currency:          trip.Currency,
		CommissionPercent: operator.CommissionPercent,
		Meta:              types.JSONMap{"from_quote": false},
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, booking)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
		}
		booking = created

		event := outbox.DomainEvent{
			EventType:     enums.EventBookingCreated,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: BookingCreatedEvent{
				BookingID:   booking.ID,
				TripID:      booking.TripID,
				TravellerID: booking.TravellerID,
				OperatorID:  booking.OperatorID,
				Reference:   booking.Reference,
				TotalAmount: booking.TotalAmount,
				Currency:    booking.Currency,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *service) load(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return booking, nil
}

func (s *service) Get(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case enums.RoleAdmin:
	case enums.RoleOperator:
		if err := s.authz.RequireOperatorAccess(actor, booking.OperatorID); err != nil {
			return nil, err
		}
	default:
		if err := s.authz.RequireTravellerAccess(actor, booking.TravellerID); err != nil {
			return nil, err
		}
	}
	return booking, nil
}

func (s *service) ListForTraveller(ctx context.Context, actor authz.Actor, params pagination.Params) (*BookingList, error) {
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return buildBookingList(rows, limit), nil
}

func (s *service) ListForOperator(ctx context.Context, actor authz.Actor, filters ListFilters, params pagination.Params) (*BookingList, error) {
	operatorID, err := s.authz.RequireOperatorContext(actor)
	if err != nil {
		return nil, err
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking status")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByOperator(ctx, operatorID, filters.Status, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return buildBookingList(rows, limit), nil
}

func (s *service) ListAll(ctx context.Context, actor authz.Actor, filters ListFilters, params pagination.Params) (*BookingList, error) {
	if err := s.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking status")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListAll(ctx, filters.Status, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return buildBookingList(rows, limit), nil
}

func (s *service) SubmitPaymentProof(ctx context.Context, actor authz.Actor, input SubmitPaymentProofInput) (*models.Booking, error) {
	if strings.TrimSpace(input.PaymentRef) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference required")
	}

	booking, err := s.load(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireTravellerAccess(actor, booking.TravellerID); err != nil {
		return nil, err
	}
	if err := ValidateTransition(booking.Status, enums.BookingStatusPaymentSubmitted); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.TransitionStatus(ctx, booking.ID,
			SourcesFor(enums.BookingStatusPaymentSubmitted),
			map[string]any{
				"status":               enums.BookingStatusPaymentSubmitted,
				"payment_status":       enums.PaymentStatusProofSubmitted,
				"payment_ref":          input.PaymentRef,
				"payment_note":         input.Note,
				"payment_submitted_at": now,
			})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit payment proof")
		}
		if affected == 0 {
			return s.transitionConflict(ctx, booking.ID)
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventBookingPaymentSubmitted,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: PaymentSubmittedEvent{
				BookingID:  booking.ID,
				OperatorID: booking.OperatorID,
				PaymentRef: input.PaymentRef,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, booking.ID)
}

func (s *service) VerifyPayment(ctx context.Context, actor authz.Actor, input VerifyPaymentInput) (*models.Booking, error) {
	if err := s.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if !input.Level.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment level")
	}

	booking, err := s.load(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(booking.Status, enums.BookingStatusPaymentVerified); err != nil {
		return nil, err
	}

	now := time.Now()
	paymentStatus := input.Level.PaymentStatus()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.TransitionStatus(ctx, booking.ID,
			SourcesFor(enums.BookingStatusPaymentVerified),
			map[string]any{
				"status":              enums.BookingStatusPaymentVerified,
				"payment_status":      paymentStatus,
				"payment_verified_at": now,
				"verified_by":         actor.UserID,
			})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify payment")
		}
		if affected == 0 {
			return s.transitionConflict(ctx, booking.ID)
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPaymentVerified,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: PaymentVerifiedEvent{
				BookingID:     booking.ID,
				OperatorID:    booking.OperatorID,
				TravellerID:   booking.TravellerID,
				Level:         input.Level,
				PaymentStatus: paymentStatus,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, booking.ID)
}

func (s *service) Confirm(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireOperatorAccess(actor, booking.OperatorID); err != nil {
		return nil, err
	}
	if err := ValidateTransition(booking.Status, enums.BookingStatusConfirmed); err != nil {
		return nil, err
	}
	if !booking.PaymentStatus.IsSettled() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment not verified")
	}

	now := time.Now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.TransitionStatus(ctx, booking.ID,
			SourcesFor(enums.BookingStatusConfirmed),
			map[string]any{
				"status":       enums.BookingStatusConfirmed,
				"confirmed_at": now,
			})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm booking")
		}
		if affected == 0 {
			return s.transitionConflict(ctx, booking.ID)
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventBookingConfirmed,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: BookingConfirmedEvent{
				BookingID:   booking.ID,
				OperatorID:  booking.OperatorID,
				TravellerID: booking.TravellerID,
				Reference:   booking.Reference,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, booking.ID)
}

func (s *service) Cancel(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case enums.RoleAdmin:
	case enums.RoleOperator:
		if err := s.authz.RequireOperatorAccess(actor, booking.OperatorID); err != nil {
			return nil, err
		}
	default:
		if err := s.authz.RequireTravellerAccess(actor, booking.TravellerID); err != nil {
			return nil, err
		}
	}
	if err := ValidateTransition(booking.Status, enums.BookingStatusCancelled); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.TransitionStatus(ctx, booking.ID,
			SourcesFor(enums.BookingStatusCancelled),
			map[string]any{
				"status":       enums.BookingStatusCancelled,
				"cancelled_at": now,
			})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel booking")
		}
		if affected == 0 {
			return s.transitionConflict(ctx, booking.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, booking.ID)
}

func (s *service) NudgePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	rows, err := s.repo.ListUnnudgedAwaitingPaymentBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending bookings")
	}

	nudged := 0
	for _, booking := range rows {
		booking := booking
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			affected, err := repo.TransitionStatus(ctx, booking.ID,
				[]enums.BookingStatus{enums.BookingStatusAwaitingPayment},
				map[string]any{"nudged_at": time.Now()})
			if err != nil {
				return err
			}
			if affected == 0 {
				return nil
			}

			event := outbox.DomainEvent{
				EventType:     enums.EventBookingPaymentNudge,
				AggregateType: enums.AggregateBooking,
				AggregateID:   booking.ID,
				Version:       1,
				Data: PaymentNudgeEvent{
					BookingID:   booking.ID,
					TravellerID: booking.TravellerID,
					Reference:   booking.Reference,
				},
			}
			return s.outbox.Emit(ctx, tx, event)
		})
		if err != nil {
			return nudged, err
		}
		nudged++
	}
	return nudged, nil
}

func (s *service) ExpireOverdue(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	rows, err := s.repo.ListAwaitingPaymentBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue bookings")
	}

	expired := 0
	for _, booking := range rows {
		booking := booking
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			affected, err := repo.TransitionStatus(ctx, booking.ID,
				[]enums.BookingStatus{enums.BookingStatusAwaitingPayment},
				map[string]any{
					"status":     enums.BookingStatusExpired,
					"expired_at": time.Now(),
				})
			if err != nil {
				return err
			}
			if affected == 0 {
				return nil
			}

			event := outbox.DomainEvent{
				EventType:     enums.EventBookingExpired,
				AggregateType: enums.AggregateBooking,
				AggregateID:   booking.ID,
				Version:       1,
				Data: BookingExpiredEvent{
					BookingID:   booking.ID,
					TravellerID: booking.TravellerID,
					OperatorID:  booking.OperatorID,
				},
			}
			return s.outbox.Emit(ctx, tx, event)
		})
		if err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}

// transitionConflict reloads the row to separate missing bookings from races.
func (s *service) transitionConflict(ctx context.Context, bookingID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, bookingID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "booking transition not allowed in current state")
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

func buildBookingList(rows []models.Booking, limit int) *BookingList {
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	out := &BookingList{Bookings: make([]BookingSummary, 0, len(rows))}
	for _, booking := range rows {
		out.Bookings = append(out.Bookings, BookingSummary{
			ID:                 booking.ID,
			Reference:          booking.Reference,
			QuoteID:            booking.QuoteID,
			EnquiryID:          booking.EnquiryID,
			TripID:             booking.TripID,
			OperatorID:         booking.OperatorID,
			Status:             booking.Status,
			PaymentStatus:      booking.PaymentStatus,
			DisbursementStatus: booking.DisbursementStatus,
			DateFrom:           booking.DateFrom,
			DateTo:             booking.DateTo,
			Pax:                booking.Pax,
			TotalAmount:        booking.TotalAmount,
			Currency:           booking.Currency,
			CreatedAt:          booking.CreatedAt,
		})
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return out
}
