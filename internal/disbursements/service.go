package disbursements

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
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines operator payout operations.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.Disbursement, error)
	MarkPaid(ctx context.Context, actor authz.Actor, disbursementID uuid.UUID, reference *string) (*models.Disbursement, error)
	ListForOperator(ctx context.Context, actor authz.Actor, params pagination.Params) (*DisbursementList, error)
	ListAll(ctx context.Context, actor authz.Actor, params pagination.Params) (*DisbursementList, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	authz  *authz.Service
}

// NewService builds a disbursements service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, az *authz.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("disbursements repository required")
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

var oneHundred = decimal.NewFromInt(100)

func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.Disbursement, error) {
	if err := s.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if strings.TrimSpace(input.Method) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout method required")
	}

	booking, err := s.repo.FindBookingByID(ctx, input.BookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if !booking.PaymentStatus.IsSettled() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "booking has no verified funds to disburse")
	}

	// The commission snapshot taken when the booking was created governs
	// the split, not the operator's current rate.
	gross := booking.TotalAmount
	commission := gross.Mul(booking.CommissionPercent).Div(oneHundred).Round(2)
	net := gross.Sub(commission)

	disbursement := &models.Disbursement{
		BookingID:         booking.ID,
		OperatorID:        booking.OperatorID,
		GrossAmount:       gross,
		CommissionPercent: booking.CommissionPercent,
		CommissionAmount:  commission,
		NetAmount:         net,
		Currency:          booking.Currency,
		Status:            enums.DisbursementStatusProcessing,
		Method:            strings.TrimSpace(input.Method),
		Notes:             input.Notes,
		Reference:         input.Reference,
		CreatedBy:         actor.UserID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, disbursement)
		if err != nil {
			if dbpkg.IsUniqueViolation(err, "idx_disbursements_booking_id") {
				return pkgerrors.New(pkgerrors.CodeConflict, "booking already has a disbursement")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create disbursement")
		}
		disbursement = created

		if err := repo.SetBookingDisbursementStatus(ctx, booking.ID, enums.DisbursementStatusProcessing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark booking disbursing")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventDisbursementCreated,
			AggregateType: enums.AggregateDisbursement,
			AggregateID:   disbursement.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID: actor.UserID,
				Role:   actor.Role.String(),
			},
			Data: DisbursementCreatedEvent{
				DisbursementID: disbursement.ID,
				BookingID:      disbursement.BookingID,
				OperatorID:     disbursement.OperatorID,
				NetAmount:      disbursement.NetAmount,
				Currency:       disbursement.Currency,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return disbursement, nil
}

func (s *service) MarkPaid(ctx context.Context, actor authz.Actor, disbursementID uuid.UUID, reference *string) (*models.Disbursement, error) {
	if err := s.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if disbursementID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "disbursement id required")
	}

	updates := map[string]any{
		"status":  enums.DisbursementStatusPaid,
		"paid_at": time.Now(),
	}
	if reference != nil {
		updates["reference"] = *reference
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.TransitionStatus(ctx, disbursementID,
			[]enums.DisbursementStatus{enums.DisbursementStatusProcessing},
			updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark disbursement paid")
		}
		if affected == 0 {
			if _, err := repo.FindByID(ctx, disbursementID); err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "disbursement not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load disbursement")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "disbursement is not processing")
		}

		row, err := repo.FindByID(ctx, disbursementID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load disbursement")
		}
		return repo.SetBookingDisbursementStatus(ctx, row.BookingID, enums.DisbursementStatusPaid)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, disbursementID)
}

func (s *service) ListForOperator(ctx context.Context, actor authz.Actor, params pagination.Params) (*DisbursementList, error) {
	operatorID, err := s.authz.RequireOperatorContext(actor)
	if err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByOperator(ctx, operatorID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list disbursements")
	}
	return buildList(rows, limit), nil
}

func (s *service) ListAll(ctx context.Context, actor authz.Actor, params pagination.Params) (*DisbursementList, error) {
	if err := s.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListAll(ctx, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list disbursements")
	}
	return buildList(rows, limit), nil
}

func buildList(rows []models.Disbursement, limit int) *DisbursementList {
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	out := &DisbursementList{Disbursements: make([]DisbursementSummary, 0, len(rows))}
	for _, row := range rows {
		out.Disbursements = append(out.Disbursements, DisbursementSummary{
			ID:                row.ID,
			BookingID:         row.BookingID,
			OperatorID:        row.OperatorID,
			GrossAmount:       row.GrossAmount,
			CommissionPercent: row.CommissionPercent,
			CommissionAmount:  row.CommissionAmount,
			NetAmount:         row.NetAmount,
			Currency:          row.Currency,
			Status:            row.Status,
			Method:            row.Method,
			Notes:             row.Notes,
			Reference:         row.Reference,
			PaidAt:            row.PaidAt,
			CreatedAt:         row.CreatedAt,
		})
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return out
}
