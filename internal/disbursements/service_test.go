package disbursements

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/internal/authz"
	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/enums"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/outbox"
	"github.com/safariconnector/backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type fakeRepository struct {
	booking      *models.Booking
	disbursement *models.Disbursement
	listed       []models.Disbursement

	createErr          error
	created            *models.Disbursement
	transitionAffected int64
	transitionUpdates  map[string]any
	bookingStatusSet   enums.DisbursementStatus
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, disbursement *models.Disbursement) (*models.Disbursement, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if disbursement.ID == uuid.Nil {
		disbursement.ID = uuid.New()
	}
	f.created = disbursement
	return disbursement, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Disbursement, error) {
	if f.disbursement == nil || f.disbursement.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.disbursement, nil
}

func (f *fakeRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Disbursement, error) {
	if f.disbursement == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.disbursement, nil
}

func (f *fakeRepository) ListByOperator(ctx context.Context, operatorID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Disbursement, error) {
	return f.listed, nil
}

func (f *fakeRepository) ListAll(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Disbursement, error) {
	return f.listed, nil
}

func (f *fakeRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []enums.DisbursementStatus, updates map[string]any) (int64, error) {
	f.transitionUpdates = updates
	return f.transitionAffected, nil
}

func (f *fakeRepository) FindBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.booking, nil
}

func (f *fakeRepository) FindOperatorByID(ctx context.Context, id uuid.UUID) (*models.Operator, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) SetBookingDisbursementStatus(ctx context.Context, bookingID uuid.UUID, status enums.DisbursementStatus) error {
	f.bookingStatusSet = status
	return nil
}

func buildTestService(t *testing.T, repo *fakeRepository) (Service, *stubOutbox) {
	t.Helper()
	ob := &stubOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, ob, authz.NewService())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, ob
}

func adminActor() authz.Actor {
	return authz.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func settledBooking() *models.Booking {
	return &models.Booking{
		ID:                uuid.New(),
		OperatorID:        uuid.New(),
		TravellerID:       uuid.New(),
		Status:            enums.BookingStatusConfirmed,
		PaymentStatus:     enums.PaymentStatusPaidInFull,
		TotalAmount:       decimal.NewFromInt(2000),
		CommissionPercent: decimal.NewFromFloat(12.5),
		Currency:          enums.Currency("USD"),
	}
}

func TestCreateSplitsBySnapshotCommission(t *testing.T) {
	booking := settledBooking()
	repo := &fakeRepository{booking: booking}
	svc, ob := buildTestService(t, repo)

	row, err := svc.Create(context.Background(), adminActor(), CreateInput{
		BookingID: booking.ID,
		Method:    "bank_transfer",
	})
	if err != nil {
		t.Fatalf("create disbursement: %v", err)
	}

	if !row.GrossAmount.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected gross 2000, got %s", row.GrossAmount)
	}
	if !row.CommissionAmount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected commission 250, got %s", row.CommissionAmount)
	}
	if !row.NetAmount.Equal(decimal.NewFromInt(1750)) {
		t.Fatalf("expected net 1750, got %s", row.NetAmount)
	}
	if !row.CommissionPercent.Equal(booking.CommissionPercent) {
		t.Fatalf("expected booking commission snapshot, got %s", row.CommissionPercent)
	}
	if row.Status != enums.DisbursementStatusProcessing {
		t.Fatalf("expected processing status, got %s", row.Status)
	}
	if repo.bookingStatusSet != enums.DisbursementStatusProcessing {
		t.Fatalf("expected booking marked processing, got %s", repo.bookingStatusSet)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventDisbursementCreated {
		t.Fatalf("expected disbursement created event, got %+v", ob.events)
	}
}

func TestCreateRequiresSettledPayment(t *testing.T) {
	booking := settledBooking()
	booking.PaymentStatus = enums.PaymentStatusProofSubmitted
	repo := &fakeRepository{booking: booking}
	svc, _ := buildTestService(t, repo)

	_, err := svc.Create(context.Background(), adminActor(), CreateInput{
		BookingID: booking.ID,
		Method:    "bank_transfer",
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc, _ := buildTestService(t, &fakeRepository{})
	_, err := svc.Create(context.Background(), authz.Actor{UserID: uuid.New(), Role: enums.RoleOperator}, CreateInput{
		BookingID: uuid.New(),
		Method:    "bank_transfer",
	})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateSecondDisbursementConflicts(t *testing.T) {
	booking := settledBooking()
	repo := &fakeRepository{
		booking:   booking,
		createErr: errors.New(`duplicate key value violates unique constraint "idx_disbursements_booking_id"`),
	}
	svc, _ := buildTestService(t, repo)

	_, err := svc.Create(context.Background(), adminActor(), CreateInput{
		BookingID: booking.ID,
		Method:    "bank_transfer",
	})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestMarkPaidTransitions(t *testing.T) {
	disbursement := &models.Disbursement{
		ID:        uuid.New(),
		BookingID: uuid.New(),
		Status:    enums.DisbursementStatusProcessing,
	}
	repo := &fakeRepository{disbursement: disbursement, transitionAffected: 1}
	svc, _ := buildTestService(t, repo)

	reference := "WIRE-789"
	_, err := svc.MarkPaid(context.Background(), adminActor(), disbursement.ID, &reference)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	if repo.transitionUpdates["status"] != enums.DisbursementStatusPaid {
		t.Fatalf("expected paid status update, got %v", repo.transitionUpdates["status"])
	}
	if repo.transitionUpdates["reference"] != reference {
		t.Fatalf("expected reference update, got %v", repo.transitionUpdates["reference"])
	}
	if repo.bookingStatusSet != enums.DisbursementStatusPaid {
		t.Fatalf("expected booking marked paid, got %s", repo.bookingStatusSet)
	}
}

func TestMarkPaidAlreadyPaidConflicts(t *testing.T) {
	disbursement := &models.Disbursement{
		ID:        uuid.New(),
		BookingID: uuid.New(),
		Status:    enums.DisbursementStatusPaid,
	}
	repo := &fakeRepository{disbursement: disbursement, transitionAffected: 0}
	svc, _ := buildTestService(t, repo)

	_, err := svc.MarkPaid(context.Background(), adminActor(), disbursement.ID, nil)
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestMarkPaidMissingDisbursement(t *testing.T) {
	repo := &fakeRepository{transitionAffected: 0}
	svc, _ := buildTestService(t, repo)

	_, err := svc.MarkPaid(context.Background(), adminActor(), uuid.New(), nil)
	expectCode(t, err, pkgerrors.CodeNotFound)
}
