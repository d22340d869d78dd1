package enquiries

import (
	"context"
	"testing"
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
	enquiry  *models.Enquiry
	operator *models.Operator
	trip     *models.Trip
	listed   []models.Enquiry

	created        *models.Enquiry
	updateAffected int64
	updateTo       enums.EnquiryStatus
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, enquiry *models.Enquiry) (*models.Enquiry, error) {
	if enquiry.ID == uuid.Nil {
		enquiry.ID = uuid.New()
	}
	f.created = enquiry
	return enquiry, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Enquiry, error) {
	if f.enquiry == nil || f.enquiry.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.enquiry, nil
}

func (f *fakeRepository) ListByOperator(ctx context.Context, operatorID uuid.UUID, status *enums.EnquiryStatus, cursor *pagination.Cursor, limit int) ([]models.Enquiry, error) {
	return f.listed, nil
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.EnquiryStatus, to enums.EnquiryStatus) (int64, error) {
	f.updateTo = to
	return f.updateAffected, nil
}

func (f *fakeRepository) FindOperatorByID(ctx context.Context, id uuid.UUID) (*models.Operator, error) {
	if f.operator == nil || f.operator.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.operator, nil
}

func (f *fakeRepository) FindTripByID(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	if f.trip == nil || f.trip.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.trip, nil
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

func operatorActor(operatorID uuid.UUID) authz.Actor {
	return authz.Actor{UserID: uuid.New(), Role: enums.RoleOperator, OperatorID: &operatorID}
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

func validInput(operatorID uuid.UUID) CreateEnquiryInput {
	return CreateEnquiryInput{
		OperatorID:     &operatorID,
		TravellerName:  "  Asha Mwangi  ",
		TravellerEmail: "Asha@Example.com",
		PartySize:      2,
		Message:        "Looking for a 7 day Serengeti trip.",
	}
}

func TestCreateNormalizesAndEmits(t *testing.T) {
	operatorID := uuid.New()
	repo := &fakeRepository{operator: &models.Operator{ID: operatorID, IsActive: true}}
	svc, ob := buildTestService(t, repo)

	enquiry, err := svc.Create(context.Background(), validInput(operatorID))
	if err != nil {
		t.Fatalf("create enquiry: %v", err)
	}

	if enquiry.TravellerName != "Asha Mwangi" {
		t.Fatalf("expected trimmed name, got %q", enquiry.TravellerName)
	}
	if enquiry.TravellerEmail != "asha@example.com" {
		t.Fatalf("expected lowercased email, got %q", enquiry.TravellerEmail)
	}
	if enquiry.Status != enums.EnquiryStatusNew {
		t.Fatalf("expected new status, got %s", enquiry.Status)
	}
	if enquiry.Source != enums.EnquirySourceManual {
		t.Fatalf("expected manual source default, got %s", enquiry.Source)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventEnquiryCreated {
		t.Fatalf("expected enquiry created event, got %+v", ob.events)
	}
}

func TestCreateWithoutOperatorRecordsGeneralEnquiry(t *testing.T) {
	repo := &fakeRepository{}
	svc, ob := buildTestService(t, repo)

	input := validInput(uuid.New())
	input.OperatorID = nil
	enquiry, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create general enquiry: %v", err)
	}

	if enquiry.OperatorID != nil {
		t.Fatalf("expected unrouted enquiry, got operator %s", enquiry.OperatorID)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventEnquiryCreated {
		t.Fatalf("expected enquiry created event, got %+v", ob.events)
	}
	data, ok := ob.events[0].Data.(EnquiryCreatedEvent)
	if !ok {
		t.Fatalf("unexpected event payload type %T", ob.events[0].Data)
	}
	if data.OperatorID != nil {
		t.Fatalf("expected no operator in event payload, got %s", data.OperatorID)
	}
}

func TestCreateTripEnquiryAdoptsTripOperator(t *testing.T) {
	operatorID := uuid.New()
	tripID := uuid.New()
	repo := &fakeRepository{
		operator: &models.Operator{ID: operatorID, IsActive: true},
		trip:     &models.Trip{ID: tripID, OperatorID: operatorID},
	}
	svc, _ := buildTestService(t, repo)

	input := validInput(operatorID)
	input.OperatorID = nil
	input.TripID = &tripID
	enquiry, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create trip enquiry: %v", err)
	}
	if enquiry.OperatorID == nil || *enquiry.OperatorID != operatorID {
		t.Fatalf("expected enquiry routed to the trip's operator, got %v", enquiry.OperatorID)
	}
}

func TestCreateRejectsBadEmail(t *testing.T) {
	operatorID := uuid.New()
	repo := &fakeRepository{operator: &models.Operator{ID: operatorID, IsActive: true}}
	svc, _ := buildTestService(t, repo)

	input := validInput(operatorID)
	input.TravellerEmail = "not-an-email"
	_, err := svc.Create(context.Background(), input)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRejectsInvertedDates(t *testing.T) {
	operatorID := uuid.New()
	repo := &fakeRepository{operator: &models.Operator{ID: operatorID, IsActive: true}}
	svc, _ := buildTestService(t, repo)

	from := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	input := validInput(operatorID)
	input.TravelDateFrom = &from
	input.TravelDateTo = &to
	_, err := svc.Create(context.Background(), input)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRejectsInactiveOperator(t *testing.T) {
	operatorID := uuid.New()
	repo := &fakeRepository{operator: &models.Operator{ID: operatorID, IsActive: false}}
	svc, _ := buildTestService(t, repo)

	_, err := svc.Create(context.Background(), validInput(operatorID))
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCreateRejectsForeignTrip(t *testing.T) {
	operatorID := uuid.New()
	tripID := uuid.New()
	repo := &fakeRepository{
		operator: &models.Operator{ID: operatorID, IsActive: true},
		trip:     &models.Trip{ID: tripID, OperatorID: uuid.New()},
	}
	svc, _ := buildTestService(t, repo)

	input := validInput(operatorID)
	input.TripID = &tripID
	_, err := svc.Create(context.Background(), input)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRejectsUnknownSource(t *testing.T) {
	operatorID := uuid.New()
	repo := &fakeRepository{operator: &models.Operator{ID: operatorID, IsActive: true}}
	svc, _ := buildTestService(t, repo)

	input := validInput(operatorID)
	input.Source = enums.EnquirySource("carrier_pigeon")
	_, err := svc.Create(context.Background(), input)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestGetEnforcesOperatorOwnership(t *testing.T) {
	operatorID := uuid.New()
	enquiry := &models.Enquiry{ID: uuid.New(), OperatorID: &operatorID}
	repo := &fakeRepository{enquiry: enquiry}
	svc, _ := buildTestService(t, repo)

	if _, err := svc.Get(context.Background(), operatorActor(operatorID), enquiry.ID); err != nil {
		t.Fatalf("owning operator should read enquiry: %v", err)
	}
	if _, err := svc.Get(context.Background(), authz.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}, enquiry.ID); err != nil {
		t.Fatalf("admin should read enquiry: %v", err)
	}
	_, err := svc.Get(context.Background(), operatorActor(uuid.New()), enquiry.ID)
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestGetUnroutedEnquiryIsAdminOnly(t *testing.T) {
	enquiry := &models.Enquiry{ID: uuid.New()}
	repo := &fakeRepository{enquiry: enquiry}
	svc, _ := buildTestService(t, repo)

	if _, err := svc.Get(context.Background(), authz.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}, enquiry.ID); err != nil {
		t.Fatalf("admin should read unrouted enquiry: %v", err)
	}
	_, err := svc.Get(context.Background(), operatorActor(uuid.New()), enquiry.ID)
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestCloseTransitionsOpenEnquiry(t *testing.T) {
	operatorID := uuid.New()
	enquiry := &models.Enquiry{ID: uuid.New(), OperatorID: &operatorID, Status: enums.EnquiryStatusQuoted}
	repo := &fakeRepository{enquiry: enquiry, updateAffected: 1}
	svc, _ := buildTestService(t, repo)

	if err := svc.Close(context.Background(), operatorActor(operatorID), enquiry.ID); err != nil {
		t.Fatalf("close enquiry: %v", err)
	}
	if repo.updateTo != enums.EnquiryStatusClosed {
		t.Fatalf("expected closed, got %s", repo.updateTo)
	}
}

func TestCloseBookedEnquiryConflicts(t *testing.T) {
	operatorID := uuid.New()
	enquiry := &models.Enquiry{ID: uuid.New(), OperatorID: &operatorID, Status: enums.EnquiryStatusBooked}
	repo := &fakeRepository{enquiry: enquiry, updateAffected: 0}
	svc, _ := buildTestService(t, repo)

	err := svc.Close(context.Background(), operatorActor(operatorID), enquiry.ID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
}
