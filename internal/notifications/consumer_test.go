package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safariconnector/backend/pkg/enums"
	"github.com/safariconnector/backend/pkg/logger"
	"github.com/safariconnector/backend/pkg/outbox"
	"github.com/safariconnector/backend/pkg/outbox/idempotency"
)

type fakeIdempotencyStore struct {
	existing map[string]bool
	setErr   error
	deleted  []string
}

func (f *fakeIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (f *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if f.existing[key] {
		return false, nil
	}
	if f.existing == nil {
		f.existing = map[string]bool{}
	}
	f.existing[key] = true
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "sc:idempotency:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	for _, key := range keys {
		delete(f.existing, key)
	}
	return nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type stubMailer struct {
	sent []sentMail
	err  error
}

func (s *stubMailer) Send(ctx context.Context, to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func buildTestConsumer(t *testing.T, repo *fakeRepository, store *fakeIdempotencyStore, mail *stubMailer) *Consumer {
	t.Helper()
	manager, err := idempotency.NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("build idempotency manager: %v", err)
	}
	return &Consumer{
		repo:        repo,
		idempotency: manager,
		mail:        mail,
		logg:        logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
}

func domainMessage(t *testing.T, eventType enums.OutboxEventType, payload any) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       raw,
		Attributes: map[string]string{"event_type": string(eventType)},
	}
}

func TestProcessAcksUnknownEventType(t *testing.T) {
	repo := &fakeRepository{}
	consumer := buildTestConsumer(t, repo, &fakeIdempotencyStore{}, &stubMailer{})

	msg := &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       []byte(`{}`),
		Attributes: map[string]string{"event_type": "bogus_event"},
	}
	result := consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected ack for unknown event type, got %+v", result)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no notifications, got %d", len(repo.created))
	}
}

func TestProcessSkipsAlreadyProcessedEvent(t *testing.T) {
	travellerID := uuid.New()
	repo := &fakeRepository{travellerID: &travellerID}
	store := &fakeIdempotencyStore{}
	consumer := buildTestConsumer(t, repo, store, &stubMailer{})

	msg := domainMessage(t, enums.EventQuoteIssued, quoteIssuedPayload{
		QuoteID:    uuid.New(),
		EnquiryID:  uuid.New(),
		TotalPrice: decimal.NewFromInt(1500),
		Currency:   enums.Currency("USD"),
	})

	first := consumer.process(context.Background(), msg)
	if !first.ack {
		t.Fatalf("expected first delivery acked, got %+v", first)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one notification after first delivery, got %d", len(repo.created))
	}

	second := consumer.process(context.Background(), msg)
	if !second.ack {
		t.Fatalf("expected redelivery acked, got %+v", second)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected redelivery skipped, got %d notifications", len(repo.created))
	}
}

func TestProcessNacksAndReleasesOnHandlerFailure(t *testing.T) {
	travellerID := uuid.New()
	repo := &fakeRepository{travellerID: &travellerID, createErr: errors.New("db down")}
	store := &fakeIdempotencyStore{}
	consumer := buildTestConsumer(t, repo, store, &stubMailer{})

	msg := domainMessage(t, enums.EventQuoteIssued, quoteIssuedPayload{
		QuoteID:    uuid.New(),
		EnquiryID:  uuid.New(),
		TotalPrice: decimal.NewFromInt(1500),
		Currency:   enums.Currency("USD"),
	})
	result := consumer.process(context.Background(), msg)
	if !result.nack {
		t.Fatalf("expected nack on handler failure, got %+v", result)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected idempotency key released for retry, got %v", store.deleted)
	}

	repo.createErr = nil
	retry := consumer.process(context.Background(), msg)
	if !retry.ack {
		t.Fatalf("expected retry acked, got %+v", retry)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected notification on retry, got %d", len(repo.created))
	}
}

func TestProcessNacksOnIdempotencyError(t *testing.T) {
	store := &fakeIdempotencyStore{setErr: errors.New("redis down")}
	consumer := buildTestConsumer(t, &fakeRepository{}, store, &stubMailer{})

	msg := domainMessage(t, enums.EventBookingCreated, bookingCreatedPayload{
		BookingID:  uuid.New(),
		OperatorID: uuid.New(),
		Reference:  "SC-AB12CD34",
	})
	result := consumer.process(context.Background(), msg)
	if !result.nack {
		t.Fatalf("expected nack when idempotency store fails, got %+v", result)
	}
}

func TestEnquiryCreatedNotifiesOperatorUsers(t *testing.T) {
	users := []uuid.UUID{uuid.New(), uuid.New()}
	operatorID := uuid.New()
	repo := &fakeRepository{operatorUsers: users}
	consumer := buildTestConsumer(t, repo, &fakeIdempotencyStore{}, &stubMailer{})

	msg := domainMessage(t, enums.EventEnquiryCreated, enquiryCreatedPayload{
		EnquiryID:      uuid.New(),
		OperatorID:     &operatorID,
		TravellerEmail: "asha@example.com",
	})
	if result := consumer.process(context.Background(), msg); !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected one notification per operator user, got %d", len(repo.created))
	}
	for i, notification := range repo.created {
		if notification.UserID != users[i] {
			t.Fatalf("expected notification for user %s, got %s", users[i], notification.UserID)
		}
		if notification.Type != enums.NotificationTypeEnquiryAlert {
			t.Fatalf("expected enquiry alert, got %s", notification.Type)
		}
	}
}

func TestEnquiryCreatedWithoutOperatorSkipsAlert(t *testing.T) {
	repo := &fakeRepository{operatorUsers: []uuid.UUID{uuid.New()}}
	consumer := buildTestConsumer(t, repo, &fakeIdempotencyStore{}, &stubMailer{})

	msg := domainMessage(t, enums.EventEnquiryCreated, enquiryCreatedPayload{
		EnquiryID:      uuid.New(),
		TravellerEmail: "asha@example.com",
	})
	if result := consumer.process(context.Background(), msg); !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 0 {
		t.Fatalf("unrouted enquiry must not notify anyone, got %d notifications", len(repo.created))
	}
}

func TestQuoteIssuedSkipsGuestEnquiry(t *testing.T) {
	repo := &fakeRepository{travellerID: nil, travellerEmail: "guest@example.com"}
	consumer := buildTestConsumer(t, repo, &fakeIdempotencyStore{}, &stubMailer{})

	msg := domainMessage(t, enums.EventQuoteIssued, quoteIssuedPayload{
		QuoteID:    uuid.New(),
		EnquiryID:  uuid.New(),
		TotalPrice: decimal.NewFromInt(900),
		Currency:   enums.Currency("USD"),
	})
	if result := consumer.process(context.Background(), msg); !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no notification for guest enquiry, got %d", len(repo.created))
	}
}

func TestQuoteDecidedOnlyDeclineNotifies(t *testing.T) {
	operatorID := uuid.New()
	repo := &fakeRepository{
		enquiryOperator: &operatorID,
		operatorUsers:   []uuid.UUID{uuid.New()},
	}
	consumer := buildTestConsumer(t, repo, &fakeIdempotencyStore{}, &stubMailer{})

	accepted := domainMessage(t, enums.EventQuoteDecided, quoteDecidedPayload{
		QuoteID:   uuid.New(),
		EnquiryID: uuid.New(),
		Decision:  enums.QuoteDecisionAccept,
	})
	if result := consumer.process(context.Background(), accepted); !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 0 {
		t.Fatalf("acceptance should not notify directly, got %d notifications", len(repo.created))
	}

	declined := domainMessage(t, enums.EventQuoteDecided, quoteDecidedPayload{
		QuoteID:   uuid.New(),
		EnquiryID: uuid.New(),
		Decision:  enums.QuoteDecisionDecline,
	})
	if result := consumer.process(context.Background(), declined); !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected operator notified of decline, got %d", len(repo.created))
	}
	if repo.created[0].Title != "Quote declined" {
		t.Fatalf("unexpected notification title %q", repo.created[0].Title)
	}
}

func TestPaymentSubmittedFansOutToAdminsAndOperator(t *testing.T) {
	repo := &fakeRepository{
		adminUsers:    []uuid.UUID{uuid.New(), uuid.New()},
		operatorUsers: []uuid.UUID{uuid.New()},
	}
	consumer := buildTestConsumer(t, repo, &fakeIdempotencyStore{}, &stubMailer{})

	msg := domainMessage(t, enums.EventBookingPaymentSubmitted, paymentSubmittedPayload{
		BookingID:  uuid.New(),
		OperatorID: uuid.New(),
	})
	if result := consumer.process(context.Background(), msg); !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 3 {
		t.Fatalf("expected 2 admin + 1 operator notifications, got %d", len(repo.created))
	}
}

func TestPaymentNudgeCreatesNotificationAndEmail(t *testing.T) {
	travellerID := uuid.New()
	repo := &fakeRepository{userEmail: "traveller@example.com"}
	mail := &stubMailer{}
	consumer := buildTestConsumer(t, repo, &fakeIdempotencyStore{}, mail)

	msg := domainMessage(t, enums.EventBookingPaymentNudge, paymentNudgePayload{
		BookingID:   uuid.New(),
		TravellerID: travellerID,
		Reference:   "SC-AB12CD34",
	})
	if result := consumer.process(context.Background(), msg); !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected in-app reminder, got %d notifications", len(repo.created))
	}
	if repo.created[0].UserID != travellerID {
		t.Fatalf("expected reminder for traveller, got %s", repo.created[0].UserID)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("expected one reminder email, got %d", len(mail.sent))
	}
	if mail.sent[0].to != "traveller@example.com" {
		t.Fatalf("unexpected recipient %q", mail.sent[0].to)
	}
	if !strings.Contains(mail.sent[0].subject, "SC-AB12CD34") {
		t.Fatalf("expected booking reference in subject, got %q", mail.sent[0].subject)
	}
}

func TestPaymentNudgeEmailFailureStillAcks(t *testing.T) {
	repo := &fakeRepository{userEmail: "traveller@example.com"}
	mail := &stubMailer{err: errors.New("smtp timeout")}
	consumer := buildTestConsumer(t, repo, &fakeIdempotencyStore{}, mail)

	msg := domainMessage(t, enums.EventBookingPaymentNudge, paymentNudgePayload{
		BookingID:   uuid.New(),
		TravellerID: uuid.New(),
		Reference:   "SC-AB12CD34",
	})
	result := consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("email failure should not trigger redelivery, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected in-app reminder despite email failure, got %d", len(repo.created))
	}
}

func TestDisbursementCreatedNotifiesOperator(t *testing.T) {
	repo := &fakeRepository{operatorUsers: []uuid.UUID{uuid.New()}}
	consumer := buildTestConsumer(t, repo, &fakeIdempotencyStore{}, &stubMailer{})

	msg := domainMessage(t, enums.EventDisbursementCreated, disbursementCreatedPayload{
		DisbursementID: uuid.New(),
		OperatorID:     uuid.New(),
		NetAmount:      decimal.NewFromInt(1750),
		Currency:       enums.Currency("USD"),
	})
	if result := consumer.process(context.Background(), msg); !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected payout notification, got %d", len(repo.created))
	}
	if repo.created[0].Type != enums.NotificationTypePayoutAlert {
		t.Fatalf("expected payout alert, got %s", repo.created[0].Type)
	}
	if !strings.Contains(repo.created[0].Message, "1750.00") {
		t.Fatalf("expected net amount in message, got %q", repo.created[0].Message)
	}
}
