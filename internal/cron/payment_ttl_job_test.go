package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/safariconnector/backend/pkg/logger"
)

type fakeBookingLifecycle struct {
	nudgeCutoff  time.Time
	nudgeLimit   int
	nudged       int
	nudgeErr     error
	expireCutoff time.Time
	expireLimit  int
	expired      int
	expireErr    error
}

func (f *fakeBookingLifecycle) NudgePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	f.nudgeCutoff = cutoff
	f.nudgeLimit = limit
	return f.nudged, f.nudgeErr
}

func (f *fakeBookingLifecycle) ExpireOverdue(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	f.expireCutoff = cutoff
	f.expireLimit = limit
	return f.expired, f.expireErr
}

func newPaymentTTLJobTest(t *testing.T, bookings *fakeBookingLifecycle) *paymentTTLJob {
	t.Helper()
	jobIface, err := NewPaymentTTLJob(PaymentTTLJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Bookings: bookings,
	})
	if err != nil {
		t.Fatalf("NewPaymentTTLJob: %v", err)
	}
	job, ok := jobIface.(*paymentTTLJob)
	if !ok {
		t.Fatalf("expected paymentTTLJob, got %T", jobIface)
	}
	return job
}

func TestPaymentTTLJobRunsBothPhases(t *testing.T) {
	now := time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)
	bookings := &fakeBookingLifecycle{nudged: 2, expired: 1}
	job := newPaymentTTLJobTest(t, bookings)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantNudge := now.Add(-defaultPaymentNudgeDays * 24 * time.Hour)
	if !bookings.nudgeCutoff.Equal(wantNudge) {
		t.Fatalf("expected nudge cutoff %s, got %s", wantNudge, bookings.nudgeCutoff)
	}
	wantExpire := now.Add(-defaultPaymentExpiryDays * 24 * time.Hour)
	if !bookings.expireCutoff.Equal(wantExpire) {
		t.Fatalf("expected expiry cutoff %s, got %s", wantExpire, bookings.expireCutoff)
	}
	if bookings.nudgeLimit != paymentTTLBatchSize || bookings.expireLimit != paymentTTLBatchSize {
		t.Fatalf("expected batch size %d, got nudge %d expire %d", paymentTTLBatchSize, bookings.nudgeLimit, bookings.expireLimit)
	}
}

func TestPaymentTTLJobCombinesPhaseErrors(t *testing.T) {
	bookings := &fakeBookingLifecycle{
		nudgeErr:  errors.New("nudge failed"),
		expireErr: errors.New("expire failed"),
	}
	job := newPaymentTTLJobTest(t, bookings)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !strings.Contains(err.Error(), "nudge failed") || !strings.Contains(err.Error(), "expire failed") {
		t.Fatalf("expected both phase errors reported, got %v", err)
	}
	if bookings.expireCutoff.IsZero() {
		t.Fatal("expected expiry phase to run despite nudge failure")
	}
}

func TestNewPaymentTTLJobRejectsInvertedWindows(t *testing.T) {
	_, err := NewPaymentTTLJob(PaymentTTLJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Bookings:   &fakeBookingLifecycle{},
		NudgeDays:  7,
		ExpiryDays: 7,
	})
	if err == nil {
		t.Fatal("expected error when expiry window is not longer than nudge window")
	}
}
