package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/pkg/logger"
)

const (
	defaultPaymentNudgeDays  = 3
	defaultPaymentExpiryDays = 7
	paymentTTLBatchSize      = 200
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookingLifecycle interface {
	NudgePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
	ExpireOverdue(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// PaymentTTLJobParams configure the unpaid booking scheduler.
type PaymentTTLJobParams struct {
	Logger     *logger.Logger
	Bookings   bookingLifecycle
	NudgeDays  int
	ExpiryDays int
}

// NewPaymentTTLJob builds the cron job that nudges and expires unpaid bookings.
func NewPaymentTTLJob(params PaymentTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("bookings service required")
	}
	nudgeDays := params.NudgeDays
	if nudgeDays <= 0 {
		nudgeDays = defaultPaymentNudgeDays
	}
	expiryDays := params.ExpiryDays
	if expiryDays <= 0 {
		expiryDays = defaultPaymentExpiryDays
	}
	if expiryDays <= nudgeDays {
		return nil, fmt.Errorf("expiry window must be longer than the nudge window")
	}
	return &paymentTTLJob{
		logg:       params.Logger,
		bookings:   params.Bookings,
		nudgeDays:  nudgeDays,
		expiryDays: expiryDays,
		now:        time.Now,
	}, nil
}

type paymentTTLJob struct {
	logg       *logger.Logger
	bookings   bookingLifecycle
	nudgeDays  int
	expiryDays int
	now        func() time.Time
}

func (j *paymentTTLJob) Name() string { return "booking-payment-ttl" }

func (j *paymentTTLJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.nudgeUnpaidBookings(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.expireUnpaidBookings(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *paymentTTLJob) nudgeUnpaidBookings(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.nudgeDays) * 24 * time.Hour)
	count, err := j.bookings.NudgePending(ctx, cutoff, paymentTTLBatchSize)
	if err != nil {
		return fmt.Errorf("nudge unpaid bookings: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count, "cutoff": cutoff})
	j.logg.Info(logCtx, "booking payment nudge loop complete")
	return nil
}

func (j *paymentTTLJob) expireUnpaidBookings(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.expiryDays) * 24 * time.Hour)
	count, err := j.bookings.ExpireOverdue(ctx, cutoff, paymentTTLBatchSize)
	if err != nil {
		return fmt.Errorf("expire unpaid bookings: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count, "cutoff": cutoff})
	j.logg.Info(logCtx, "booking expiration loop complete")
	return nil
}
