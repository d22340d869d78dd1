package trips

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/internal/authz"
	dbpkg "github.com/safariconnector/backend/pkg/db"
	"github.com/safariconnector/backend/pkg/db/models"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/pagination"
)

// Service defines trip catalogue operations.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, input CreateTripInput) (*models.Trip, error)
	Update(ctx context.Context, actor authz.Actor, tripID uuid.UUID, input UpdateTripInput) (*models.Trip, error)
	GetBySlug(ctx context.Context, slug string) (*models.Trip, error)
	ListPublished(ctx context.Context, params pagination.Params) (*TripList, error)
	ListForOperator(ctx context.Context, actor authz.Actor, params pagination.Params) (*TripList, error)
}

type service struct {
	repo  Repository
	authz *authz.Service
}

// NewService builds a trips service with the required dependencies.
func NewService(repo Repository, az *authz.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("trips repository required")
	}
	if az == nil {
		return nil, fmt.Errorf("authorization service required")
	}
	return &service{repo: repo, authz: az}, nil
}

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateTripInput) (*models.Trip, error) {
	operatorID, err := s.authz.RequireOperatorContext(actor)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip title required")
	}
	if input.DurationDays <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration must be positive")
	}
	if input.PriceFrom.IsNegative() || input.PriceFrom.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}

	maxGroup := input.MaxGroupSize
	if maxGroup <= 0 {
		maxGroup = 8
	}

	// Suffix keeps slugs unique across operators without a lookup round-trip.
	slug := fmt.Sprintf("%s-%s", slugify(input.Title), uuid.NewString()[:8])

	trip := &models.Trip{
		OperatorID:   operatorID,
		Title:        strings.TrimSpace(input.Title),
		Slug:         slug,
		Summary:      strings.TrimSpace(input.Summary),
		Description:  input.Description,
		DurationDays: input.DurationDays,
		MaxGroupSize: maxGroup,
		Destinations: input.Destinations,
		Highlights:   input.Highlights,
		PriceFrom:    input.PriceFrom,
		Currency:     input.Currency,
		IsPublished:  input.IsPublished,
	}

	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "trip slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create trip")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, actor authz.Actor, tripID uuid.UUID, input UpdateTripInput) (*models.Trip, error) {
	if tripID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id required")
	}

	trip, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
	}
	if err := s.authz.RequireOperatorAccess(actor, trip.OperatorID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip title required")
		}
		trip.Title = strings.TrimSpace(*input.Title)
	}
	if input.Summary != nil {
		trip.Summary = strings.TrimSpace(*input.Summary)
	}
	if input.Description != nil {
		trip.Description = input.Description
	}
	if input.DurationDays != nil {
		if *input.DurationDays <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration must be positive")
		}
		trip.DurationDays = *input.DurationDays
	}
	if input.MaxGroupSize != nil {
		if *input.MaxGroupSize <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "group size must be positive")
		}
		trip.MaxGroupSize = *input.MaxGroupSize
	}
	if input.Destinations != nil {
		trip.Destinations = input.Destinations
	}
	if input.Highlights != nil {
		trip.Highlights = input.Highlights
	}
	if input.PriceFrom != nil {
		if input.PriceFrom.IsNegative() || input.PriceFrom.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		trip.PriceFrom = *input.PriceFrom
	}
	if input.Currency != nil {
		if !input.Currency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
		}
		trip.Currency = *input.Currency
	}
	if input.IsPublished != nil {
		trip.IsPublished = *input.IsPublished
	}

	trip.Operator = nil
	if err := s.repo.Update(ctx, trip); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update trip")
	}
	return trip, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Trip, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip slug required")
	}
	trip, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
	}
	if !trip.IsPublished {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
	}
	return trip, nil
}

func (s *service) ListPublished(ctx context.Context, params pagination.Params) (*TripList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListPublished(ctx, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list trips")
	}
	return buildTripList(rows, limit), nil
}

func (s *service) ListForOperator(ctx context.Context, actor authz.Actor, params pagination.Params) (*TripList, error) {
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list trips")
	}
	return buildTripList(rows, limit), nil
}

func buildTripList(rows []models.Trip, limit int) *TripList {
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	out := &TripList{Trips: make([]TripSummary, 0, len(rows))}
	for _, trip := range rows {
		out.Trips = append(out.Trips, TripSummary{
			ID:           trip.ID,
			OperatorID:   trip.OperatorID,
			Title:        trip.Title,
			Slug:         trip.Slug,
			Summary:      trip.Summary,
			DurationDays: trip.DurationDays,
			MaxGroupSize: trip.MaxGroupSize,
			Destinations: trip.Destinations,
			Highlights:   trip.Highlights,
			PriceFrom:    trip.PriceFrom,
			Currency:     trip.Currency,
			IsPublished:  trip.IsPublished,
			CreatedAt:    trip.CreatedAt,
		})
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return out
}
