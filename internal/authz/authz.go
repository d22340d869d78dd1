package authz

import (
	"github.com/google/uuid"

	"github.com/safariconnector/backend/pkg/enums"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
)

// Actor is the authenticated principal resolved from the access token.
type Actor struct {
	UserID     uuid.UUID
	Role       enums.UserRole
	OperatorID *uuid.UUID
}

// Service is the single authorization decision point. Every handler and
// service resolves access through here rather than re-checking roles inline.
type Service struct{}

// NewService constructs the authorization service.
func NewService() *Service {
	return &Service{}
}

// RequireAuthenticated rejects actors without a resolved identity.
func (s *Service) RequireAuthenticated(actor Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return nil
}

// RequireAdmin permits platform administrators only.
func (s *Service) RequireAdmin(actor Actor) error {
	if err := s.RequireAuthenticated(actor); err != nil {
		return err
	}
	if actor.Role != enums.RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}

// RequireOperatorAccess permits admins, or operator members of the given operator.
func (s *Service) RequireOperatorAccess(actor Actor, operatorID uuid.UUID) error {
	if err := s.RequireAuthenticated(actor); err != nil {
		return err
	}
	if actor.Role == enums.RoleAdmin {
		return nil
	}
	if actor.Role != enums.RoleOperator {
		return pkgerrors.New(pkgerrors.CodeForbidden, "operator role required")
	}
	if actor.OperatorID == nil || *actor.OperatorID != operatorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "resource does not belong to operator")
	}
	return nil
}

// RequireOperatorContext permits operator members with an operator binding, or admins.
func (s *Service) RequireOperatorContext(actor Actor) (uuid.UUID, error) {
	if err := s.RequireAuthenticated(actor); err != nil {
		return uuid.Nil, err
	}
	if actor.Role != enums.RoleOperator {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "operator role required")
	}
	if actor.OperatorID == nil || *actor.OperatorID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "operator context missing")
	}
	return *actor.OperatorID, nil
}

// RequireTravellerAccess permits admins, or the traveller who owns the resource.
func (s *Service) RequireTravellerAccess(actor Actor, travellerID uuid.UUID) error {
	if err := s.RequireAuthenticated(actor); err != nil {
		return err
	}
	if actor.Role == enums.RoleAdmin {
		return nil
	}
	if actor.UserID != travellerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "resource does not belong to user")
	}
	return nil
}

// RequireSelf permits only the user themselves.
func (s *Service) RequireSelf(actor Actor, userID uuid.UUID) error {
	if err := s.RequireAuthenticated(actor); err != nil {
		return err
	}
	if actor.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "resource does not belong to user")
	}
	return nil
}
