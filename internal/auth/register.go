package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/pkg/config"
	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/enums"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/security"
)

const minPasswordLength = 8

// OperatorProfile carries the company details required when registering an operator.
type OperatorProfile struct {
	Name          string   `json:"name" validate:"required"`
	Country       string   `json:"country" validate:"required"`
	ContactPhone  *string  `json:"contact_phone,omitempty"`
	Regions       []string `json:"regions,omitempty"`
	PayoutAccount *string  `json:"payout_account,omitempty"`
}

// RegisterRequest contains the payload for onboarding a traveller or operator.
type RegisterRequest struct {
	FullName string           `json:"full_name" validate:"required"`
	Email    string           `json:"email" validate:"required,email"`
	Password string           `json:"password" validate:"required"`
	Phone    *string          `json:"phone,omitempty"`
	Role     enums.UserRole   `json:"role" validate:"required"`
	Operator *OperatorProfile `json:"operator,omitempty"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserSummary, error)
	AdminRegister(ctx context.Context, req RegisterRequest) (*UserSummary, error)
}

type registerTxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner       registerTxRunner
	RepoFactory    func(tx *gorm.DB) Repository
	AppConfig      config.AppConfig
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	tx          registerTxRunner
	repoFactory func(tx *gorm.DB) Repository
	appCfg      config.AppConfig
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.RepoFactory == nil {
		params.RepoFactory = NewRepository
	}
	return &registerService{
		tx:          params.TxRunner,
		repoFactory: params.RepoFactory,
		appCfg:      params.AppConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*UserSummary, error) {
	switch req.Role {
	case enums.RoleTraveller:
		return s.register(ctx, req, nil)
	case enums.RoleOperator:
		if req.Operator == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator profile required")
		}
		return s.register(ctx, req, req.Operator)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be traveller or operator")
	}
}

// AdminRegister creates an admin account. The route is only mounted outside
// production.
func (s *registerService) AdminRegister(ctx context.Context, req RegisterRequest) (*UserSummary, error) {
	if s.appCfg.IsProd() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin registration is disabled")
	}
	req.Role = enums.RoleAdmin
	return s.register(ctx, req, nil)
}

func (s *registerService) register(ctx context.Context, req RegisterRequest, profile *OperatorProfile) (*UserSummary, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user := &models.User{
			Email:        email,
			PasswordHash: passwordHash,
			FullName:     strings.TrimSpace(req.FullName),
			Phone:        req.Phone,
			Role:         req.Role,
			IsActive:     true,
		}
		if err := repo.CreateUser(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if profile != nil {
			operator := &models.Operator{
				Name:          strings.TrimSpace(profile.Name),
				Slug:          fmt.Sprintf("%s-%s", slugify(profile.Name), uuid.NewString()[:8]),
				ContactEmail:  email,
				ContactPhone:  profile.ContactPhone,
				Country:       strings.TrimSpace(profile.Country),
				Regions:       pq.StringArray(profile.Regions),
				PayoutAccount: profile.PayoutAccount,
				IsActive:      true,
			}
			if operator.Name == "" || operator.Country == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "operator name and country are required")
			}
			if err := repo.CreateOperator(ctx, operator); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create operator")
			}
			if err := repo.SetOperatorID(ctx, user.ID, operator.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "associate operator with user")
			}
			user.OperatorID = &operator.ID
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return userSummary(created), nil
}
