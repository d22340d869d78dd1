package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safariconnector/backend/pkg/config"
	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/enums"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type registerStubRepo struct {
	data            map[string]*models.User
	createdUser     *models.User
	createdOperator *models.Operator
	linkedOperator  uuid.UUID
}

func newRegisterStubRepo() *registerStubRepo {
	return &registerStubRepo{data: map[string]*models.User{}}
}

func (s *registerStubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *registerStubRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.data[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *registerStubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *registerStubRepo) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	s.data[user.Email] = user
	s.createdUser = user
	return nil
}

func (s *registerStubRepo) CreateOperator(ctx context.Context, operator *models.Operator) error {
	operator.ID = uuid.New()
	s.createdOperator = operator
	return nil
}

func (s *registerStubRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (s *registerStubRepo) SetOperatorID(ctx context.Context, userID, operatorID uuid.UUID) error {
	s.linkedOperator = operatorID
	return nil
}

func newRegisterTestService(t *testing.T, repo *registerStubRepo, appCfg config.AppConfig) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{
		TxRunner: stubTxRunner{},
		RepoFactory: func(tx *gorm.DB) Repository {
			return repo
		},
		AppConfig:      appCfg,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return svc
}

func travellerRegisterRequest(email string) RegisterRequest {
	return RegisterRequest{
		FullName: "Asha Mwangi",
		Email:    email,
		Password: "Secret123!",
		Role:     enums.RoleTraveller,
	}
}

func TestRegisterTravellerCreatesUser(t *testing.T) {
	repo := newRegisterStubRepo()
	svc := newRegisterTestService(t, repo, config.AppConfig{Env: "dev"})

	summary, err := svc.Register(context.Background(), travellerRegisterRequest("  Asha@Example.COM  "))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if repo.createdUser == nil {
		t.Fatal("expected user to be created")
	}
	if summary.Email != "asha@example.com" {
		t.Fatalf("expected normalized email, got %q", summary.Email)
	}
	if summary.Role != enums.RoleTraveller {
		t.Fatalf("expected traveller role, got %s", summary.Role)
	}
	if !repo.createdUser.IsActive {
		t.Fatal("expected new user active")
	}
	if repo.createdOperator != nil {
		t.Fatal("traveller registration must not create an operator")
	}
}

func TestRegisterOperatorCreatesCompany(t *testing.T) {
	repo := newRegisterStubRepo()
	svc := newRegisterTestService(t, repo, config.AppConfig{Env: "dev"})

	req := travellerRegisterRequest("ops@kilima.example")
	req.Role = enums.RoleOperator
	req.Operator = &OperatorProfile{
		Name:    "Kilima Safaris Ltd",
		Country: "TZ",
		Regions: []string{"Serengeti", "Ngorongoro"},
	}

	summary, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if repo.createdOperator == nil {
		t.Fatal("expected operator to be created")
	}
	if !strings.HasPrefix(repo.createdOperator.Slug, "kilima-safaris-ltd-") {
		t.Fatalf("unexpected operator slug %q", repo.createdOperator.Slug)
	}
	if !repo.createdOperator.IsActive {
		t.Fatal("expected new operator active")
	}
	if len(repo.createdOperator.Regions) != 2 {
		t.Fatalf("expected regions carried over, got %v", repo.createdOperator.Regions)
	}
	if repo.linkedOperator != repo.createdOperator.ID {
		t.Fatal("expected user linked to created operator")
	}
	if summary.OperatorID == nil || *summary.OperatorID != repo.createdOperator.ID {
		t.Fatalf("expected operator id on summary, got %v", summary.OperatorID)
	}
}

func TestRegisterOperatorRequiresProfile(t *testing.T) {
	svc := newRegisterTestService(t, newRegisterStubRepo(), config.AppConfig{Env: "dev"})

	req := travellerRegisterRequest("ops@kilima.example")
	req.Role = enums.RoleOperator
	_, err := svc.Register(context.Background(), req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newRegisterStubRepo()
	repo.data["asha@example.com"] = &models.User{ID: uuid.New(), Email: "asha@example.com"}
	svc := newRegisterTestService(t, repo, config.AppConfig{Env: "dev"})

	_, err := svc.Register(context.Background(), travellerRegisterRequest("asha@example.com"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newRegisterTestService(t, newRegisterStubRepo(), config.AppConfig{Env: "dev"})

	req := travellerRegisterRequest("asha@example.com")
	req.Password = "short"
	_, err := svc.Register(context.Background(), req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := newRegisterTestService(t, newRegisterStubRepo(), config.AppConfig{Env: "dev"})

	req := travellerRegisterRequest("admin@example.com")
	req.Role = enums.RoleAdmin
	_, err := svc.Register(context.Background(), req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdminRegisterDisabledInProd(t *testing.T) {
	svc := newRegisterTestService(t, newRegisterStubRepo(), config.AppConfig{Env: config.AppEnvProd})

	_, err := svc.AdminRegister(context.Background(), travellerRegisterRequest("admin@example.com"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestAdminRegisterOutsideProd(t *testing.T) {
	repo := newRegisterStubRepo()
	svc := newRegisterTestService(t, repo, config.AppConfig{Env: "dev"})

	summary, err := svc.AdminRegister(context.Background(), travellerRegisterRequest("admin@example.com"))
	if err != nil {
		t.Fatalf("admin register failed: %v", err)
	}
	if summary.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role, got %s", summary.Role)
	}
}
