package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/safariconnector/backend/pkg/auth"
	"github.com/safariconnector/backend/pkg/auth/session"
	"github.com/safariconnector/backend/pkg/config"
	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/enums"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "safariconnector",
		ExpirationMinutes: 30,
	}
}

type stubRepo struct {
	user *models.User
	err  error
}

func (s stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s stubRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubRepo) CreateUser(ctx context.Context, user *models.User) error { return nil }

func (s stubRepo) CreateOperator(ctx context.Context, operator *models.Operator) error { return nil }

func (s stubRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

func (s stubRepo) SetOperatorID(ctx context.Context, userID, operatorID uuid.UUID) error { return nil }

type stubSessionManager struct {
	refreshToken string
	rotateErr    error
	revoked      []string
	newAccessID  string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return s.newAccessID, s.refreshToken, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func buildTestService(t *testing.T, user *models.User) (Service, *stubSessionManager) {
	t.Helper()
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token", newAccessID: session.NewAccessID()}
	svc, err := NewService(ServiceParams{
		Repo:           stubRepo{user: user},
		SessionManager: sessionMgr,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessionMgr
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func travellerUser(t *testing.T, password string) *models.User {
	t.Helper()
	return &models.User{
		ID:           uuid.New(),
		Email:        "asha@example.com",
		PasswordHash: mustHashPassword(t, password),
		FullName:     "Asha Mwangi",
		Role:         enums.RoleTraveller,
		IsActive:     true,
	}
}

func expectUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginIssuesTokenPair(t *testing.T) {
	password := "traveller-secret"
	user := travellerUser(t, password)
	svc, _ := buildTestService(t, user)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Asha@Example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.RoleTraveller {
		t.Fatalf("expected traveller role claim, got %s", claims.Role)
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("expected refresh token, got %q", resp.RefreshToken)
	}
	if resp.User == nil || resp.User.LastLoginAt == nil {
		t.Fatal("expected last login recorded on user summary")
	}
}

func TestServiceLoginCarriesOperatorClaim(t *testing.T) {
	password := "operator-secret"
	operatorID := uuid.New()
	user := travellerUser(t, password)
	user.Role = enums.RoleOperator
	user.OperatorID = &operatorID
	svc, _ := buildTestService(t, user)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.OperatorID == nil || *claims.OperatorID != operatorID {
		t.Fatalf("expected operator claim %s, got %v", operatorID, claims.OperatorID)
	}
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	user := travellerUser(t, "correct-password")
	svc, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong-password"})
	expectUnauthorized(t, err)
}

func TestServiceLoginRejectsUnknownEmail(t *testing.T) {
	svc, _ := buildTestService(t, nil)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	expectUnauthorized(t, err)
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	password := "traveller-secret"
	user := travellerUser(t, password)
	user.IsActive = false
	svc, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	expectUnauthorized(t, err)
}

func TestServiceAdminLoginRejectsNonAdmin(t *testing.T) {
	password := "traveller-secret"
	user := travellerUser(t, password)
	svc, _ := buildTestService(t, user)

	_, err := svc.AdminLogin(context.Background(), LoginRequest{Email: user.Email, Password: password})
	expectUnauthorized(t, err)
}

func TestServiceAdminLoginAllowsAdmin(t *testing.T) {
	password := "admin-secret"
	user := travellerUser(t, password)
	user.Role = enums.RoleAdmin
	svc, _ := buildTestService(t, user)

	resp, err := svc.AdminLogin(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role claim, got %s", claims.Role)
	}
}

func TestServiceRefreshRotatesTokens(t *testing.T) {
	password := "traveller-secret"
	user := travellerUser(t, password)
	svc, sessionMgr := buildTestService(t, user)

	accessToken, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "refresh-token",
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated access token: %v", err)
	}
	if claims.ID != sessionMgr.newAccessID {
		t.Fatalf("expected rotated access id %s, got %s", sessionMgr.newAccessID, claims.ID)
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("expected rotated refresh token, got %q", resp.RefreshToken)
	}
}

func TestServiceRefreshRejectsInvalidRefreshToken(t *testing.T) {
	password := "traveller-secret"
	user := travellerUser(t, password)
	svc, sessionMgr := buildTestService(t, user)
	sessionMgr.rotateErr = session.ErrInvalidRefreshToken

	accessToken, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "stolen-token",
	})
	expectUnauthorized(t, err)
}

func TestServiceRefreshRejectsDeactivatedUser(t *testing.T) {
	password := "traveller-secret"
	user := travellerUser(t, password)
	user.IsActive = false
	svc, _ := buildTestService(t, user)

	accessToken, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   enums.RoleTraveller,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "refresh-token",
	})
	expectUnauthorized(t, err)
}

func TestServiceRefreshRejectsGarbageToken(t *testing.T) {
	svc, _ := buildTestService(t, nil)
	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "refresh-token",
	})
	expectUnauthorized(t, err)
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	svc, sessionMgr := buildTestService(t, nil)
	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessionMgr.revoked) != 1 || sessionMgr.revoked[0] != "access-id" {
		t.Fatalf("expected session revoked, got %v", sessionMgr.revoked)
	}
}

func TestServiceLogoutRejectsMissingSession(t *testing.T) {
	svc, _ := buildTestService(t, nil)
	expectUnauthorized(t, svc.Logout(context.Background(), "  "))
}
