package usecase

import (
	"context"
	"testing"

	"ferienpass/internal/data/entity"
	"ferienpass/internal/dto/request"
	"ferienpass/pkg/apperrors"
	"ferienpass/pkg/utils"

	"go.uber.org/zap"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeStore) {
	t.Helper()
	repo, store := newTestRepo()
	config := &utils.Config{Session: utils.SessionConfig{ExpiryHours: 24}}
	return NewAuthService(repo, config, zap.NewNop()), store
}

func TestRegisterCreatesGuardianWithSession(t *testing.T) {
	svc, store := newAuthFixture(t)

	resp, err := svc.Register(context.Background(), &request.RegisterRequest{
		Username: "familie-weber",
		Email:    "weber@example.com",
		Password: "geheim123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("registration should hand out a session token")
	}

	var user *entity.User
	for _, u := range store.users {
		user = u
	}
	if user == nil || user.Role != entity.RoleGuardian {
		t.Error("new accounts must start as guardians")
	}
	if !user.IsActive {
		t.Error("new accounts must be active")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newAuthFixture(t)

	first := &request.RegisterRequest{
		Username: "familie-weber",
		Email:    "weber@example.com",
		Password: "geheim123",
	}
	if _, err := svc.Register(context.Background(), first); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), &request.RegisterRequest{
		Username: "andere-familie",
		Email:    "weber@example.com",
		Password: "geheim123",
	})
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict for duplicate email, got %v", err)
	}

	_, err = svc.Register(context.Background(), &request.RegisterRequest{
		Username: "familie-weber",
		Email:    "weber2@example.com",
		Password: "geheim123",
	})
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict for duplicate username, got %v", err)
	}
}

func TestLoginAcceptsEmailOrUsername(t *testing.T) {
	svc, _ := newAuthFixture(t)
	if _, err := svc.Register(context.Background(), &request.RegisterRequest{
		Username: "familie-weber",
		Email:    "weber@example.com",
		Password: "geheim123",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), &request.LoginRequest{
		Username: "weber@example.com", Password: "geheim123",
	}); err != nil {
		t.Errorf("login by email failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), &request.LoginRequest{
		Username: "familie-weber", Password: "geheim123",
	}); err != nil {
		t.Errorf("login by username failed: %v", err)
	}

	_, err := svc.Login(context.Background(), &request.LoginRequest{
		Username: "familie-weber", Password: "falsch123",
	})
	if !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("expected unauthorized for wrong password, got %v", err)
	}
	_, err = svc.Login(context.Background(), &request.LoginRequest{
		Username: "niemand", Password: "geheim123",
	})
	if !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("expected unauthorized for unknown account, got %v", err)
	}
}

func TestLoginRefusesDeactivatedAccount(t *testing.T) {
	svc, store := newAuthFixture(t)
	if _, err := svc.Register(context.Background(), &request.RegisterRequest{
		Username: "familie-weber",
		Email:    "weber@example.com",
		Password: "geheim123",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	for _, u := range store.users {
		u.IsActive = false
	}

	_, err := svc.Login(context.Background(), &request.LoginRequest{
		Username: "familie-weber", Password: "geheim123",
	})
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden for deactivated account, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, store := newAuthFixture(t)
	resp, err := svc.Register(context.Background(), &request.RegisterRequest{
		Username: "familie-weber",
		Email:    "weber@example.com",
		Password: "geheim123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.Logout(context.Background(), resp.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	session := store.sessions[resp.Token]
	if session == nil || session.RevokedAt == nil {
		t.Error("logout should revoke the session")
	}

	err = svc.Logout(context.Background(), "not-a-token")
	if !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("expected unauthorized for malformed token, got %v", err)
	}
}
