package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/account"
	accountstore "github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/account/store"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/auth"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/database"
)

func setupAuthTestService(t *testing.T) (*auth.Service, *account.Service) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate db: %v", err)
	}

	accountSvc := account.NewService(accountstore.NewStore(db))
	authSvc := auth.NewService(accountSvc, auth.Config{
		Secret:         "test-secret-key",
		Issuer:         "sandoka-test",
		AccessTokenTTL: 15 * time.Minute,
		RefreshTTL:     24 * time.Hour,
	})

	return authSvc, accountSvc
}

func seedAdmin(t *testing.T, accountSvc *account.Service) *account.User {
	t.Helper()
	admin, err := accountSvc.CreateUser(context.Background(), &account.CreateUserRequest{
		Username: "admin-test",
		Password: "admin-test-password",
		Nickname: "Admin Tester",
		Role:     account.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return admin
}

func TestLogin_IssuesTokenPair(t *testing.T) {
	authSvc, accountSvc := setupAuthTestService(t)
	seedAdmin(t, accountSvc)

	pair, user, err := authSvc.Login(context.Background(), "admin-test", "admin-test-password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if user.Username != "admin-test" {
		t.Fatalf("unexpected user: %s", user.Username)
	}

	claims, err := authSvc.ParseToken(pair.AccessToken, "access")
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != account.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	authSvc, accountSvc := setupAuthTestService(t)
	seedAdmin(t, accountSvc)

	_, _, err := authSvc.Login(context.Background(), "admin-test", "wrong-password")
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_SetupRequiredWithoutAdmin(t *testing.T) {
	authSvc, _ := setupAuthTestService(t)

	_, _, err := authSvc.Login(context.Background(), "nobody", "whatever")
	if !errors.Is(err, auth.ErrSetupRequired) {
		t.Fatalf("expected ErrSetupRequired, got %v", err)
	}
}

func TestParseToken_RejectsWrongType(t *testing.T) {
	authSvc, accountSvc := setupAuthTestService(t)
	admin := seedAdmin(t, accountSvc)

	pair, err := authSvc.IssueTokenPair(admin)
	if err != nil {
		t.Fatalf("issue token pair: %v", err)
	}

	if _, err := authSvc.ParseToken(pair.RefreshToken, "access"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for refresh token on access path, got %v", err)
	}
}

func TestRefresh_RotatesTokens(t *testing.T) {
	authSvc, accountSvc := setupAuthTestService(t)
	seedAdmin(t, accountSvc)

	pair, _, err := authSvc.Login(context.Background(), "admin-test", "admin-test-password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, user, err := authSvc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.AccessToken == "" || rotated.RefreshToken == "" {
		t.Fatal("expected rotated tokens")
	}
	if user.Username != "admin-test" {
		t.Fatalf("unexpected user after refresh: %s", user.Username)
	}
}
