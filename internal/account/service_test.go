package account_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/account"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/account/store"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/database"
)

func setupAccountService(t *testing.T) *account.Service {
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

	return account.NewService(store.NewStore(db))
}

func TestEnsureDefaultAdmin_CreatesOnce(t *testing.T) {
	svc := setupAccountService(t)
	ctx := context.Background()

	if err := svc.EnsureDefaultAdmin(ctx); err != nil {
		t.Fatalf("ensure default admin: %v", err)
	}
	if err := svc.EnsureDefaultAdmin(ctx); err != nil {
		t.Fatalf("second ensure default admin: %v", err)
	}

	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].Role != account.RoleAdmin {
		t.Fatalf("expected admin role, got %s", users[0].Role)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	svc := setupAccountService(t)
	ctx := context.Background()

	req := &account.CreateUserRequest{
		Username: "duplicate",
		Password: "secret123",
		Nickname: "Dup",
		Role:     account.RoleUser,
	}
	if _, err := svc.CreateUser(ctx, req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateUser(ctx, req)
	if err == nil {
		t.Fatal("expected error on duplicate username")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteUser_KeepsLastAdmin(t *testing.T) {
	svc := setupAccountService(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, &account.CreateUserRequest{
		Username: "only-admin",
		Password: "secret123",
		Nickname: "Only Admin",
		Role:     account.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	err = svc.DeleteUser(ctx, admin.ID)
	if err == nil {
		t.Fatal("expected error when deleting last admin")
	}
	if !strings.Contains(err.Error(), "admin") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateUser_KeepsLastAdminRole(t *testing.T) {
	svc := setupAccountService(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, &account.CreateUserRequest{
		Username: "only-admin",
		Password: "secret123",
		Nickname: "Only Admin",
		Role:     account.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	demoted := account.RoleUser
	_, err = svc.UpdateUser(ctx, admin.ID, &account.UpdateUserRequest{Role: &demoted})
	if err == nil {
		t.Fatal("expected error when demoting last admin")
	}
}

func TestAuthenticate(t *testing.T) {
	svc := setupAccountService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, &account.CreateUserRequest{
		Username: "member",
		Password: "secret123",
		Nickname: "Member",
		Role:     account.RoleUser,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	ok, err := svc.Authenticate(ctx, "member", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !ok {
		t.Fatal("expected successful authentication")
	}

	ok, err = svc.Authenticate(ctx, "member", "wrong")
	if err != nil {
		t.Fatalf("authenticate wrong password: %v", err)
	}
	if ok {
		t.Fatal("expected failed authentication")
	}
}

func TestResolveIdentity(t *testing.T) {
	svc := setupAccountService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, &account.CreateUserRequest{
		Username: "member",
		Password: "secret123",
		Nickname: "Member",
		Role:     account.RoleUser,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	user, ok := svc.ResolveIdentity(ctx, "  member ")
	if !ok {
		t.Fatal("expected identity to resolve")
	}
	if user.Username != "member" {
		t.Fatalf("unexpected user: %s", user.Username)
	}

	if _, ok := svc.ResolveIdentity(ctx, "ghost"); ok {
		t.Fatal("expected unknown identity not to resolve")
	}
}
