package account

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ShopFront/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return &Service{Users: store.NewCSVUserStore(filepath.Join(t.TempDir(), "users.csv"))}
}

func TestCreateCustomerAndExists(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	exists, err := svc.Exists(ctx, "alice")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatalf("alice exists before signup")
	}

	if err := svc.CreateCustomer(ctx, "alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	exists, err = svc.Exists(ctx, "alice")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatalf("alice missing after signup")
	}

	u, ok, err := svc.Authenticate(ctx, "alice", "pw")
	if err != nil || !ok {
		t.Fatalf("authenticate: ok=%v err=%v", ok, err)
	}
	if u.Role != store.RoleCustomer {
		t.Fatalf("role=%q want=%q", u.Role, store.RoleCustomer)
	}
}

func TestCreateCustomer_DuplicateBlockedByStore(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if err := svc.CreateCustomer(ctx, "alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Even a caller that skips Exists cannot append a duplicate row.
	err := svc.CreateCustomer(ctx, "alice", "other")
	if !errors.Is(err, store.ErrUsernameTaken) {
		t.Fatalf("err=%v want=ErrUsernameTaken", err)
	}
}
