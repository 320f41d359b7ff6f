package service_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"portfolio-tracker/internal/domain"
	"portfolio-tracker/internal/service"
	"portfolio-tracker/internal/validation"
)

func newUserFixture(users *fakeUsers, rules ...service.Rule) service.UserService {
	authz := service.NewAuthorizer(users, newFakePortfolios(), nil, "admin", rules...)
	return service.NewUserService(users, authz, bcrypt.MinCost)
}

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	svc := newUserFixture(newFakeUsers())
	ctx := context.Background()

	user, err := svc.Register(ctx, validation.Input{
		"email": "New@Example.com", "password": "password123", "firstName": "New", "lastName": "User",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == 0 || user.Email != "new@example.com" || user.PasswordHash == "password123" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := svc.Authenticate(ctx, validation.Input{"email": "new@example.com", "password": "password123"}); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, validation.Input{"email": "new@example.com", "password": "wrong-pass"}); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, validation.Input{"email": "nobody@example.com", "password": "password123"}); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	_, err = svc.Register(ctx, validation.Input{
		"email": "new@example.com", "password": "password456", "firstName": "Dup", "lastName": "User",
	})
	if domain.KindOf(err) != domain.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUserService_Update(t *testing.T) {
	users := newFakeUsers(
		domain.User{ID: 5, Email: "a@b.com", FirstName: "A", LastName: "B", Role: "old"},
		domain.User{ID: 6, Email: "m@b.com"},
	)
	svc := newUserFixture(users)
	ctx := context.Background()

	body := validation.Input{"firstName": "Ada", "lastName": "Lovelace", "portfolioManagerId": "6"}
	first, err := svc.Update(ctx, 5, 5, body)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	second, err := svc.Update(ctx, 5, 5, body)
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if *first.PortfolioManagerID != 6 || first.Role != "old" || first.FirstName != "Ada" {
		t.Fatalf("unexpected user %+v", first)
	}
	if first.FirstName != second.FirstName || *second.PortfolioManagerID != 6 || second.Email != "a@b.com" {
		t.Fatalf("expected identical state, got %+v and %+v", first, second)
	}
}

func TestUserService_UpdateOrdering(t *testing.T) {
	users := newFakeUsers(domain.User{ID: 5, Email: "a@b.com"}, domain.User{ID: 7, Email: "c@d.com"})
	svc := newUserFixture(users)
	ctx := context.Background()

	_, err := svc.Update(ctx, 5, 7, validation.Input{"firstName": ""})
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation before authorization, got %v", err)
	}
	_, err = svc.Update(ctx, 5, 7, validation.Input{"firstName": "X", "lastName": "Y"})
	if domain.KindOf(err) != domain.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestUserService_UpdateManagerChecks(t *testing.T) {
	users := newFakeUsers(domain.User{ID: 5, Email: "a@b.com"})
	svc := newUserFixture(users)
	ctx := context.Background()

	for _, manager := range []any{"5", "99"} {
		_, err := svc.Update(ctx, 5, 5, validation.Input{"firstName": "A", "lastName": "B", "portfolioManagerId": manager})
		var appErr *domain.Error
		if !errors.As(err, &appErr) || appErr.Kind != domain.KindValidation || appErr.Violations[0].Field != "portfolioManagerId" {
			t.Fatalf("manager %v: expected portfolioManagerId violation, got %v", manager, err)
		}
	}

	cleared, err := svc.Update(ctx, 5, 5, validation.Input{"firstName": "A", "lastName": "B", "portfolioManagerId": nil})
	if err != nil || cleared.PortfolioManagerID != nil {
		t.Fatalf("expected cleared manager, got %+v, %v", cleared, err)
	}
}

func TestUserService_UpdateRoleRequiresAdmin(t *testing.T) {
	users := newFakeUsers(
		domain.User{ID: 1, Email: "root@b.com", Role: "admin"},
		domain.User{ID: 5, Email: "a@b.com", Role: "investor"},
	)
	svc := newUserFixture(users)
	ctx := context.Background()

	got, err := svc.Update(ctx, 5, 5, validation.Input{"firstName": "A", "lastName": "B", "role": "admin"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Role != "investor" {
		t.Fatalf("expected stored role to be kept, got %q", got.Role)
	}
	if _, err := svc.List(ctx, 5); domain.KindOf(err) != domain.KindUnauthorized {
		t.Fatalf("expected unauthorized list after role attempt, got %v", err)
	}

	got, err = svc.Update(ctx, 1, 1, validation.Input{"firstName": "R", "lastName": "T", "role": "auditor"})
	if err != nil {
		t.Fatalf("admin Update: %v", err)
	}
	if got.Role != "auditor" {
		t.Fatalf("expected admin to change own role, got %q", got.Role)
	}
}

func TestUserService_UpdateStorageFailureKeepsClassification(t *testing.T) {
	users := newFakeUsers(domain.User{ID: 5})
	svc := newUserFixture(users)
	users.fail = errStoreDown

	_, err := svc.Update(context.Background(), 5, 5, validation.Input{"firstName": "A", "lastName": "B"})
	if domain.KindOf(err) != domain.KindStorage {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestUserService_ListRequiresAdmin(t *testing.T) {
	users := newFakeUsers(domain.User{ID: 1, Role: "admin"}, domain.User{ID: 2})
	svc := newUserFixture(users)
	ctx := context.Background()

	all, err := svc.List(ctx, 1)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 users, got %v, %v", all, err)
	}
	if _, err := svc.List(ctx, 2); domain.KindOf(err) != domain.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestUserService_Confirm(t *testing.T) {
	svc := newUserFixture(newFakeUsers(domain.User{ID: 3, Email: "a@b.com"}))
	ctx := context.Background()

	id, err := svc.Confirm(ctx, validation.Input{"email": "A@b.com"})
	if err != nil || id != 3 {
		t.Fatalf("expected id 3, got %d, %v", id, err)
	}
	if _, err := svc.Confirm(ctx, validation.Input{"email": "x@b.com"}); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Confirm(ctx, validation.Input{"email": "nope"}); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUserService_Managed(t *testing.T) {
	users := newFakeUsers(
		domain.User{ID: 1},
		domain.User{ID: 2, PortfolioManagerID: int64p(1)},
		domain.User{ID: 3, PortfolioManagerID: int64p(1)},
	)
	svc := newUserFixture(users)

	managed, err := svc.Managed(context.Background(), 1, 1)
	if err != nil || len(managed) != 2 {
		t.Fatalf("expected 2 managed users, got %v, %v", managed, err)
	}
	if _, err := svc.Managed(context.Background(), 2, 1); domain.KindOf(err) != domain.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
