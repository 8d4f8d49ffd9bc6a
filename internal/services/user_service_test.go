package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/testutil"
)

func TestUserSelfOnlyEdits(t *testing.T) {
	db := testutil.DB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice@example.com", models.RoleUser)
	bob := testutil.SeedUser(t, db, "bob@example.com", models.RoleUser)
	city := "Moscow"

	if _, err := svc.Update(ctx, identity(bob), alice.ID, &dto.UserUpdateRequest{City: &city}); !errors.Is(err, ErrCannotEditUser) {
		t.Fatalf("expected ErrCannotEditUser, got %v", err)
	}
	if err := svc.Delete(ctx, identity(bob), alice.ID); !errors.Is(err, ErrCannotDeleteUser) {
		t.Fatalf("expected ErrCannotDeleteUser, got %v", err)
	}

	updated, err := svc.Update(ctx, identity(alice), alice.ID, &dto.UserUpdateRequest{City: &city})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if updated.City == nil || *updated.City != city {
		t.Fatalf("city not updated: %+v", updated.City)
	}

	taken := "bob@example.com"
	if _, err := svc.Update(ctx, identity(alice), alice.ID, &dto.UserUpdateRequest{Email: &taken}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserGetShowsFullRecordOnlyToSelf(t *testing.T) {
	db := testutil.DB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice@example.com", models.RoleUser)
	bob := testutil.SeedUser(t, db, "bob@example.com", models.RoleUser)

	self, err := svc.Get(ctx, identity(alice), alice.ID)
	if err != nil {
		t.Fatalf("get self: %v", err)
	}
	if _, ok := self.(*dto.UserDetail); !ok {
		t.Fatalf("expected full record for self, got %T", self)
	}

	other, err := svc.Get(ctx, identity(bob), alice.ID)
	if err != nil {
		t.Fatalf("get other: %v", err)
	}
	if _, ok := other.(*dto.UserPublic); !ok {
		t.Fatalf("expected public record for others, got %T", other)
	}

	users, total, err := svc.List(ctx, identity(bob), allRows)
	if err != nil || total != 2 {
		t.Fatalf("list: total=%d err=%v", total, err)
	}
	first, ok := users[0].(*dto.UserPublic)
	if !ok || first.Email != "alice@example.com" {
		t.Fatalf("expected alice's public entry first, got %#v", users[0])
	}
}

func TestUserListShowsFullRecordForOwnEntry(t *testing.T) {
	db := testutil.DB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice@example.com", models.RoleUser)
	testutil.SeedUser(t, db, "bob@example.com", models.RoleUser)
	payment := models.Payment{UserID: &alice.ID, Amount: 100, PaymentType: models.PaymentCash}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	users, _, err := svc.List(ctx, identity(alice), allRows)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	self, ok := users[0].(*dto.UserDetail)
	if !ok {
		t.Fatalf("expected full record for own entry, got %T", users[0])
	}
	if self.Email != "alice@example.com" || self.Role != models.RoleUser {
		t.Fatalf("unexpected own entry: %+v", self.User)
	}
	if len(self.Payments) != 1 || self.Payments[0].ID != payment.ID {
		t.Fatalf("expected own payments in entry, got %+v", self.Payments)
	}

	raw, err := json.Marshal(users[1])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "payments") || strings.Contains(string(raw), "role") {
		t.Fatalf("other user's entry leaks private fields: %s", raw)
	}
}
