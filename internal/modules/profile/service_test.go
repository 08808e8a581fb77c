package profile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	domain "cockpityara/internal/domain/profile"
	"cockpityara/internal/repository"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:profile_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&domain.CarpenterProfile{}, &domain.CreditTransaction{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return NewService(repository.NewProfileRepository(db))
}

func TestUpdateSetsNameWorkshopAndPassword(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	p, err := svc.Update(ctx, UpdateInput{Name: "Seu Arlindo", Workshop: "Marcenaria Bom Corte", Password: "oficina123"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if p.Name != "Seu Arlindo" || p.Workshop != "Marcenaria Bom Corte" {
		t.Fatalf("profile fields not applied: %+v", p)
	}
	if !p.HasPassword() {
		t.Fatal("expected password to be set")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("oficina123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestUpdateEmptyFieldsKeepExistingValues(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.Update(ctx, UpdateInput{Name: "Seu Arlindo", Workshop: "Bom Corte"}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	p, err := svc.Update(ctx, UpdateInput{Workshop: "Bom Corte Móveis"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if p.Name != "Seu Arlindo" {
		t.Fatalf("empty name must keep existing value, got %q", p.Name)
	}
	if p.Workshop != "Bom Corte Móveis" {
		t.Fatalf("workshop not updated: %q", p.Workshop)
	}
	if p.HasPassword() {
		t.Fatal("empty password must not set a hash")
	}
}

func TestPurchaseCredits(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	total, err := svc.PurchaseCredits(ctx, 20)
	if err != nil {
		t.Fatalf("PurchaseCredits returned error: %v", err)
	}
	if total != 20 {
		t.Fatalf("expected balance 20, got %d", total)
	}

	txns, err := svc.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions returned error: %v", err)
	}
	if len(txns) != 1 || txns[0].Type != domain.TransactionTypeAdd || txns[0].Note != "purchase" {
		t.Fatalf("unexpected ledger: %+v", txns)
	}
}

func TestPurchaseCreditsRejectsNonPositiveAmount(t *testing.T) {
	svc := setupService(t)

	if _, err := svc.PurchaseCredits(context.Background(), 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
