package repository

import (
	"context"
	"errors"
	"testing"

	domainprofile "cockpityara/internal/domain/profile"
)

func TestProfileGetCreatesSingleton(t *testing.T) {
	repo := NewProfileRepository(setupLocalDB(t))
	ctx := context.Background()

	p, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if p.ID != domainprofile.OwnerKey {
		t.Fatalf("expected owner singleton, got id %q", p.ID)
	}
	if p.Credits != 0 {
		t.Fatalf("expected zero starting balance, got %d", p.Credits)
	}

	again, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("second Get returned error: %v", err)
	}
	if again.ID != p.ID {
		t.Fatal("expected the same singleton on repeat reads")
	}
}

func TestAddCredits(t *testing.T) {
	repo := NewProfileRepository(setupLocalDB(t))
	ctx := context.Background()

	total, err := repo.AddCredits(ctx, 10, "purchase")
	if err != nil {
		t.Fatalf("AddCredits returned error: %v", err)
	}
	if total != 10 {
		t.Fatalf("expected balance 10, got %d", total)
	}
}

func TestAddCreditsIsAssociative(t *testing.T) {
	ctx := context.Background()

	split := NewProfileRepository(setupLocalDB(t))
	if _, err := split.AddCredits(ctx, 3, "a"); err != nil {
		t.Fatalf("AddCredits returned error: %v", err)
	}
	splitTotal, err := split.AddCredits(ctx, 7, "b")
	if err != nil {
		t.Fatalf("AddCredits returned error: %v", err)
	}

	if splitTotal != 10 {
		t.Fatalf("adding 3 then 7 should equal adding 10, got %d", splitTotal)
	}
}

func TestAddCreditsRejectsNonPositiveAmount(t *testing.T) {
	repo := NewProfileRepository(setupLocalDB(t))

	if _, err := repo.AddCredits(context.Background(), 0, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := repo.AddCredits(context.Background(), -5, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSpendCredits(t *testing.T) {
	repo := NewProfileRepository(setupLocalDB(t))
	ctx := context.Background()

	if _, err := repo.AddCredits(ctx, 5, "seed"); err != nil {
		t.Fatalf("AddCredits returned error: %v", err)
	}

	total, err := repo.SpendCredits(ctx, 2, "chat")
	if err != nil {
		t.Fatalf("SpendCredits returned error: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected balance 3, got %d", total)
	}
}

func TestSpendCreditsInsufficientBalance(t *testing.T) {
	repo := NewProfileRepository(setupLocalDB(t))
	ctx := context.Background()

	if _, err := repo.SpendCredits(ctx, 1, "chat"); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	p, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if p.Credits != 0 {
		t.Fatalf("failed spend must not change balance, got %d", p.Credits)
	}
}

func TestRefundCreditsRestoresBalance(t *testing.T) {
	repo := NewProfileRepository(setupLocalDB(t))
	ctx := context.Background()

	if _, err := repo.AddCredits(ctx, 4, "seed"); err != nil {
		t.Fatalf("AddCredits returned error: %v", err)
	}
	if _, err := repo.SpendCredits(ctx, 4, "estimate"); err != nil {
		t.Fatalf("SpendCredits returned error: %v", err)
	}

	total, err := repo.RefundCredits(ctx, 4, "estimate failed")
	if err != nil {
		t.Fatalf("RefundCredits returned error: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected balance restored to 4, got %d", total)
	}
}

func TestLedgerRecordsEveryMovement(t *testing.T) {
	repo := NewProfileRepository(setupLocalDB(t))
	ctx := context.Background()

	if _, err := repo.AddCredits(ctx, 10, "purchase"); err != nil {
		t.Fatalf("AddCredits returned error: %v", err)
	}
	if _, err := repo.SpendCredits(ctx, 1, "chat"); err != nil {
		t.Fatalf("SpendCredits returned error: %v", err)
	}
	if _, err := repo.RefundCredits(ctx, 1, "stale reply"); err != nil {
		t.Fatalf("RefundCredits returned error: %v", err)
	}

	txns, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions returned error: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("expected 3 ledger rows, got %d", len(txns))
	}

	types := map[string]bool{}
	for _, txn := range txns {
		types[txn.Type] = true
	}
	for _, want := range []string{
		domainprofile.TransactionTypeAdd,
		domainprofile.TransactionTypeSpend,
		domainprofile.TransactionTypeRefund,
	} {
		if !types[want] {
			t.Fatalf("missing ledger row of type %s", want)
		}
	}
}

func TestSaveProfileKeepsOwnerKey(t *testing.T) {
	repo := NewProfileRepository(setupLocalDB(t))
	ctx := context.Background()

	p, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	p.Name = "Seu Arlindo"
	p.Workshop = "Marcenaria Bom Corte"
	p.ID = "something-else"
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Name != "Seu Arlindo" || got.Workshop != "Marcenaria Bom Corte" {
		t.Fatalf("profile fields not saved: %+v", got)
	}
	if got.ID != domainprofile.OwnerKey {
		t.Fatalf("Save must pin the owner key, got %q", got.ID)
	}
}
