package profile

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	domain "cockpityara/internal/domain/profile"
)

// Service manages the carpenter profile singleton and the simulated credit
// purchase flow. There is no payment processor: a purchase records an ADD
// ledger row and returns the new balance.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*domain.CarpenterProfile, error) {
	return s.repo.Get(ctx)
}

// UpdateInput carries mutable profile fields; empty strings mean unchanged
// except Password, which is only applied when non-empty.
type UpdateInput struct {
	Name     string
	Workshop string
	Password string
}

func (s *Service) Update(ctx context.Context, in UpdateInput) (*domain.CarpenterProfile, error) {
	p, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		p.Name = name
	}
	if workshop := strings.TrimSpace(in.Workshop); workshop != "" {
		p.Workshop = workshop
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		p.PasswordHash = string(hash)
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PurchaseCredits simulates a credit purchase. Returns the new total.
func (s *Service) PurchaseCredits(ctx context.Context, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.repo.AddCredits(ctx, amount, "purchase")
}

// Transactions returns the credit ledger, newest first.
func (s *Service) Transactions(ctx context.Context) ([]domain.CreditTransaction, error) {
	return s.repo.ListTransactions(ctx)
}
