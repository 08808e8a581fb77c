package profile

import (
	"context"

	domain "cockpityara/internal/domain/profile"
)

// Repository is the local-store persistence of the profile singleton
type Repository interface {
	Get(ctx context.Context) (*domain.CarpenterProfile, error)
	Save(ctx context.Context, p *domain.CarpenterProfile) error
	AddCredits(ctx context.Context, amount int64, note string) (int64, error)
	ListTransactions(ctx context.Context) ([]domain.CreditTransaction, error)
}
