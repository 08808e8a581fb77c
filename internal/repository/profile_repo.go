package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cockpityara/internal/domain/profile"
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// ProfileRepository persists the per-device carpenter profile singleton and
// its credit ledger in the local store.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get returns the profile singleton, creating an empty one on first read.
func (r *ProfileRepository) Get(ctx context.Context) (*profile.CarpenterProfile, error) {
	var p profile.CarpenterProfile
	err := r.db.WithContext(ctx).Where("id = ?", profile.OwnerKey).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p = profile.CarpenterProfile{ID: profile.OwnerKey, Credits: 0}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Save overwrites the profile singleton, keyed by the fixed owner identity.
func (r *ProfileRepository) Save(ctx context.Context, p *profile.CarpenterProfile) error {
	p.ID = profile.OwnerKey
	p.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(p).Error
}

// AddCredits adds amount to the balance and records an ADD ledger row.
// Returns the new total.
func (r *ProfileRepository) AddCredits(ctx context.Context, amount int64, note string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := getProfileForUpdate(tx)
		if err != nil {
			return err
		}

		p.Credits += amount
		if err := tx.Model(&profile.CarpenterProfile{}).Where("id = ?", p.ID).Update("credits", p.Credits).Error; err != nil {
			return err
		}

		txn := profile.CreditTransaction{ProfileID: p.ID, Amount: amount, Type: profile.TransactionTypeAdd, Note: note}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		total = p.Credits
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// SpendCredits deducts amount from the balance and records a SPEND ledger row.
func (r *ProfileRepository) SpendCredits(ctx context.Context, amount int64, note string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := getProfileForUpdate(tx)
		if err != nil {
			return err
		}

		if p.Credits < amount {
			return ErrInsufficientCredits
		}

		p.Credits -= amount
		if err := tx.Model(&profile.CarpenterProfile{}).Where("id = ?", p.ID).Update("credits", p.Credits).Error; err != nil {
			return err
		}

		txn := profile.CreditTransaction{ProfileID: p.ID, Amount: amount, Type: profile.TransactionTypeSpend, Note: note}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		total = p.Credits
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// RefundCredits gives back credits spent on a failed operation, recording a
// REFUND ledger row.
func (r *ProfileRepository) RefundCredits(ctx context.Context, amount int64, note string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := getProfileForUpdate(tx)
		if err != nil {
			return err
		}

		p.Credits += amount
		if err := tx.Model(&profile.CarpenterProfile{}).Where("id = ?", p.ID).Update("credits", p.Credits).Error; err != nil {
			return err
		}

		txn := profile.CreditTransaction{ProfileID: p.ID, Amount: amount, Type: profile.TransactionTypeRefund, Note: note}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		total = p.Credits
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListTransactions returns the credit ledger, newest first.
func (r *ProfileRepository) ListTransactions(ctx context.Context) ([]profile.CreditTransaction, error) {
	var txns []profile.CreditTransaction
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profile.OwnerKey).
		Order("created_at desc").
		Find(&txns).Error
	return txns, err
}

func getProfileForUpdate(tx *gorm.DB) (*profile.CarpenterProfile, error) {
	var p profile.CarpenterProfile
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", profile.OwnerKey).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p = profile.CarpenterProfile{ID: profile.OwnerKey, Credits: 0}
	if err := tx.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
