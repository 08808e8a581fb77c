package profile

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnerKey is the fixed identity of the per-device profile singleton
const OwnerKey = "owner"

const (
	TransactionTypeAdd    = "ADD"
	TransactionTypeSpend  = "SPEND"
	TransactionTypeRefund = "REFUND"
)

// CarpenterProfile holds operator identity, credit balance and integration
// settings. Exactly one row exists per device, keyed by OwnerKey.
type CarpenterProfile struct {
	ID           string `gorm:"column:id;primaryKey" json:"id"`
	Name         string `gorm:"column:name" json:"name"`
	Workshop     string `gorm:"column:workshop" json:"workshop"`
	PasswordHash string `gorm:"column:password_hash" json:"-"`
	Credits      int64  `gorm:"column:credits;not null;default:0" json:"credits"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (CarpenterProfile) TableName() string { return "carpenter_profile" }

// HasPassword reports whether the operator has set a login password
func (p *CarpenterProfile) HasPassword() bool {
	return p.PasswordHash != ""
}

// DisplayName returns the operator name, falling back to the workshop name
func (p *CarpenterProfile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Workshop != "" {
		return p.Workshop
	}
	return "Marceneiro"
}

// CreditTransaction records balance operations on the profile
type CreditTransaction struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProfileID string    `gorm:"column:profile_id;not null;index" json:"profile_id"`
	Amount    int64     `gorm:"column:amount;not null" json:"amount"`
	Type      string    `gorm:"column:type;type:varchar(16);not null;index" json:"type"`
	Note      string    `gorm:"column:note" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CreditTransaction) TableName() string { return "credit_transactions" }

func (t *CreditTransaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
