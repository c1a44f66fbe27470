package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account holds one user's running balance. CurrentValue is a derived
// aggregate: it is written only by the ledger service, never by a
// direct update endpoint.
type Account struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	UserID       string          `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	CurrentValue decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"current_value"`
	Currency     string          `gorm:"size:8;not null;default:BRL" json:"currency"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Categories []Category `gorm:"constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

func (a *Account) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
