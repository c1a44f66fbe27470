package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is an investment-like balance pool. Total is a derived
// aggregate maintained by moviments through the ledger service.
type Holding struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	AccountID string          `gorm:"size:36;index;not null" json:"account_id"`
	Name      string          `gorm:"size:64;not null" json:"name"`
	Tax       decimal.Decimal `gorm:"type:decimal(8,4)" json:"tax"`
	DueDate   *time.Time      `json:"due_date,omitempty"`
	Total     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Moviments []Moviment `gorm:"constraint:OnDelete:CASCADE" json:"moviments,omitempty"`
}

// Moviment moves money between an account and a holding. An input
// moviment funds the holding (account down, holding up); an output
// moviment withdraws from it.
type Moviment struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	HoldingID string          `gorm:"size:36;index;not null" json:"holding_id"`
	AccountID string          `gorm:"size:36;index;not null" json:"account_id"`
	Value     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"value"`
	Type      string          `gorm:"size:16;not null" json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (h *Holding) BeforeCreate(_ *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

func (m *Moviment) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
