package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is one billing period of a credit card, bounded by
// ClosingDate and DueDate. At most one open (unpaid) invoice per card
// accumulates transactions at a time. PaidValue tracks partial
// payments until they cover the accumulated total.
type Invoice struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	CreditCardID string          `gorm:"size:36;index;not null" json:"credit_card_id"`
	ClosingDate  time.Time       `gorm:"index;not null" json:"closing_date"`
	DueDate      time.Time       `gorm:"index;not null" json:"due_date"`
	Paid         bool            `gorm:"index;not null;default:false" json:"paid"`
	PaidValue    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"paid_value"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Transactions []Transaction `gorm:"constraint:OnDelete:RESTRICT" json:"transactions,omitempty"`
}

func (i *Invoice) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
