package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditCard belongs to one account. AvailableLimit is the remaining
// spendable headroom, maintained by the ledger service: decremented on
// card-linked spend, incremented on invoice payment. CloseDay and
// ExpireDay are day-of-month values defining the billing cycle.
type CreditCard struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	AccountID      string          `gorm:"size:36;index;not null" json:"account_id"`
	Company        string          `gorm:"size:64;not null" json:"company"`
	Limit          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"limit"`
	AvailableLimit decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"available_limit"`
	CloseDay       int             `gorm:"not null" json:"close_day"`
	ExpireDay      int             `gorm:"not null" json:"expire_day"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Invoices []Invoice `gorm:"constraint:OnDelete:CASCADE" json:"invoices,omitempty"`
}

func (cc *CreditCard) BeforeCreate(_ *gorm.DB) error {
	if cc.ID == "" {
		cc.ID = uuid.NewString()
	}
	return nil
}
