package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction types. Value is always stored positive; the sign of the
// balance effect comes from the type.
const (
	TypeInput  = "input"
	TypeOutput = "output"
)

// Transaction is the atomic ledger entry. InvoiceID is set iff
// CreditCardID is set; both are assigned by the ledger service.
type Transaction struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	AccountID    string          `gorm:"size:36;index;not null" json:"account_id"`
	CategoryID   string          `gorm:"size:36;index;not null" json:"category_id"`
	CreditCardID *string         `gorm:"size:36;index" json:"credit_card_id,omitempty"`
	InvoiceID    *string         `gorm:"size:36;index" json:"invoice_id,omitempty"`
	ObjectiveID  *string         `gorm:"size:36;index" json:"objective_id,omitempty"`
	Value        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"value"`
	Type         string          `gorm:"size:16;not null" json:"type"`
	Destination  string          `gorm:"size:128" json:"destination"`
	Description  string          `gorm:"size:255" json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Category Category `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
}

func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
