package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Objective is a savings goal. Transactions may link to it; progress is
// a read-only aggregation over the linked transactions.
type Objective struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	AccountID   string          `gorm:"size:36;index;not null" json:"account_id"`
	Title       string          `gorm:"size:64;not null" json:"title"`
	TargetValue decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"target_value"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (o *Objective) BeforeCreate(_ *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
