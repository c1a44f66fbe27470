package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Planning is a monthly budget envelope for an account. AvailableLimit
// is a derived aggregate consumed by transactions in tracked
// categories. One planning per account and month.
type Planning struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	AccountID      string          `gorm:"size:36;index;not null" json:"account_id"`
	Title          string          `gorm:"size:64;not null" json:"title"`
	Month          time.Time       `gorm:"index;not null" json:"month"`
	Limit          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"limit"`
	AvailableLimit decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"available_limit"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Categories []PlanningCategory `gorm:"constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

// PlanningCategory is a per-category sub-budget inside a planning.
type PlanningCategory struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	PlanningID     string          `gorm:"size:36;index;not null" json:"planning_id"`
	CategoryID     string          `gorm:"size:36;index;not null" json:"category_id"`
	Limit          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"limit"`
	AvailableLimit decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"available_limit"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Category Category `gorm:"constraint:OnDelete:CASCADE" json:"category,omitempty"`
}

func (p *Planning) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (pc *PlanningCategory) BeforeCreate(_ *gorm.DB) error {
	if pc.ID == "" {
		pc.ID = uuid.NewString()
	}
	return nil
}
