package ledger

import (
	"errors"
	"fmt"
	"time"

	"finanz-server/internal/models"

	"gorm.io/gorm"
)

// periodClosingDate places the card's closing day in the month of the
// reference time. A closing day beyond the month's length clamps to
// the last valid day (a card closing on the 31st closes Feb 28/29).
func periodClosingDate(ref time.Time, closeDay int) time.Time {
	return clampedDate(ref.Year(), ref.Month(), closeDay)
}

// dueDateFor is one cycle (one month) after the closing date, with the
// same day clamping applied to the target month.
func dueDateFor(closing time.Time, closeDay int) time.Time {
	y, m := closing.Year(), closing.Month()
	if m == time.December {
		return clampedDate(y+1, time.January, closeDay)
	}
	return clampedDate(y, m+1, closeDay)
}

func clampedDate(year int, month time.Month, day int) time.Time {
	if day < 1 {
		day = 1
	}
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// resolveOpenInvoice returns the invoice that accumulates new
// card-linked spend: the most recently created open invoice of the
// card, or a freshly created one for the current billing period.
// Resolving twice within one period yields the same invoice.
func resolveOpenInvoice(tx *gorm.DB, card *models.CreditCard, now time.Time) (*models.Invoice, error) {
	var open models.Invoice
	err := tx.Where("credit_card_id = ? AND paid = ?", card.ID, false).
		Order("created_at DESC, id DESC").
		First(&open).Error
	if err == nil {
		return &open, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load open invoice: %w", err)
	}

	closing := periodClosingDate(now, card.CloseDay)
	return createInvoiceForPeriod(tx, card.ID, closing, dueDateFor(closing, card.CloseDay))
}

// createInvoiceForPeriod inserts an invoice after checking that no
// invoice already exists for the exact closing date.
func createInvoiceForPeriod(tx *gorm.DB, creditCardID string, closing, due time.Time) (*models.Invoice, error) {
	var count int64
	if err := tx.Model(&models.Invoice{}).
		Where("credit_card_id = ? AND closing_date = ?", creditCardID, closing).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check invoice period: %w", err)
	}
	if count > 0 {
		return nil, &ConflictError{Message: "invoice already exists for period"}
	}

	invoice := models.Invoice{
		CreditCardID: creditCardID,
		ClosingDate:  closing,
		DueDate:      due,
	}
	if err := tx.Create(&invoice).Error; err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return &invoice, nil
}
