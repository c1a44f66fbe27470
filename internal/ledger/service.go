package ledger

import (
	"errors"
	"fmt"
	"time"

	"finanz-server/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the single write path for every derived aggregate:
// account balances, credit card available limits, planning envelopes
// and holding totals. All adjustments belonging to one ledger event
// run inside one storage transaction, so a failed sub-update leaves
// nothing applied.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateTransaction validates the entry, resolves the open invoice for
// card-linked spend, inserts the row and applies its aggregate effect.
func (s *Service) CreateTransaction(in EntryInput) (*models.Transaction, error) {
	var created models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		refs, err := validateEntry(tx, in)
		if err != nil {
			return err
		}

		t := models.Transaction{
			AccountID:    in.AccountID,
			CategoryID:   in.CategoryID,
			CreditCardID: in.CreditCardID,
			ObjectiveID:  in.ObjectiveID,
			Value:        in.Value,
			Type:         in.Type,
			Destination:  in.Destination,
			Description:  in.Description,
		}
		if refs.card != nil {
			invoice, err := resolveOpenInvoice(tx, refs.card, time.Now())
			if err != nil {
				return err
			}
			t.InvoiceID = &invoice.ID
		}

		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		if err := applyEntry(tx, &t, 1); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTransaction reverses the stored entry's effect, then applies
// the new one. The end state equals deleting the old transaction and
// creating a new one.
func (s *Service) UpdateTransaction(id string, in EntryInput) (*models.Transaction, error) {
	var updated models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var orig models.Transaction
		if err := tx.First(&orig, "id = ?", id).Error; err != nil {
			return notFoundOr("transaction", id, err)
		}

		refs, err := validateEntry(tx, in)
		if err != nil {
			return err
		}

		if err := applyEntry(tx, &orig, -1); err != nil {
			return err
		}

		orig.AccountID = in.AccountID
		orig.CategoryID = in.CategoryID
		orig.CreditCardID = in.CreditCardID
		orig.ObjectiveID = in.ObjectiveID
		orig.Value = in.Value
		orig.Type = in.Type
		orig.Destination = in.Destination
		orig.Description = in.Description
		orig.InvoiceID = nil
		if refs.card != nil {
			invoice, err := resolveOpenInvoice(tx, refs.card, time.Now())
			if err != nil {
				return err
			}
			orig.InvoiceID = &invoice.ID
		}

		if err := tx.Save(&orig).Error; err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		if err := applyEntry(tx, &orig, 1); err != nil {
			return err
		}
		updated = orig
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTransaction reverses the stored entry's effect and removes the
// row. The net effect is the exact negation of the original creation,
// independent of whatever else has touched the aggregates since.
func (s *Service) DeleteTransaction(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var orig models.Transaction
		if err := tx.First(&orig, "id = ?", id).Error; err != nil {
			return notFoundOr("transaction", id, err)
		}
		if err := applyEntry(tx, &orig, -1); err != nil {
			return err
		}
		if err := tx.Delete(&orig).Error; err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return nil
	})
}

// MovimentInput is a proposed holding moviment.
type MovimentInput struct {
	HoldingID string
	AccountID string
	Value     decimal.Decimal
	Type      string
}

// CreateMoviment inserts a moviment and applies the dual
// account/holding adjustment as one atomic unit.
func (s *Service) CreateMoviment(in MovimentInput) (*models.Moviment, error) {
	var created models.Moviment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if !in.Value.IsPositive() {
			return &ValidationError{Field: "value", Message: "must be positive"}
		}
		if in.Type != models.TypeInput && in.Type != models.TypeOutput {
			return &ValidationError{Field: "type", Message: "must be input or output"}
		}

		var holding models.Holding
		if err := tx.First(&holding, "id = ?", in.HoldingID).Error; err != nil {
			return notFoundOr("holding", in.HoldingID, err)
		}
		if holding.AccountID != in.AccountID {
			return &NotFoundError{Entity: "holding", ID: in.HoldingID}
		}

		m := models.Moviment{
			HoldingID: in.HoldingID,
			AccountID: in.AccountID,
			Value:     in.Value,
			Type:      in.Type,
		}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("create moviment: %w", err)
		}
		if err := applyMoviment(tx, &m, 1); err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteMoviment reverses the stored moviment's dual adjustment and
// removes the row.
func (s *Service) DeleteMoviment(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var orig models.Moviment
		if err := tx.First(&orig, "id = ?", id).Error; err != nil {
			return notFoundOr("moviment", id, err)
		}
		if err := applyMoviment(tx, &orig, -1); err != nil {
			return err
		}
		if err := tx.Delete(&orig).Error; err != nil {
			return fmt.Errorf("delete moviment: %w", err)
		}
		return nil
	})
}

// ResolveOpenInvoice returns (creating if needed) the invoice that
// card-linked spend currently accumulates on. Idempotent within one
// billing period.
func (s *Service) ResolveOpenInvoice(creditCardID string) (*models.Invoice, error) {
	var resolved *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var card models.CreditCard
		if err := tx.First(&card, "id = ?", creditCardID).Error; err != nil {
			return notFoundOr("credit card", creditCardID, err)
		}
		invoice, err := resolveOpenInvoice(tx, &card, time.Now())
		if err != nil {
			return err
		}
		resolved = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// CreateInvoice creates an invoice for explicit dates. A second
// invoice for the same closing date conflicts.
func (s *Service) CreateInvoice(creditCardID string, closing, due time.Time) (*models.Invoice, error) {
	var created *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var card models.CreditCard
		if err := tx.First(&card, "id = ?", creditCardID).Error; err != nil {
			return notFoundOr("credit card", creditCardID, err)
		}
		invoice, err := createInvoiceForPeriod(tx, creditCardID, closing, due)
		if err != nil {
			return err
		}
		created = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GenerateCurrentInvoice creates the invoice for the card's current
// billing period, derived from its closing day.
func (s *Service) GenerateCurrentInvoice(creditCardID string) (*models.Invoice, error) {
	var created *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var card models.CreditCard
		if err := tx.First(&card, "id = ?", creditCardID).Error; err != nil {
			return notFoundOr("credit card", creditCardID, err)
		}
		closing := periodClosingDate(time.Now(), card.CloseDay)
		invoice, err := createInvoiceForPeriod(tx, creditCardID, closing, dueDateFor(closing, card.CloseDay))
		if err != nil {
			return err
		}
		created = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteInvoice removes an invoice. Deleting an invoice that still has
// linked transactions would orphan ledger entries, so it conflicts.
func (s *Service) DeleteInvoice(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, "id = ?", id).Error; err != nil {
			return notFoundOr("invoice", id, err)
		}

		var count int64
		if err := tx.Model(&models.Transaction{}).
			Where("invoice_id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("count invoice transactions: %w", err)
		}
		if count > 0 {
			return &ConflictError{Message: "invoice has linked transactions"}
		}

		if err := tx.Delete(&invoice).Error; err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		return nil
	})
}

// PaymentResult reports the outcome of an invoice payment.
type PaymentResult struct {
	Invoice   models.Invoice  `json:"invoice"`
	PaidValue decimal.Decimal `json:"paid_value"`
	Total     decimal.Decimal `json:"total"`
	Remaining decimal.Decimal `json:"remaining"`
}

// PayInvoice settles an invoice: the account balance goes down by the
// paid value and the same value returns to the card's available limit.
// Partial payments accumulate on the invoice; it is marked paid once
// they cover the accumulated total.
func (s *Service) PayInvoice(id string, paymentValue *decimal.Decimal) (*PaymentResult, error) {
	var result PaymentResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, "id = ?", id).Error; err != nil {
			return notFoundOr("invoice", id, err)
		}
		if invoice.Paid {
			return &ConflictError{Message: "invoice already paid"}
		}

		var card models.CreditCard
		if err := tx.First(&card, "id = ?", invoice.CreditCardID).Error; err != nil {
			return notFoundOr("credit card", invoice.CreditCardID, err)
		}

		total, err := invoiceTotal(tx, id)
		if err != nil {
			return err
		}

		value := total.Sub(invoice.PaidValue)
		if paymentValue != nil {
			value = *paymentValue
		}
		if !value.IsPositive() {
			return &ValidationError{Field: "payment_value", Message: "must be positive"}
		}

		if err := adjustColumn(tx, &models.Account{}, card.AccountID, "current_value", value.Neg()); err != nil {
			return err
		}
		if err := adjustColumn(tx, &models.CreditCard{}, card.ID, "available_limit", value); err != nil {
			return err
		}

		paidSoFar := invoice.PaidValue.Add(value)
		updates := map[string]interface{}{"paid_value": paidSoFar}
		invoice.PaidValue = paidSoFar
		if paidSoFar.GreaterThanOrEqual(total) {
			now := time.Now()
			invoice.Paid = true
			invoice.PaidAt = &now
			updates["paid"] = true
			updates["paid_at"] = now
		}
		if err := tx.Model(&invoice).UpdateColumns(updates).Error; err != nil {
			return fmt.Errorf("record invoice payment: %w", err)
		}

		remaining := total.Sub(paidSoFar)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		result = PaymentResult{
			Invoice:   invoice,
			PaidValue: value,
			Total:     total,
			Remaining: remaining,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// InvoiceTotal reports the value accumulated on an invoice.
func (s *Service) InvoiceTotal(invoiceID string) (decimal.Decimal, error) {
	return invoiceTotal(s.db, invoiceID)
}

// invoiceTotal sums the values of the transactions accumulated on an
// invoice.
func invoiceTotal(tx *gorm.DB, invoiceID string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	err := tx.Model(&models.Transaction{}).
		Where("invoice_id = ?", invoiceID).
		Select("COALESCE(SUM(value), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum invoice transactions: %w", err)
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal, nil
}

// IsNotFound reports whether err is a ledger NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
