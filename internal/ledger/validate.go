package ledger

import (
	"errors"
	"fmt"

	"finanz-server/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntryInput is a proposed transaction as the ledger sees it: the
// payload arrives already schema-validated and strongly typed from the
// HTTP layer.
type EntryInput struct {
	AccountID    string
	CategoryID   string
	CreditCardID *string
	ObjectiveID  *string
	Value        decimal.Decimal
	Type         string
	Destination  string
	Description  string
}

// entryRefs carries the rows loaded while validating an entry, so the
// mutation phase does not re-read them.
type entryRefs struct {
	account  models.Account
	category models.Category
	card     *models.CreditCard
}

// validateEntry confirms that every entity an entry references exists
// and belongs to the entry's account. It is fully read-only: it either
// returns the loaded references or an error before any mutation began.
func validateEntry(tx *gorm.DB, in EntryInput) (*entryRefs, error) {
	if !in.Value.IsPositive() {
		return nil, &ValidationError{Field: "value", Message: "must be positive"}
	}
	if in.Type != models.TypeInput && in.Type != models.TypeOutput {
		return nil, &ValidationError{Field: "type", Message: "must be input or output"}
	}

	refs := &entryRefs{}

	if err := tx.First(&refs.account, "id = ?", in.AccountID).Error; err != nil {
		return nil, notFoundOr("account", in.AccountID, err)
	}

	if err := tx.First(&refs.category, "id = ?", in.CategoryID).Error; err != nil {
		return nil, notFoundOr("category", in.CategoryID, err)
	}
	if refs.category.AccountID != in.AccountID {
		return nil, &NotFoundError{Entity: "category", ID: in.CategoryID}
	}

	if in.CreditCardID != nil {
		var card models.CreditCard
		if err := tx.First(&card, "id = ?", *in.CreditCardID).Error; err != nil {
			return nil, notFoundOr("credit card", *in.CreditCardID, err)
		}
		if card.AccountID != in.AccountID {
			return nil, &NotFoundError{Entity: "credit card", ID: *in.CreditCardID}
		}
		refs.card = &card
	}

	if in.ObjectiveID != nil {
		var objective models.Objective
		if err := tx.First(&objective, "id = ?", *in.ObjectiveID).Error; err != nil {
			return nil, notFoundOr("objective", *in.ObjectiveID, err)
		}
		if objective.AccountID != in.AccountID {
			return nil, &NotFoundError{Entity: "objective", ID: *in.ObjectiveID}
		}
	}

	return refs, nil
}

// notFoundOr maps gorm's record-not-found to the ledger taxonomy and
// wraps anything else as a read failure.
func notFoundOr(entity, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("load %s: %w", entity, err)
}
