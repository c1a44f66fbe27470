package ledger

import (
	"fmt"

	"finanz-server/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// adjustColumn applies a relative adjustment to one aggregate column.
// The value is never read back and modified in Go: the store performs
// the arithmetic, so concurrent events on the same row cannot lose
// updates. Touching zero rows means the target vanished and the whole
// event must roll back.
func adjustColumn(tx *gorm.DB, model interface{}, id, column string, delta decimal.Decimal) error {
	op := fmt.Sprintf("%T.%s %s", model, column, id)
	res := tx.Model(model).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr("ROUND("+column+" + ?, 2)", delta))
	if res.Error != nil {
		return &MutationFailedError{Op: op, Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &MutationFailedError{Op: op, Err: fmt.Errorf("row not found")}
	}
	return nil
}

// applyEntry applies the aggregate adjustments implied by a
// transaction. dir is +1 to apply the entry and -1 to reverse it; the
// reversal of an entry is always the exact negation of its original
// effect, computed from the stored row, never from current aggregate
// state.
func applyEntry(tx *gorm.DB, t *models.Transaction, dir int64) error {
	signed := t.Value.Mul(decimal.NewFromInt(dir))

	if t.CreditCardID != nil {
		// Card-linked spend reduces the card's headroom regardless of
		// type; the account balance is deferred to invoice payment.
		if err := adjustColumn(tx, &models.CreditCard{}, *t.CreditCardID, "available_limit", signed.Neg()); err != nil {
			return err
		}
	} else {
		delta := signed
		if t.Type == models.TypeOutput {
			delta = signed.Neg()
		}
		if err := adjustColumn(tx, &models.Account{}, t.AccountID, "current_value", delta); err != nil {
			return err
		}
	}

	// Every planning row tracking the entry's category consumes budget,
	// both the per-category envelope and its parent planning. Zero, one
	// or many matches are all fine.
	var tracked []models.PlanningCategory
	if err := tx.Where("category_id = ?", t.CategoryID).Find(&tracked).Error; err != nil {
		return fmt.Errorf("load planning categories: %w", err)
	}
	for _, pc := range tracked {
		if err := adjustColumn(tx, &models.PlanningCategory{}, pc.ID, "available_limit", signed.Neg()); err != nil {
			return err
		}
		if err := adjustColumn(tx, &models.Planning{}, pc.PlanningID, "available_limit", signed.Neg()); err != nil {
			return err
		}
	}

	return nil
}

// applyMoviment applies the dual account/holding adjustment of a
// holding moviment. The sign convention is the opposite of account
// transactions: an input moviment moves money INTO the holding, so the
// account goes down and the holding total goes up.
func applyMoviment(tx *gorm.DB, m *models.Moviment, dir int64) error {
	signed := m.Value.Mul(decimal.NewFromInt(dir))

	accountDelta := signed.Neg()
	holdingDelta := signed
	if m.Type == models.TypeOutput {
		accountDelta = signed
		holdingDelta = signed.Neg()
	}

	if err := adjustColumn(tx, &models.Account{}, m.AccountID, "current_value", accountDelta); err != nil {
		return err
	}
	return adjustColumn(tx, &models.Holding{}, m.HoldingID, "total", holdingDelta)
}
