package ledger

import (
	"testing"

	"finanz-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransaction_MissingAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.CreateTransaction(EntryInput{
		AccountID:  "no-such-account",
		CategoryID: "no-such-category",
		Value:      dec("10"),
		Type:       models.TypeOutput,
	})
	require.Error(t, err)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "account", nf.Entity)
}

func TestCreateTransaction_CategoryFromOtherAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "100")

	other := models.User{Name: "Other", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)
	otherAccount := models.Account{UserID: other.ID, CurrentValue: dec("0"), Currency: "BRL"}
	require.NoError(t, db.Create(&otherAccount).Error)
	foreign := seedCategory(t, db, otherAccount.ID, "groceries")

	_, err := svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: foreign.ID,
		Value:      dec("10"),
		Type:       models.TypeOutput,
	})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "category", nf.Entity)

	// validation is read-only: the balance must be untouched
	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("100")))
}

func TestCreateTransaction_CardFromOtherAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "100")
	category := seedCategory(t, db, account.ID, "groceries")

	other := models.User{Name: "Other", Email: "other2@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)
	otherAccount := models.Account{UserID: other.ID, CurrentValue: dec("0"), Currency: "BRL"}
	require.NoError(t, db.Create(&otherAccount).Error)
	foreignCard := seedCard(t, db, otherAccount.ID, "5000", 10)

	_, err := svc.CreateTransaction(EntryInput{
		AccountID:    account.ID,
		CategoryID:   category.ID,
		CreditCardID: &foreignCard.ID,
		Value:        dec("10"),
		Type:         models.TypeOutput,
	})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "credit card", nf.Entity)
	assert.True(t, reloadCard(t, db, foreignCard.ID).AvailableLimit.Equal(dec("5000")))
}

func TestCreateTransaction_RejectsNonPositiveValue(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "100")
	category := seedCategory(t, db, account.ID, "groceries")

	for _, v := range []string{"0", "-5"} {
		_, err := svc.CreateTransaction(EntryInput{
			AccountID:  account.ID,
			CategoryID: category.ID,
			Value:      dec(v),
			Type:       models.TypeOutput,
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "value %s", v)
		assert.Equal(t, "value", ve.Field)
	}
}

func TestCreateTransaction_RejectsUnknownType(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "100")
	category := seedCategory(t, db, account.ID, "groceries")

	_, err := svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: category.ID,
		Value:      dec("10"),
		Type:       "transfer",
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "type", ve.Field)
}

func TestCreateTransaction_MissingObjective(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "100")
	category := seedCategory(t, db, account.ID, "groceries")
	missing := "no-such-objective"

	_, err := svc.CreateTransaction(EntryInput{
		AccountID:   account.ID,
		CategoryID:  category.ID,
		ObjectiveID: &missing,
		Value:       dec("10"),
		Type:        models.TypeInput,
	})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "objective", nf.Entity)
	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("100")))
}
