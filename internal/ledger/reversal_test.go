package ledger

import (
	"testing"

	"finanz-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteTransaction_RestoresBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000.67")
	category := seedCategory(t, db, account.ID, "groceries")

	created, err := svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: category.ID,
		Value:      dec("120.67"),
		Type:       models.TypeOutput,
	})
	require.NoError(t, err)
	require.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("880")))

	require.NoError(t, svc.DeleteTransaction(created.ID))

	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("1000.67")),
		"deletion must restore the exact pre-creation balance")

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteTransaction_IgnoresInterveningEvents(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	groceries := seedCategory(t, db, account.ID, "groceries")
	transport := seedCategory(t, db, account.ID, "transport")

	first, err := svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: groceries.ID,
		Value:      dec("100"),
		Type:       models.TypeOutput,
	})
	require.NoError(t, err)

	// unrelated events move the balance in between
	_, err = svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: transport.ID,
		Value:      dec("40"),
		Type:       models.TypeOutput,
	})
	require.NoError(t, err)
	_, err = svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: transport.ID,
		Value:      dec("15.25"),
		Type:       models.TypeInput,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(first.ID))

	// 1000 - 40 + 15.25: only the intervening events remain
	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("975.25")))
}

func TestDeleteTransaction_RestoresCardLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	category := seedCategory(t, db, account.ID, "groceries")
	card := seedCard(t, db, account.ID, "5000", 15)

	created, err := svc.CreateTransaction(EntryInput{
		AccountID:    account.ID,
		CategoryID:   category.ID,
		CreditCardID: &card.ID,
		Value:        dec("250"),
		Type:         models.TypeOutput,
	})
	require.NoError(t, err)
	require.True(t, reloadCard(t, db, card.ID).AvailableLimit.Equal(dec("4750")))

	require.NoError(t, svc.DeleteTransaction(created.ID))

	assert.True(t, reloadCard(t, db, card.ID).AvailableLimit.Equal(dec("5000")))
	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("1000")))
}

func TestDeleteTransaction_RestoresPlanningEnvelope(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	category := seedCategory(t, db, account.ID, "groceries")

	planning := models.Planning{
		AccountID:      account.ID,
		Title:          "Monthly budget",
		Limit:          dec("2000"),
		AvailableLimit: dec("2000"),
	}
	require.NoError(t, db.Create(&planning).Error)
	pc := models.PlanningCategory{
		PlanningID:     planning.ID,
		CategoryID:     category.ID,
		Limit:          dec("500"),
		AvailableLimit: dec("500"),
	}
	require.NoError(t, db.Create(&pc).Error)

	created, err := svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: category.ID,
		Value:      dec("50"),
		Type:       models.TypeOutput,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(created.ID))

	var gotPlanning models.Planning
	require.NoError(t, db.First(&gotPlanning, "id = ?", planning.ID).Error)
	var gotPC models.PlanningCategory
	require.NoError(t, db.First(&gotPC, "id = ?", pc.ID).Error)

	assert.True(t, gotPlanning.AvailableLimit.Equal(dec("2000")))
	assert.True(t, gotPC.AvailableLimit.Equal(dec("500")))
}

func TestUpdateTransaction_EqualsDeleteThenCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	category := seedCategory(t, db, account.ID, "groceries")

	created, err := svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: category.ID,
		Value:      dec("100"),
		Type:       models.TypeOutput,
	})
	require.NoError(t, err)
	require.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("900")))

	updated, err := svc.UpdateTransaction(created.ID, EntryInput{
		AccountID:  account.ID,
		CategoryID: category.ID,
		Value:      dec("250"),
		Type:       models.TypeOutput,
	})
	require.NoError(t, err)
	assert.True(t, updated.Value.Equal(dec("250")))

	// same end state as: delete the 100 entry, create a 250 one
	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("750")))
}

func TestUpdateTransaction_TypeFlipReversesSign(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	category := seedCategory(t, db, account.ID, "misc")

	created, err := svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: category.ID,
		Value:      dec("100"),
		Type:       models.TypeOutput,
	})
	require.NoError(t, err)

	_, err = svc.UpdateTransaction(created.ID, EntryInput{
		AccountID:  account.ID,
		CategoryID: category.ID,
		Value:      dec("100"),
		Type:       models.TypeInput,
	})
	require.NoError(t, err)

	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("1100")))
}

func TestUpdateTransaction_MovingOntoCardShiftsAggregates(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	category := seedCategory(t, db, account.ID, "groceries")
	card := seedCard(t, db, account.ID, "5000", 20)

	created, err := svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: category.ID,
		Value:      dec("100"),
		Type:       models.TypeOutput,
	})
	require.NoError(t, err)
	require.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("900")))

	updated, err := svc.UpdateTransaction(created.ID, EntryInput{
		AccountID:    account.ID,
		CategoryID:   category.ID,
		CreditCardID: &card.ID,
		Value:        dec("100"),
		Type:         models.TypeOutput,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.InvoiceID)

	// balance effect reversed, card headroom consumed instead
	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("1000")))
	assert.True(t, reloadCard(t, db, card.ID).AvailableLimit.Equal(dec("4900")))
}

func TestDeleteMoviment_RestoresBothPools(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	holding := models.Holding{AccountID: account.ID, Name: "CDB", Total: dec("0")}
	require.NoError(t, db.Create(&holding).Error)

	created, err := svc.CreateMoviment(MovimentInput{
		HoldingID: holding.ID,
		AccountID: account.ID,
		Value:     dec("300"),
		Type:      models.TypeInput,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMoviment(created.ID))

	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("1000")))
	assert.True(t, reloadHolding(t, db, holding.ID).Total.Equal(dec("0")))
}
