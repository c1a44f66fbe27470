package ledger

import (
	"testing"

	"finanz-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransaction_OutputDecrementsBalance(t *testing.T) {
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
	require.NotEmpty(t, created.ID)

	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("880")),
		"1000.67 - 120.67 should leave 880.00")
}

func TestCreateTransaction_InputIncrementsBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "250")
	category := seedCategory(t, db, account.ID, "salary")

	_, err := svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: category.ID,
		Value:      dec("100.50"),
		Type:       models.TypeInput,
	})
	require.NoError(t, err)

	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("350.50")))
}

func TestCreateTransaction_CardSpendLeavesBalanceUntouched(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	category := seedCategory(t, db, account.ID, "groceries")
	card := seedCard(t, db, account.ID, "5000", 10)

	created, err := svc.CreateTransaction(EntryInput{
		AccountID:    account.ID,
		CategoryID:   category.ID,
		CreditCardID: &card.ID,
		Value:        dec("100"),
		Type:         models.TypeOutput,
	})
	require.NoError(t, err)
	require.NotNil(t, created.InvoiceID, "card spend must land on an open invoice")

	assert.True(t, reloadCard(t, db, card.ID).AvailableLimit.Equal(dec("4900")))
	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("1000")),
		"card transactions defer the balance effect to invoice payment")
}

func TestCreateTransaction_ConsumesPlanningEnvelope(t *testing.T) {
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

	_, err := svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: category.ID,
		Value:      dec("50"),
		Type:       models.TypeOutput,
	})
	require.NoError(t, err)

	var gotPlanning models.Planning
	require.NoError(t, db.First(&gotPlanning, "id = ?", planning.ID).Error)
	var gotPC models.PlanningCategory
	require.NoError(t, db.First(&gotPC, "id = ?", pc.ID).Error)

	assert.True(t, gotPlanning.AvailableLimit.Equal(dec("1950")))
	assert.True(t, gotPC.AvailableLimit.Equal(dec("450")))
}

func TestCreateTransaction_TwoEntriesConsumeSum(t *testing.T) {
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

	for _, v := range []string{"30", "45.50"} {
		_, err := svc.CreateTransaction(EntryInput{
			AccountID:  account.ID,
			CategoryID: category.ID,
			Value:      dec(v),
			Type:       models.TypeOutput,
		})
		require.NoError(t, err)
	}

	var gotPlanning models.Planning
	require.NoError(t, db.First(&gotPlanning, "id = ?", planning.ID).Error)
	var gotPC models.PlanningCategory
	require.NoError(t, db.First(&gotPC, "id = ?", pc.ID).Error)

	assert.True(t, gotPlanning.AvailableLimit.Equal(dec("1924.50")))
	assert.True(t, gotPC.AvailableLimit.Equal(dec("424.50")))
}

func TestCreateTransaction_UntrackedCategoryLeavesPlanningAlone(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	tracked := seedCategory(t, db, account.ID, "groceries")
	untracked := seedCategory(t, db, account.ID, "misc")

	planning := models.Planning{
		AccountID:      account.ID,
		Title:          "Monthly budget",
		Limit:          dec("2000"),
		AvailableLimit: dec("2000"),
	}
	require.NoError(t, db.Create(&planning).Error)
	require.NoError(t, db.Create(&models.PlanningCategory{
		PlanningID:     planning.ID,
		CategoryID:     tracked.ID,
		Limit:          dec("500"),
		AvailableLimit: dec("500"),
	}).Error)

	_, err := svc.CreateTransaction(EntryInput{
		AccountID:  account.ID,
		CategoryID: untracked.ID,
		Value:      dec("75"),
		Type:       models.TypeOutput,
	})
	require.NoError(t, err)

	var gotPlanning models.Planning
	require.NoError(t, db.First(&gotPlanning, "id = ?", planning.ID).Error)
	assert.True(t, gotPlanning.AvailableLimit.Equal(dec("2000")))
}

func TestCreateMoviment_InputMovesMoneyIntoHolding(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	holding := models.Holding{AccountID: account.ID, Name: "CDB", Total: dec("0")}
	require.NoError(t, db.Create(&holding).Error)

	_, err := svc.CreateMoviment(MovimentInput{
		HoldingID: holding.ID,
		AccountID: account.ID,
		Value:     dec("300"),
		Type:      models.TypeInput,
	})
	require.NoError(t, err)

	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("700")),
		"an input moviment funds the holding from the account")
	assert.True(t, reloadHolding(t, db, holding.ID).Total.Equal(dec("300")))
}

func TestCreateMoviment_OutputWithdrawsFromHolding(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	holding := models.Holding{AccountID: account.ID, Name: "CDB", Total: dec("500")}
	require.NoError(t, db.Create(&holding).Error)

	_, err := svc.CreateMoviment(MovimentInput{
		HoldingID: holding.ID,
		AccountID: account.ID,
		Value:     dec("200"),
		Type:      models.TypeOutput,
	})
	require.NoError(t, err)

	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("1200")))
	assert.True(t, reloadHolding(t, db, holding.ID).Total.Equal(dec("300")))
}

func TestCreateMoviment_HoldingFromOtherAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")

	other := models.User{Name: "Other", Email: "other3@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)
	otherAccount := models.Account{UserID: other.ID, CurrentValue: dec("0"), Currency: "BRL"}
	require.NoError(t, db.Create(&otherAccount).Error)
	holding := models.Holding{AccountID: otherAccount.ID, Name: "CDB", Total: dec("0")}
	require.NoError(t, db.Create(&holding).Error)

	_, err := svc.CreateMoviment(MovimentInput{
		HoldingID: holding.ID,
		AccountID: account.ID,
		Value:     dec("100"),
		Type:      models.TypeInput,
	})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("1000")))
}
