package ledger

import (
	"testing"
	"time"

	"finanz-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOpenInvoice_IdempotentWithinPeriod(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	card := seedCard(t, db, account.ID, "5000", 10)

	first, err := svc.ResolveOpenInvoice(card.ID)
	require.NoError(t, err)
	second, err := svc.ResolveOpenInvoice(card.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestResolveOpenInvoice_ReusedByTransactions(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	category := seedCategory(t, db, account.ID, "groceries")
	card := seedCard(t, db, account.ID, "5000", 10)

	t1, err := svc.CreateTransaction(EntryInput{
		AccountID:    account.ID,
		CategoryID:   category.ID,
		CreditCardID: &card.ID,
		Value:        dec("100"),
		Type:         models.TypeOutput,
	})
	require.NoError(t, err)
	t2, err := svc.CreateTransaction(EntryInput{
		AccountID:    account.ID,
		CategoryID:   category.ID,
		CreditCardID: &card.ID,
		Value:        dec("60"),
		Type:         models.TypeOutput,
	})
	require.NoError(t, err)

	require.NotNil(t, t1.InvoiceID)
	require.NotNil(t, t2.InvoiceID)
	assert.Equal(t, *t1.InvoiceID, *t2.InvoiceID,
		"an open invoice accumulates transactions until paid")
}

func TestGenerateCurrentInvoice_DuplicatePeriodConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	card := seedCard(t, db, account.ID, "5000", 10)

	_, err := svc.GenerateCurrentInvoice(card.ID)
	require.NoError(t, err)

	_, err = svc.GenerateCurrentInvoice(card.ID)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestCreateInvoice_DuplicateClosingDateConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	card := seedCard(t, db, account.ID, "5000", 10)

	closing := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateInvoice(card.ID, closing, due)
	require.NoError(t, err)

	_, err = svc.CreateInvoice(card.ID, closing, due)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestDeleteInvoice_NonEmptyConflicts(t *testing.T) {
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
	require.NotNil(t, created.InvoiceID)

	err = svc.DeleteInvoice(*created.InvoiceID)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// removing the transaction unblocks the deletion
	require.NoError(t, svc.DeleteTransaction(created.ID))
	require.NoError(t, svc.DeleteInvoice(*created.InvoiceID))
}

func TestPayInvoice_SettlesAccountAndCard(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	category := seedCategory(t, db, account.ID, "groceries")
	card := seedCard(t, db, account.ID, "5000", 10)

	created, err := svc.CreateTransaction(EntryInput{
		AccountID:    account.ID,
		CategoryID:   category.ID,
		CreditCardID: &card.ID,
		Value:        dec("400"),
		Type:         models.TypeOutput,
	})
	require.NoError(t, err)
	require.True(t, reloadCard(t, db, card.ID).AvailableLimit.Equal(dec("4600")))

	result, err := svc.PayInvoice(*created.InvoiceID, nil)
	require.NoError(t, err)

	assert.True(t, result.PaidValue.Equal(dec("400")))
	assert.True(t, result.Remaining.IsZero())
	assert.True(t, result.Invoice.Paid)

	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("600")))
	assert.True(t, reloadCard(t, db, card.ID).AvailableLimit.Equal(dec("5000")),
		"payment returns headroom to the card")
}

func TestPayInvoice_PartialPaymentKeepsInvoiceOpen(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	category := seedCategory(t, db, account.ID, "groceries")
	card := seedCard(t, db, account.ID, "5000", 10)

	created, err := svc.CreateTransaction(EntryInput{
		AccountID:    account.ID,
		CategoryID:   category.ID,
		CreditCardID: &card.ID,
		Value:        dec("400"),
		Type:         models.TypeOutput,
	})
	require.NoError(t, err)

	partial := dec("150")
	result, err := svc.PayInvoice(*created.InvoiceID, &partial)
	require.NoError(t, err)

	assert.False(t, result.Invoice.Paid)
	assert.True(t, result.Remaining.Equal(dec("250")))
	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("850")))
	assert.True(t, reloadCard(t, db, card.ID).AvailableLimit.Equal(dec("4750")))
}

func TestPayInvoice_PartialPaymentsAccumulate(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	account := seedAccount(t, db, "1000")
	category := seedCategory(t, db, account.ID, "groceries")
	card := seedCard(t, db, account.ID, "5000", 10)

	created, err := svc.CreateTransaction(EntryInput{
		AccountID:    account.ID,
		CategoryID:   category.ID,
		CreditCardID: &card.ID,
		Value:        dec("400"),
		Type:         models.TypeOutput,
	})
	require.NoError(t, err)

	partial := dec("150")
	first, err := svc.PayInvoice(*created.InvoiceID, &partial)
	require.NoError(t, err)
	assert.False(t, first.Invoice.Paid)
	assert.True(t, first.Remaining.Equal(dec("250")))

	// omitting the value pays what is still owed, not the full total
	second, err := svc.PayInvoice(*created.InvoiceID, nil)
	require.NoError(t, err)
	assert.True(t, second.PaidValue.Equal(dec("250")))
	assert.True(t, second.Remaining.IsZero())
	assert.True(t, second.Invoice.Paid)

	assert.True(t, reloadAccount(t, db, account.ID).CurrentValue.Equal(dec("600")))
	assert.True(t, reloadCard(t, db, card.ID).AvailableLimit.Equal(dec("5000")))
}

func TestPayInvoice_AlreadyPaidConflicts(t *testing.T) {
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

	_, err = svc.PayInvoice(*created.InvoiceID, nil)
	require.NoError(t, err)

	_, err = svc.PayInvoice(*created.InvoiceID, nil)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestPeriodClosingDate_ClampsToMonthEnd(t *testing.T) {
	feb := time.Date(2025, time.February, 3, 12, 0, 0, 0, time.UTC)
	got := periodClosingDate(feb, 31)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), got)

	leapFeb := time.Date(2024, time.February, 3, 12, 0, 0, 0, time.UTC)
	got = periodClosingDate(leapFeb, 31)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), got)
}

func TestDueDateFor_OneCycleLaterWithClamping(t *testing.T) {
	closing := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	got := dueDateFor(closing, 31)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), got)

	closing = time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC)
	got = dueDateFor(closing, 15)
	assert.Equal(t, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), got)
}
