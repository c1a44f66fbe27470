package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"finanz-server/internal/ledger"
	"finanz-server/internal/models"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type invoiceTestEnv struct {
	db      *gorm.DB
	svc     *ledger.Service
	alice   models.User
	account models.Account
	card    models.CreditCard
	invoice string
}

// newInvoiceTestEnv seeds an account with one card-linked transaction
// of 400 accumulating on an open invoice.
func newInvoiceTestEnv(t *testing.T) *invoiceTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "invoice_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Account{}, &models.Category{},
		&models.CreditCard{}, &models.Invoice{}, &models.Transaction{},
		&models.Planning{}, &models.PlanningCategory{},
		&models.Holding{}, &models.Moviment{}, &models.Objective{},
	))

	alice := models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&alice).Error)
	account := models.Account{UserID: alice.ID, CurrentValue: decimal.RequireFromString("1000"), Currency: "BRL"}
	require.NoError(t, db.Create(&account).Error)
	category := models.Category{AccountID: account.ID, Name: "groceries"}
	require.NoError(t, db.Create(&category).Error)
	card := models.CreditCard{
		AccountID:      account.ID,
		Company:        "acme",
		Limit:          decimal.RequireFromString("5000"),
		AvailableLimit: decimal.RequireFromString("5000"),
		CloseDay:       10,
		ExpireDay:      20,
	}
	require.NoError(t, db.Create(&card).Error)

	svc := ledger.NewService(db)
	created, err := svc.CreateTransaction(ledger.EntryInput{
		AccountID:    account.ID,
		CategoryID:   category.ID,
		CreditCardID: &card.ID,
		Value:        decimal.RequireFromString("400"),
		Type:         models.TypeOutput,
	})
	require.NoError(t, err)
	require.NotNil(t, created.InvoiceID)

	return &invoiceTestEnv{
		db:      db,
		svc:     svc,
		alice:   alice,
		account: account,
		card:    card,
		invoice: *created.InvoiceID,
	}
}

// payRouter wires the payment route authenticated as the given user.
func (e *invoiceTestEnv) payRouter(user *models.User) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("currentUser", user)
		c.Next()
	})
	h := NewInvoiceHandler(e.db, e.svc, nil)
	r.POST("/invoices/:id/pay", h.PayInvoice)
	return r
}

func payRequest(t *testing.T, r *gin.Engine, invoiceID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/invoices/"+invoiceID+"/pay", &bytes.Buffer{})
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPayInvoiceEndpoint_ForeignInvoiceIs404(t *testing.T) {
	env := newInvoiceTestEnv(t)

	bob := models.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, env.db.Create(&bob).Error)
	bobAccount := models.Account{UserID: bob.ID, CurrentValue: decimal.RequireFromString("50"), Currency: "BRL"}
	require.NoError(t, env.db.Create(&bobAccount).Error)

	w := payRequest(t, env.payRouter(&bob), env.invoice)

	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	assert.Equal(t, util.CodeNotFound, envelopeCode(t, w))

	// nothing on the owner's side moved
	var account models.Account
	require.NoError(t, env.db.First(&account, "id = ?", env.account.ID).Error)
	assert.True(t, account.CurrentValue.Equal(decimal.RequireFromString("1000")))

	var card models.CreditCard
	require.NoError(t, env.db.First(&card, "id = ?", env.card.ID).Error)
	assert.True(t, card.AvailableLimit.Equal(decimal.RequireFromString("4600")))

	var invoice models.Invoice
	require.NoError(t, env.db.First(&invoice, "id = ?", env.invoice).Error)
	assert.False(t, invoice.Paid)
}

func TestPayInvoiceEndpoint_OwnerSettles(t *testing.T) {
	env := newInvoiceTestEnv(t)

	w := payRequest(t, env.payRouter(&env.alice), env.invoice)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, util.CodeOK, envelopeCode(t, w))

	var account models.Account
	require.NoError(t, env.db.First(&account, "id = ?", env.account.ID).Error)
	assert.True(t, account.CurrentValue.Equal(decimal.RequireFromString("600")))

	var card models.CreditCard
	require.NoError(t, env.db.First(&card, "id = ?", env.card.ID).Error)
	assert.True(t, card.AvailableLimit.Equal(decimal.RequireFromString("5000")))
}
