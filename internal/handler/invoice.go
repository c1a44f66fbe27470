package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"finanz-server/internal/bot"
	"finanz-server/internal/ledger"
	"finanz-server/internal/models"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceHandler exposes the invoice lifecycle. All period and payment
// rules live in the ledger service; this layer only translates HTTP.
type InvoiceHandler struct {
	DB       *gorm.DB
	Ledger   *ledger.Service
	Notifier *bot.Notifier
}

func NewInvoiceHandler(db *gorm.DB, svc *ledger.Service, notifier *bot.Notifier) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Ledger: svc, Notifier: notifier}
}

// cardOf loads a card scoped to the account, or writes the error.
func (h *InvoiceHandler) cardOf(c *gin.Context, accountID, cardID string) *models.CreditCard {
	var card models.CreditCard
	err := h.DB.First(&card, "id = ? AND account_id = ?", cardID, accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "credit card not found")
		return nil
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load card")
		return nil
	}
	return &card
}

// ListInvoices returns a card's invoices, newest first, with optional
// year filter and pagination.
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	card := h.cardOf(c, account.ID, c.Param("id"))
	if card == nil {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}

	base := h.DB.Model(&models.Invoice{}).Where("credit_card_id = ?", card.ID)
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "year must be numeric")
			return
		}
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		base = base.Where("closing_date >= ? AND closing_date < ?", from, from.AddDate(1, 0, 0))
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count invoices")
		return
	}

	var invoices []models.Invoice
	if err := base.Session(&gorm.Session{}).
		Order("closing_date DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&invoices).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list invoices")
		return
	}
	util.Success(c, util.Response{
		"invoices": invoices,
		"total":    total,
		"page":     page,
		"size":     size,
	})
}

// InvoiceStatistics summarizes a card's invoices: open/paid counts and
// the value still accumulating on open ones.
func (h *InvoiceHandler) InvoiceStatistics(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	card := h.cardOf(c, account.ID, c.Param("id"))
	if card == nil {
		return
	}

	var invoices []models.Invoice
	if err := h.DB.Where("credit_card_id = ?", card.ID).Find(&invoices).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list invoices")
		return
	}

	var openCount, paidCount int64
	openTotal := decimal.Zero
	for _, invoice := range invoices {
		if invoice.Paid {
			paidCount++
			continue
		}
		openCount++
		total, err := h.Ledger.InvoiceTotal(invoice.ID)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to sum invoice")
			return
		}
		openTotal = openTotal.Add(total)
	}

	util.Success(c, util.Response{
		"open_count": openCount,
		"paid_count": paidCount,
		"open_total": openTotal,
	})
}

type createInvoiceReq struct {
	ClosingDate string `json:"closing_date" binding:"required"`
	DueDate     string `json:"due_date" binding:"required"`
}

// CreateInvoice creates an invoice for explicit dates.
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	card := h.cardOf(c, account.ID, c.Param("id"))
	if card == nil {
		return
	}

	var req createInvoiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	closing, err := time.Parse("2006-01-02", req.ClosingDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "closing_date must be YYYY-MM-DD")
		return
	}
	due, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "due_date must be YYYY-MM-DD")
		return
	}

	invoice, err := h.Ledger.CreateInvoice(card.ID, closing, due)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	util.Created(c, util.Response{
		"invoice": invoice,
	})
}

// GenerateInvoice creates the invoice for the card's current billing
// period from its closing day.
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	card := h.cardOf(c, account.ID, c.Param("id"))
	if card == nil {
		return
	}

	invoice, err := h.Ledger.GenerateCurrentInvoice(card.ID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	util.Created(c, util.Response{
		"invoice": invoice,
	})
}

// GetOpenInvoice resolves (creating if needed) the card's open
// invoice.
func (h *InvoiceHandler) GetOpenInvoice(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	card := h.cardOf(c, account.ID, c.Param("id"))
	if card == nil {
		return
	}

	invoice, err := h.Ledger.ResolveOpenInvoice(card.ID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	util.Success(c, util.Response{
		"invoice": invoice,
	})
}

// GetInvoice returns one invoice with its transactions, the
// accumulated total and a per-category breakdown.
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var invoice models.Invoice
	err := h.DB.Preload("Transactions").Preload("Transactions.Category").
		Joins("JOIN credit_cards ON credit_cards.id = invoices.credit_card_id").
		Where("invoices.id = ? AND credit_cards.account_id = ?", c.Param("id"), account.ID).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "invoice not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load invoice")
		return
	}

	total := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	for _, t := range invoice.Transactions {
		total = total.Add(t.Value)
		byCategory[t.Category.Name] = byCategory[t.Category.Name].Add(t.Value)
	}

	util.Success(c, util.Response{
		"invoice":     invoice,
		"total":       total,
		"by_category": byCategory,
	})
}

type updateInvoiceReq struct {
	ClosingDate string `json:"closing_date"`
	DueDate     string `json:"due_date"`
}

// UpdateInvoice patches the period dates. Paid state and linkage stay
// under ledger control.
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req updateInvoiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var invoice models.Invoice
	err := h.DB.
		Joins("JOIN credit_cards ON credit_cards.id = invoices.credit_card_id").
		Where("invoices.id = ? AND credit_cards.account_id = ?", c.Param("id"), account.ID).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "invoice not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load invoice")
		return
	}

	if req.ClosingDate != "" {
		closing, err := time.Parse("2006-01-02", req.ClosingDate)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "closing_date must be YYYY-MM-DD")
			return
		}
		invoice.ClosingDate = closing
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "due_date must be YYYY-MM-DD")
			return
		}
		invoice.DueDate = due
	}

	if err := h.DB.Save(&invoice).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save invoice")
		return
	}
	util.Success(c, util.Response{
		"invoice": invoice,
	})
}

type payInvoiceReq struct {
	Value string `json:"value"`
}

// PayInvoice settles an invoice from the account balance. Without a
// value the amount still owed is paid.
func (h *InvoiceHandler) PayInvoice(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req payInvoiceReq
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var value *decimal.Decimal
	if req.Value != "" {
		v, err := decimal.NewFromString(req.Value)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "value must be a decimal string")
			return
		}
		value = &v
	}

	var invoice models.Invoice
	err := h.DB.
		Joins("JOIN credit_cards ON credit_cards.id = invoices.credit_card_id").
		Where("invoices.id = ? AND credit_cards.account_id = ?", c.Param("id"), account.ID).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "invoice not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load invoice")
		return
	}

	result, err := h.Ledger.PayInvoice(invoice.ID, value)
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	if result.Invoice.Paid {
		var card models.CreditCard
		if err := h.DB.First(&card, "id = ?", result.Invoice.CreditCardID).Error; err == nil {
			h.Notifier.NotifyInvoicePaid(card.Company, result.PaidValue)
		}
	}

	util.Success(c, util.Response{
		"invoice":    result.Invoice,
		"paid_value": result.PaidValue,
		"total":      result.Total,
		"remaining":  result.Remaining,
	})
}

// DeleteInvoice removes an empty invoice.
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var invoice models.Invoice
	err := h.DB.
		Joins("JOIN credit_cards ON credit_cards.id = invoices.credit_card_id").
		Where("invoices.id = ? AND credit_cards.account_id = ?", c.Param("id"), account.ID).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "invoice not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load invoice")
		return
	}

	if err := h.Ledger.DeleteInvoice(invoice.ID); err != nil {
		writeLedgerError(c, err)
		return
	}
	util.NoContent(c)
}
