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

// TransactionHandler translates HTTP payloads into ledger entries.
// Every write goes through the ledger service; the handler never
// touches an aggregate itself.
type TransactionHandler struct {
	DB       *gorm.DB
	Ledger   *ledger.Service
	Notifier *bot.Notifier
}

func NewTransactionHandler(db *gorm.DB, svc *ledger.Service, notifier *bot.Notifier) *TransactionHandler {
	return &TransactionHandler{DB: db, Ledger: svc, Notifier: notifier}
}

type transactionReq struct {
	Value        string  `json:"value" binding:"required"`
	Type         string  `json:"type" binding:"required,oneof=input output"`
	CategoryID   string  `json:"category_id" binding:"required"`
	CreditCardID *string `json:"credit_card_id"`
	ObjectiveID  *string `json:"objective_id"`
	Destination  string  `json:"destination" binding:"max=128"`
	Description  string  `json:"description" binding:"max=255"`
}

func (r *transactionReq) toEntryInput(accountID string) (ledger.EntryInput, bool) {
	value, err := decimal.NewFromString(r.Value)
	if err != nil {
		return ledger.EntryInput{}, false
	}
	return ledger.EntryInput{
		AccountID:    accountID,
		CategoryID:   r.CategoryID,
		CreditCardID: r.CreditCardID,
		ObjectiveID:  r.ObjectiveID,
		Value:        value,
		Type:         r.Type,
		Destination:  r.Destination,
		Description:  r.Description,
	}, true
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	in, ok := req.toEntryInput(account.ID)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "value must be a decimal string")
		return
	}

	created, err := h.Ledger.CreateTransaction(in)
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	h.Notifier.NotifyTransaction(created.Type, created.Description, created.Value)
	util.Created(c, util.Response{
		"transaction": created,
	})
}

// ListTransactions supports pagination plus period, type and category
// filters.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
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

	base := h.DB.Model(&models.Transaction{}).Where("account_id = ?", account.ID)

	if startStr := c.Query("start"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start must be YYYY-MM-DD")
			return
		}
		base = base.Where("created_at >= ?", start)
	}
	if endStr := c.Query("end"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "end must be YYYY-MM-DD")
			return
		}
		base = base.Where("created_at < ?", end.Add(24*time.Hour))
	}
	if txType := c.Query("type"); txType == models.TypeInput || txType == models.TypeOutput {
		base = base.Where("type = ?", txType)
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		base = base.Where("category_id = ?", categoryID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count transactions")
		return
	}

	var transactions []models.Transaction
	if err := base.Session(&gorm.Session{}).
		Preload("Category").
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&transactions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list transactions")
		return
	}

	util.Success(c, util.Response{
		"transactions": transactions,
		"total":        total,
		"page":         page,
		"size":         size,
	})
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var t models.Transaction
	err := h.DB.Preload("Category").
		First(&t, "id = ? AND account_id = ?", c.Param("id"), account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transaction")
		return
	}
	util.Success(c, util.Response{
		"transaction": t,
	})
}

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	id := c.Param("id")

	// ownership check before the ledger touches anything
	var existing models.Transaction
	err := h.DB.First(&existing, "id = ? AND account_id = ?", id, account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transaction")
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	in, ok := req.toEntryInput(account.ID)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "value must be a decimal string")
		return
	}

	updated, err := h.Ledger.UpdateTransaction(id, in)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	util.Success(c, util.Response{
		"transaction": updated,
	})
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	id := c.Param("id")

	var existing models.Transaction
	err := h.DB.First(&existing, "id = ? AND account_id = ?", id, account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transaction")
		return
	}

	if err := h.Ledger.DeleteTransaction(id); err != nil {
		writeLedgerError(c, err)
		return
	}
	util.NoContent(c)
}
