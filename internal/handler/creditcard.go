package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"finanz-server/internal/cache"
	"finanz-server/internal/models"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const cardCacheTTL = 5 * time.Minute

// CreditCardHandler manages the account's credit cards. The card list
// is cached per account; every write drops the cached copy.
type CreditCardHandler struct {
	DB    *gorm.DB
	Cache *cache.Cache
}

func NewCreditCardHandler(db *gorm.DB, store *cache.Cache) *CreditCardHandler {
	return &CreditCardHandler{DB: db, Cache: store}
}

func cardListKey(accountID string) string {
	return fmt.Sprintf("cards:%s", accountID)
}

type createCardReq struct {
	Company   string `json:"company" binding:"required,max=64"`
	Limit     string `json:"limit" binding:"required"`
	CloseDay  int    `json:"close_day" binding:"required,min=1,max=31"`
	ExpireDay int    `json:"expire_day" binding:"required,min=1,max=31"`
}

func (h *CreditCardHandler) CreateCard(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req createCardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	limit, err := decimal.NewFromString(req.Limit)
	if err != nil || !limit.IsPositive() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "limit must be a positive decimal")
		return
	}

	card := models.CreditCard{
		AccountID:      account.ID,
		Company:        req.Company,
		Limit:          limit,
		AvailableLimit: limit,
		CloseDay:       req.CloseDay,
		ExpireDay:      req.ExpireDay,
	}
	if err := h.DB.Create(&card).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create card")
		return
	}

	h.Cache.Delete(c.Request.Context(), cardListKey(account.ID))
	util.Created(c, util.Response{
		"credit_card": card,
	})
}

func (h *CreditCardHandler) ListCards(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var cards []models.CreditCard
	key := cardListKey(account.ID)
	if hit, err := h.Cache.GetJSON(c.Request.Context(), key, &cards); err == nil && hit {
		util.Success(c, util.Response{
			"credit_cards": cards,
		})
		return
	}

	if err := h.DB.Where("account_id = ?", account.ID).
		Order("created_at ASC").Find(&cards).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list cards")
		return
	}

	h.Cache.SetJSON(c.Request.Context(), key, cards, cardCacheTTL)
	util.Success(c, util.Response{
		"credit_cards": cards,
	})
}

func (h *CreditCardHandler) GetCard(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var card models.CreditCard
	err := h.DB.Preload("Invoices").
		First(&card, "id = ? AND account_id = ?", c.Param("id"), account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "credit card not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load card")
		return
	}
	util.Success(c, util.Response{
		"credit_card": card,
	})
}

type updateCardReq struct {
	Company   string `json:"company" binding:"max=64"`
	CloseDay  int    `json:"close_day" binding:"omitempty,min=1,max=31"`
	ExpireDay int    `json:"expire_day" binding:"omitempty,min=1,max=31"`
}

// UpdateCard patches descriptive fields. Limit and AvailableLimit stay
// under ledger control.
func (h *CreditCardHandler) UpdateCard(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req updateCardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var card models.CreditCard
	err := h.DB.First(&card, "id = ? AND account_id = ?", c.Param("id"), account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "credit card not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load card")
		return
	}

	if req.Company != "" {
		card.Company = req.Company
	}
	if req.CloseDay != 0 {
		card.CloseDay = req.CloseDay
	}
	if req.ExpireDay != 0 {
		card.ExpireDay = req.ExpireDay
	}

	if err := h.DB.Save(&card).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save card")
		return
	}

	h.Cache.Delete(c.Request.Context(), cardListKey(account.ID))
	util.Success(c, util.Response{
		"credit_card": card,
	})
}

// DeleteCard refuses while card-linked transactions exist; reversing
// them first keeps the aggregates consistent.
func (h *CreditCardHandler) DeleteCard(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	id := c.Param("id")

	var card models.CreditCard
	err := h.DB.First(&card, "id = ? AND account_id = ?", id, account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "credit card not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load card")
		return
	}

	var linked int64
	if err := h.DB.Model(&models.Transaction{}).
		Where("credit_card_id = ?", id).Count(&linked).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check transactions")
		return
	}
	if linked > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "credit card has linked transactions")
		return
	}

	if err := h.DB.Select("Invoices").Delete(&card).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete card")
		return
	}

	h.Cache.Delete(c.Request.Context(), cardListKey(account.ID))
	util.NoContent(c)
}
