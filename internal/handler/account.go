package handler

import (
	"net/http"

	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AccountHandler reads the authenticated user's account. The balance
// itself has no write endpoint: it moves only through transactions,
// moviments and invoice payments.
type AccountHandler struct {
	DB *gorm.DB
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

// GetAccount returns the account with its categories.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	if err := h.DB.Preload("Categories").First(account, "id = ?", account.ID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		return
	}
	util.Success(c, util.Response{
		"account": account,
	})
}

type updateAccountReq struct {
	Currency string `json:"currency" binding:"required,max=8"`
}

// UpdateAccount changes the display currency. CurrentValue is a
// derived aggregate and deliberately not accepted here.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req updateAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	account.Currency = req.Currency
	if err := h.DB.Model(account).Update("currency", req.Currency).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save account")
		return
	}
	util.Success(c, util.Response{
		"account": account,
	})
}
