package handler

import (
	"errors"
	"net/http"
	"time"

	"finanz-server/internal/ledger"
	"finanz-server/internal/models"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HoldingHandler manages investment pools and their moviments.
// Moviment writes go through the ledger service so the dual
// account/holding adjustment stays atomic.
type HoldingHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Service
}

func NewHoldingHandler(db *gorm.DB, svc *ledger.Service) *HoldingHandler {
	return &HoldingHandler{DB: db, Ledger: svc}
}

type createHoldingReq struct {
	Name    string `json:"name" binding:"required,max=64"`
	Tax     string `json:"tax"`
	DueDate string `json:"due_date"`
}

func (h *HoldingHandler) CreateHolding(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req createHoldingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	holding := models.Holding{
		AccountID: account.ID,
		Name:      req.Name,
		Total:     decimal.Zero,
	}
	if req.Tax != "" {
		tax, err := decimal.NewFromString(req.Tax)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "tax must be a decimal string")
			return
		}
		holding.Tax = tax
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "due_date must be YYYY-MM-DD")
			return
		}
		holding.DueDate = &due
	}

	if err := h.DB.Create(&holding).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create holding")
		return
	}
	util.Created(c, util.Response{
		"holding": holding,
	})
}

func (h *HoldingHandler) ListHoldings(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var holdings []models.Holding
	if err := h.DB.Where("account_id = ?", account.ID).
		Order("created_at ASC").Find(&holdings).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list holdings")
		return
	}
	util.Success(c, util.Response{
		"holdings": holdings,
	})
}

func (h *HoldingHandler) GetHolding(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var holding models.Holding
	err := h.DB.Preload("Moviments").
		First(&holding, "id = ? AND account_id = ?", c.Param("id"), account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "holding not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load holding")
		return
	}
	util.Success(c, util.Response{
		"holding": holding,
	})
}

// DeleteHolding refuses while moviments exist; their reversal keeps
// the account balance consistent.
func (h *HoldingHandler) DeleteHolding(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	id := c.Param("id")

	var holding models.Holding
	err := h.DB.First(&holding, "id = ? AND account_id = ?", id, account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "holding not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load holding")
		return
	}

	var linked int64
	if err := h.DB.Model(&models.Moviment{}).
		Where("holding_id = ?", id).Count(&linked).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check moviments")
		return
	}
	if linked > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "holding has moviments")
		return
	}

	if err := h.DB.Delete(&holding).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete holding")
		return
	}
	util.NoContent(c)
}

type createMovimentReq struct {
	Value string `json:"value" binding:"required"`
	Type  string `json:"type" binding:"required,oneof=input output"`
}

// CreateMoviment moves money between the account and the holding.
func (h *HoldingHandler) CreateMoviment(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req createMovimentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "value must be a decimal string")
		return
	}

	created, err := h.Ledger.CreateMoviment(ledger.MovimentInput{
		HoldingID: c.Param("id"),
		AccountID: account.ID,
		Value:     value,
		Type:      req.Type,
	})
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	util.Created(c, util.Response{
		"moviment": created,
	})
}

// ListMoviments returns the account's moviments across all holdings.
func (h *HoldingHandler) ListMoviments(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var moviments []models.Moviment
	if err := h.DB.Where("account_id = ?", account.ID).
		Order("created_at DESC, id DESC").Find(&moviments).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list moviments")
		return
	}
	util.Success(c, util.Response{
		"moviments": moviments,
	})
}

// DeleteMoviment reverses the moviment's dual adjustment.
func (h *HoldingHandler) DeleteMoviment(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var moviment models.Moviment
	err := h.DB.First(&moviment, "id = ? AND account_id = ?", c.Param("movimentId"), account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "moviment not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load moviment")
		return
	}

	if err := h.Ledger.DeleteMoviment(moviment.ID); err != nil {
		writeLedgerError(c, err)
		return
	}
	util.NoContent(c)
}
