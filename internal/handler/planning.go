package handler

import (
	"errors"
	"net/http"
	"time"

	"finanz-server/internal/models"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlanningHandler manages monthly budget envelopes. Available limits
// are consumed by the ledger service; here they are only initialized.
type PlanningHandler struct {
	DB *gorm.DB
}

func NewPlanningHandler(db *gorm.DB) *PlanningHandler {
	return &PlanningHandler{DB: db}
}

type planningCategoryReq struct {
	CategoryID string `json:"category_id" binding:"required"`
	Limit      string `json:"limit" binding:"required"`
}

type createPlanningReq struct {
	Title      string                `json:"title" binding:"required,max=64"`
	Month      string                `json:"month" binding:"required"`
	Limit      string                `json:"limit" binding:"required"`
	Categories []planningCategoryReq `json:"categories"`
}

// CreatePlanning creates the envelope for one month. A second
// planning for the same account and month conflicts.
func (h *PlanningHandler) CreatePlanning(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req createPlanningReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	month, err := time.Parse("2006-01", req.Month)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "month must be YYYY-MM")
		return
	}
	limit, err := decimal.NewFromString(req.Limit)
	if err != nil || !limit.IsPositive() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "limit must be a positive decimal")
		return
	}

	var count int64
	if err := h.DB.Model(&models.Planning{}).
		Where("account_id = ? AND month = ?", account.ID, month).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check planning")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "planning already exists for month")
		return
	}

	planning := models.Planning{
		AccountID:      account.ID,
		Title:          req.Title,
		Month:          month,
		Limit:          limit,
		AvailableLimit: limit,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&planning).Error; err != nil {
			return err
		}
		for _, pc := range req.Categories {
			catLimit, err := decimal.NewFromString(pc.Limit)
			if err != nil || !catLimit.IsPositive() {
				return errBadCategoryLimit
			}
			var owned int64
			if err := tx.Model(&models.Category{}).
				Where("id = ? AND account_id = ?", pc.CategoryID, account.ID).
				Count(&owned).Error; err != nil {
				return err
			}
			if owned == 0 {
				return errUnknownCategory
			}
			if err := tx.Create(&models.PlanningCategory{
				PlanningID:     planning.ID,
				CategoryID:     pc.CategoryID,
				Limit:          catLimit,
				AvailableLimit: catLimit,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	switch {
	case errors.Is(err, errBadCategoryLimit):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category limit must be a positive decimal")
		return
	case errors.Is(err, errUnknownCategory):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		return
	case err != nil:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create planning")
		return
	}

	if err := h.DB.Preload("Categories").First(&planning, "id = ?", planning.ID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load planning")
		return
	}
	util.Created(c, util.Response{
		"planning": planning,
	})
}

var (
	errBadCategoryLimit = errors.New("bad category limit")
	errUnknownCategory  = errors.New("unknown category")
)

// ListPlannings returns the account's envelopes, optionally filtered
// to one month (?month=YYYY-MM).
func (h *PlanningHandler) ListPlannings(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	base := h.DB.Preload("Categories.Category").Where("account_id = ?", account.ID)
	if monthStr := c.Query("month"); monthStr != "" {
		month, err := time.Parse("2006-01", monthStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "month must be YYYY-MM")
			return
		}
		base = base.Where("month = ?", month)
	}

	var plannings []models.Planning
	if err := base.Order("month DESC").Find(&plannings).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list plannings")
		return
	}
	util.Success(c, util.Response{
		"plannings": plannings,
	})
}

// GetPlanning returns one envelope with its consumption progress.
// Consumed amounts are derived from the limits the ledger maintains.
func (h *PlanningHandler) GetPlanning(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var planning models.Planning
	err := h.DB.Preload("Categories.Category").
		First(&planning, "id = ? AND account_id = ?", c.Param("id"), account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "planning not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load planning")
		return
	}

	byCategory := make([]util.Response, 0, len(planning.Categories))
	for i := range planning.Categories {
		pc := planning.Categories[i]
		byCategory = append(byCategory, util.Response{
			"category_id":     pc.CategoryID,
			"limit":           pc.Limit,
			"available_limit": pc.AvailableLimit,
			"consumed":        pc.Limit.Sub(pc.AvailableLimit),
		})
	}

	util.Success(c, util.Response{
		"planning": planning,
		"progress": util.Response{
			"consumed":    planning.Limit.Sub(planning.AvailableLimit),
			"by_category": byCategory,
		},
	})
}

type updatePlanningReq struct {
	Title string `json:"title" binding:"required,max=64"`
}

// UpdatePlanning renames the envelope. Limits are fixed after
// creation so consumed amounts stay reversible.
func (h *PlanningHandler) UpdatePlanning(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req updatePlanningReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var planning models.Planning
	err := h.DB.First(&planning, "id = ? AND account_id = ?", c.Param("id"), account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "planning not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load planning")
		return
	}

	planning.Title = req.Title
	if err := h.DB.Save(&planning).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save planning")
		return
	}
	util.Success(c, util.Response{
		"planning": planning,
	})
}

func (h *PlanningHandler) DeletePlanning(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var planning models.Planning
	err := h.DB.First(&planning, "id = ? AND account_id = ?", c.Param("id"), account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "planning not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load planning")
		return
	}

	if err := h.DB.Select("Categories").Delete(&planning).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete planning")
		return
	}
	util.NoContent(c)
}
