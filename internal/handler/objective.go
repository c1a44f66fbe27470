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

// ObjectiveHandler manages savings goals. Progress is the sum of the
// linked transactions, computed on read.
type ObjectiveHandler struct {
	DB *gorm.DB
}

func NewObjectiveHandler(db *gorm.DB) *ObjectiveHandler {
	return &ObjectiveHandler{DB: db}
}

type objectiveReq struct {
	Title       string `json:"title" binding:"required,max=64"`
	TargetValue string `json:"target_value" binding:"required"`
	DueDate     string `json:"due_date"`
}

func (h *ObjectiveHandler) CreateObjective(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req objectiveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	target, err := decimal.NewFromString(req.TargetValue)
	if err != nil || !target.IsPositive() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "target_value must be a positive decimal")
		return
	}

	objective := models.Objective{
		AccountID:   account.ID,
		Title:       req.Title,
		TargetValue: target,
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "due_date must be YYYY-MM-DD")
			return
		}
		objective.DueDate = &due
	}

	if err := h.DB.Create(&objective).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create objective")
		return
	}
	util.Created(c, util.Response{
		"objective": objective,
	})
}

// objectiveProgress sums the input transactions linked to an
// objective.
func (h *ObjectiveHandler) objectiveProgress(objectiveID string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	err := h.DB.Model(&models.Transaction{}).
		Where("objective_id = ? AND type = ?", objectiveID, models.TypeInput).
		Select("COALESCE(SUM(value), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal, nil
}

func (h *ObjectiveHandler) ListObjectives(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var objectives []models.Objective
	if err := h.DB.Where("account_id = ?", account.ID).
		Order("created_at ASC").Find(&objectives).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list objectives")
		return
	}

	items := make([]util.Response, 0, len(objectives))
	for i := range objectives {
		progress, err := h.objectiveProgress(objectives[i].ID)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute progress")
			return
		}
		items = append(items, util.Response{
			"objective": objectives[i],
			"progress":  progress,
		})
	}
	util.Success(c, util.Response{
		"objectives": items,
	})
}

func (h *ObjectiveHandler) GetObjective(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var objective models.Objective
	err := h.DB.First(&objective, "id = ? AND account_id = ?", c.Param("id"), account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "objective not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load objective")
		return
	}

	progress, err := h.objectiveProgress(objective.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute progress")
		return
	}
	util.Success(c, util.Response{
		"objective": objective,
		"progress":  progress,
	})
}

func (h *ObjectiveHandler) UpdateObjective(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req objectiveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	target, err := decimal.NewFromString(req.TargetValue)
	if err != nil || !target.IsPositive() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "target_value must be a positive decimal")
		return
	}

	var objective models.Objective
	err = h.DB.First(&objective, "id = ? AND account_id = ?", c.Param("id"), account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "objective not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load objective")
		return
	}

	objective.Title = req.Title
	objective.TargetValue = target
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "due_date must be YYYY-MM-DD")
			return
		}
		objective.DueDate = &due
	}

	if err := h.DB.Save(&objective).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save objective")
		return
	}
	util.Success(c, util.Response{
		"objective": objective,
	})
}

// DeleteObjective detaches linked transactions instead of refusing:
// the objective link carries no aggregate effect.
func (h *ObjectiveHandler) DeleteObjective(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	id := c.Param("id")

	var objective models.Objective
	err := h.DB.First(&objective, "id = ? AND account_id = ?", id, account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "objective not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load objective")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("objective_id = ?", id).
			Update("objective_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&objective).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete objective")
		return
	}
	util.NoContent(c)
}
