package handler

import (
	"errors"
	"net/http"
	"strings"

	"finanz-server/internal/models"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler manages the account's transaction categories.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type categoryReq struct {
	Name string `json:"name" binding:"required,max=50"`
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return
	}

	var count int64
	if err := h.DB.Model(&models.Category{}).
		Where("account_id = ? AND name = ?", account.ID, req.Name).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check category")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "category already exists")
		return
	}

	category := models.Category{AccountID: account.ID, Name: req.Name}
	if err := h.DB.Create(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create category")
		return
	}
	util.Created(c, util.Response{
		"category": category,
	})
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var categories []models.Category
	if err := h.DB.Where("account_id = ?", account.ID).
		Order("name ASC").Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list categories")
		return
	}
	util.Success(c, util.Response{
		"categories": categories,
	})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var category models.Category
	err := h.DB.First(&category, "id = ? AND account_id = ?", c.Param("id"), account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		return
	}

	category.Name = strings.TrimSpace(req.Name)
	if err := h.DB.Save(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save category")
		return
	}
	util.Success(c, util.Response{
		"category": category,
	})
}

// DeleteCategory refuses while transactions still reference the
// category.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	id := c.Param("id")

	var category models.Category
	err := h.DB.First(&category, "id = ? AND account_id = ?", id, account.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		return
	}

	var linked int64
	if err := h.DB.Model(&models.Transaction{}).
		Where("category_id = ?", id).Count(&linked).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check transactions")
		return
	}
	if linked > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "category has linked transactions")
		return
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete category")
		return
	}
	util.NoContent(c)
}
