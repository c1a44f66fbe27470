package handler

import (
	"net/http"
	"strings"

	"finanz-server/internal/cache"
	"finanz-server/internal/middleware"
	"finanz-server/internal/models"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	DB    *gorm.DB
	Cache *cache.Cache
}

func NewUserHandler(db *gorm.DB, store *cache.Cache) *UserHandler {
	return &UserHandler{DB: db, Cache: store}
}

// GetMe returns the current user with its account preloaded.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var full models.User
	if err := h.DB.Preload("Account").First(&full, "id = ?", user.ID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load user")
		return
	}
	util.Success(c, util.Response{
		"user": full,
	})
}

type updateMeReq struct {
	Name     string `json:"name" binding:"max=64"`
	Phone    string `json:"phone" binding:"max=16"`
	CPF      string `json:"cpf" binding:"max=11"`
	Password string `json:"password" binding:"omitempty,min=6,max=72"`
}

// UpdateMe patches the mutable profile fields. Empty fields are left
// unchanged.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req updateMeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.CPF != "" {
		user.CPF = req.CPF
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.DB.Save(user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save user")
		return
	}
	util.Success(c, util.Response{
		"user": user,
	})
}

// DeleteMe removes the user and, through the cascade, everything the
// account owns. The session token is revoked first.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	if err := h.Cache.RevokeToken(c.Request.Context(), user.ID); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to revoke session")
		return
	}
	if err := h.DB.Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete user")
		return
	}
	util.NoContent(c)
}
