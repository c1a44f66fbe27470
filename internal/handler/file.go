package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"finanz-server/internal/middleware"
	"finanz-server/internal/models"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxUploadSize = 10 << 20 // 10 MiB

// FileHandler stores uploaded attachments on local disk with a
// metadata row per file.
type FileHandler struct {
	DB  *gorm.DB
	Dir string
}

func NewFileHandler(db *gorm.DB, dir string) *FileHandler {
	if dir == "" {
		dir = "uploads"
	}
	return &FileHandler{DB: db, Dir: dir}
}

// Upload accepts one multipart file under the "file" field.
func (h *FileHandler) Upload(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "file field is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "file exceeds 10MB limit")
		return
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to prepare storage")
		return
	}

	storedName := uuid.NewString() + filepath.Ext(fileHeader.Filename)
	dst := filepath.Join(h.Dir, storedName)
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save file")
		return
	}

	stored := models.StoredFile{
		UserID:       &user.ID,
		OriginalName: fileHeader.Filename,
		StoredName:   storedName,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Description:  c.PostForm("description"),
	}
	if categoryID := c.PostForm("category_id"); categoryID != "" {
		stored.CategoryID = &categoryID
	}

	if err := h.DB.Create(&stored).Error; err != nil {
		os.Remove(dst)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to record file")
		return
	}
	util.Created(c, util.Response{
		"file": stored,
	})
}

func (h *FileHandler) ListFiles(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var files []models.StoredFile
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").Find(&files).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list files")
		return
	}
	util.Success(c, util.Response{
		"files": files,
	})
}

// Download streams the stored file with its original name.
func (h *FileHandler) Download(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var stored models.StoredFile
	err := h.DB.First(&stored, "id = ? AND user_id = ?", c.Param("id"), user.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "file not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load file")
		return
	}

	path := filepath.Join(h.Dir, stored.StoredName)
	if _, err := os.Stat(path); err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "file content missing")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stored.OriginalName))
	if stored.MimeType != "" {
		c.Header("Content-Type", stored.MimeType)
	}
	c.File(path)
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var stored models.StoredFile
	err := h.DB.First(&stored, "id = ? AND user_id = ?", c.Param("id"), user.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "file not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load file")
		return
	}

	if err := h.DB.Delete(&stored).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete file")
		return
	}
	os.Remove(filepath.Join(h.Dir, stored.StoredName))
	util.NoContent(c)
}
