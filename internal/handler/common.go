package handler

import (
	"errors"
	"net/http"

	"finanz-server/internal/ledger"
	"finanz-server/internal/middleware"
	"finanz-server/internal/models"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// writeLedgerError maps the ledger error taxonomy onto the HTTP
// envelope: missing references 404, rule violations 409, bad fields
// 400, failed aggregate updates 500.
func writeLedgerError(c *gin.Context, err error) {
	var (
		nf       *ledger.NotFoundError
		conflict *ledger.ConflictError
		invalid  *ledger.ValidationError
	)
	switch {
	case errors.As(err, &nf):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, nf.Error())
	case errors.As(err, &conflict):
		util.Error(c, http.StatusConflict, util.CodeConflict, conflict.Error())
	case errors.As(err, &invalid):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, invalid.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "operation failed")
	}
}

// requireAccount resolves the authenticated user's account. It writes
// the error response itself; callers just return on nil.
func requireAccount(c *gin.Context, db *gorm.DB) *models.Account {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil
	}
	var account models.Account
	if err := db.First(&account, "user_id = ?", user.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return nil
	}
	return &account
}
