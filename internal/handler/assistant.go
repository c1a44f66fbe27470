package handler

import (
	"net/http"

	"finanz-server/internal/assistant"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AssistantHandler exposes the finance assistant. With no model
// configured the endpoint reports the feature as unavailable.
type AssistantHandler struct {
	DB        *gorm.DB
	Assistant *assistant.Assistant
}

func NewAssistantHandler(db *gorm.DB, a *assistant.Assistant) *AssistantHandler {
	return &AssistantHandler{DB: db, Assistant: a}
}

type askReq struct {
	Question string `json:"question" binding:"required,max=2000"`
}

func (h *AssistantHandler) Ask(c *gin.Context) {
	if h.Assistant == nil {
		util.Error(c, http.StatusServiceUnavailable, util.CodeServerErr, "assistant is not configured")
		return
	}

	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}

	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "question is required")
		return
	}

	answer, err := h.Assistant.Ask(c.Request.Context(), account, req.Question)
	if err != nil {
		util.Error(c, http.StatusBadGateway, util.CodeServerErr, "assistant request failed")
		return
	}
	util.Success(c, util.Response{
		"answer": answer,
	})
}
