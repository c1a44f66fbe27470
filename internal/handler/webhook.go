package handler

import (
	"net/http"

	"finanz-server/internal/bot"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives GitHub webhooks and relays pull request
// events to the Discord channel.
type WebhookHandler struct {
	Notifier *bot.Notifier
}

func NewWebhookHandler(notifier *bot.Notifier) *WebhookHandler {
	return &WebhookHandler{Notifier: notifier}
}

func (h *WebhookHandler) GitHub(c *gin.Context) {
	if c.GetHeader("X-GitHub-Event") != "pull_request" {
		// other events are acknowledged and dropped
		util.Success(c, util.Response{
			"message": "event ignored",
		})
		return
	}

	var ev bot.PullRequestEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid webhook payload")
		return
	}

	if err := h.Notifier.ForwardPullRequest(c.Request.Context(), &ev); err != nil {
		util.Error(c, http.StatusBadGateway, util.CodeServerErr, "failed to forward event")
		return
	}
	util.Success(c, util.Response{
		"message": "forwarded",
	})
}
