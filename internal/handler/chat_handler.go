package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docgate-io/docgate/internal/model"
	"github.com/docgate-io/docgate/internal/pkg/errcode"
	"github.com/docgate-io/docgate/internal/pkg/response"
	"github.com/docgate-io/docgate/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Query     string `json:"query" binding:"required"`
	DocType   string `json:"doc_type"`
	ProjectID string `json:"project_id"`
}

func (h *ChatHandler) Query(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "query is required")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		response.Error(c, errcode.ErrInvalid, "query is required")
		return
	}
	result, err := h.chat.Query(c.Request.Context(), getUserEmail(c), req.Query, model.SearchFilters{
		DocType:   req.DocType,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
