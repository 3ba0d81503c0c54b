package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/docgate-io/docgate/internal/model"
	"github.com/docgate-io/docgate/internal/pkg/errcode"
	"github.com/docgate-io/docgate/internal/pkg/response"
	"github.com/docgate-io/docgate/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "email and password are required")
		return
	}
	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, loginResponse{Token: token, User: user})
}
