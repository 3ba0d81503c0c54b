package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docgate-io/docgate/internal/middleware"
	"github.com/docgate-io/docgate/internal/pkg/errcode"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
	"github.com/docgate-io/docgate/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

func getUserEmail(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserEmailKey)
	email, _ := value.(string)
	return email
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrRetrievalUnavailable):
		response.Error(c, errcode.ErrRetrievalUnavailable, "retrieval unavailable")
	case errors.Is(err, appErr.ErrCompositionUnavailable):
		response.Error(c, errcode.ErrCompositionUnavailable, "composition unavailable")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
