package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
)

// RespondWithError translates an error into the uniform failure payload.
// Tagged errors surface their client-safe message and mapped status; anything
// untagged collapses to a generic 500 so internal details never leak. This is
// the only place status codes are derived from errors.
func RespondWithError(c *gin.Context, log *zap.Logger, err error) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	if tagged, ok := domain.AsError(err); ok {
		if tagged.Kind == domain.KindInternal || tagged.Kind == domain.KindUnavailable {
			logError(c, log, err)
		}
		c.JSON(tagged.Status(), NewErrorResponse(tagged.Message))
		return
	}

	logError(c, log, err)
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}

func logError(c *gin.Context, log *zap.Logger, err error) {
	if log == nil {
		return
	}
	log.Error("request error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
}
