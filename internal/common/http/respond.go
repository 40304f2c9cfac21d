package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
)

// RespondError renders err as {"error","code","details"} with the status
// mapped from its code. Anything that is not a StandardError becomes a 500.
func RespondError(c *gin.Context, log logger.Logger, err error) {
	stdErr := errors.Normalize(err)
	status := errors.HTTPStatus(stdErr.Code)

	if status >= http.StatusInternalServerError {
		log.Error("Request failed", map[string]interface{}{
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
			"code":    string(stdErr.Code),
			"details": stdErr.Details,
		})
	}

	body := gin.H{
		"error": stdErr.Message,
		"code":  stdErr.Code,
	}
	if stdErr.Details != "" && status < http.StatusInternalServerError {
		body["details"] = stdErr.Details
	}
	c.AbortWithStatusJSON(status, body)
}

// RespondFieldErrors renders a field-level validation failure.
func RespondFieldErrors(c *gin.Context, fieldErrors map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"errors": fieldErrors,
	})
}
