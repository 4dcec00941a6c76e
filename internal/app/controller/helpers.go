package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/service"
	apperrors "github.com/storerate/storerate-backend/internal/errors"
	"github.com/storerate/storerate-backend/internal/validation"
	"github.com/storerate/storerate-backend/pkg/logger"
)

// parseIDParam reads a positive integer path parameter and writes a 400
// when it is malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}

// bindJSON binds the body into req and writes the field errors on failure.
func bindJSON(c *gin.Context, log *logger.Logger, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithValidationError(c, validation.Translate(err))
		return false
	}
	return true
}

// respondUnexpected handles errors no handler-specific branch matched.
// Database constraint failures that slipped past the service checks are
// mapped to their client code; anything else is a logged 500.
func respondUnexpected(c *gin.Context, log *logger.Logger, msg string, err error, fields map[string]interface{}) {
	if errors.Is(err, service.ErrInvalidInput) {
		apperrors.RespondWithValidationError(c, validation.Translate(err))
		return
	}

	info := apperrors.ParseError(err, "")
	if info.Status != http.StatusInternalServerError {
		logFields := map[string]interface{}{
			"error": err.Error(),
			"code":  info.Code,
		}
		for k, v := range fields {
			logFields[k] = v
		}
		log.Warn(msg, logFields)
		apperrors.RespondWithError(c, info.Status, info.Code, info.Message)
		return
	}

	log.Error(msg, err, fields)
	apperrors.InternalError(c)
}
