package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/activitydash/internal/common"
	"github.com/dmitrijs2005/activitydash/internal/logging"
	"github.com/dmitrijs2005/activitydash/internal/server/services"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, ErrorResponse{Error: code, Message: message})
}

// respondServiceError maps a service error to a status and body. Unknown
// errors become 500 with the cause logged, not returned.
func respondServiceError(c *gin.Context, logger logging.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid input.",
			Details: verr.Fields,
		})
	case errors.Is(err, common.ErrorUnauthorized):
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "No active account found with the given credentials.")
	case errors.Is(err, common.ErrMissingToken):
		respondError(c, http.StatusBadRequest, "missing_token", "Refresh token is required.")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		respondError(c, http.StatusBadRequest, "invalid_token", "Invalid or expired token.")
	case errors.Is(err, common.ErrorNotFound):
		respondError(c, http.StatusNotFound, "not_found", "Not found.")
	default:
		logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		respondError(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}
}
