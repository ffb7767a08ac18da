package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/activitydash/internal/common"
	"github.com/dmitrijs2005/activitydash/internal/logging"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// accessTokenMiddleware authenticates the request by its bearer access
// token and stores the user id in the gin context.
func accessTokenMiddleware(tv TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		token, found := strings.CutPrefix(header, common.BearerPrefix)
		if !found || token == "" {
			respondError(c, http.StatusUnauthorized, "not_authenticated", "Authentication credentials were not provided.")
			c.Abort()
			return
		}

		userID, err := tv.VerifyAccess(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "token_not_valid", "Given token not valid for any token type.")
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// requestLogger writes one line per request. Bodies and headers are never
// logged.
func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
