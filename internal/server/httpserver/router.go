package httpserver

import (
	"net/http"

	"github.com/dmitrijs2005/activitydash/internal/logging"
	"github.com/gin-gonic/gin"
)

func newRouter(logger logging.Logger, us UserService, tv TokenVerifier, as ActivityService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	h := &handlers{users: us, activity: as, logger: logger}

	router.POST("/register", h.register)
	router.POST("/login", h.login)

	authed := router.Group("/")
	authed.Use(accessTokenMiddleware(tv))
	{
		authed.POST("/logout", h.logout)
		authed.GET("/profile", h.profile)
		authed.PATCH("/profile-update", h.updateProfile)
		authed.PUT("/profile-update", h.updateProfile)
		authed.GET("/activity-chart", h.activityChart)
		authed.POST("/activity-chart/export", h.exportActivityChart)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
