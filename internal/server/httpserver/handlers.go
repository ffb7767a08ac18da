package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/activitydash/internal/logging"
	"github.com/dmitrijs2005/activitydash/internal/server/models"
	"github.com/dmitrijs2005/activitydash/internal/server/services"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, username string, password string) (*services.TokenPair, error)
	Logout(ctx context.Context, userID string, refreshToken string) error
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, in services.ProfileUpdate) (*models.User, error)
}

type TokenVerifier interface {
	VerifyAccess(token string) (string, error)
}

type ActivityService interface {
	DailyCounts(ctx context.Context, userID string) ([]models.DailyCount, error)
	Export(ctx context.Context, userID string) (*services.Export, error)
}

type handlers struct {
	users    UserService
	activity ActivityService
	logger   logging.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// bindJSON decodes the body into dst; an empty body leaves dst untouched.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "invalid_request", "Malformed JSON body.")
		return false
	}
	return true
}

// POST /register
func (h *handlers) register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// POST /login
func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	missing := map[string]string{}
	if req.Username == "" {
		missing["username"] = "This field is required."
	}
	if req.Password == "" {
		missing["password"] = "This field is required."
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid input.", Details: missing})
		return
	}

	pair, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// POST /logout
func (h *handlers) logout(c *gin.Context) {
	var req logoutRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.users.Logout(c.Request.Context(), currentUserID(c), req.Refresh); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusResetContent)
}

// GET /profile
func (h *handlers) profile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PATCH|PUT /profile-update
func (h *handlers) updateProfile(c *gin.Context) {
	var req services.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /activity-chart
func (h *handlers) activityChart(c *gin.Context) {
	counts, err := h.activity.DailyCounts(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	if counts == nil {
		counts = []models.DailyCount{}
	}
	c.JSON(http.StatusOK, counts)
}

// POST /activity-chart/export
func (h *handlers) exportActivityChart(c *gin.Context) {
	exp, err := h.activity.Export(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, exp)
}
