package http

import (
	"net/http"

	"github.com/Velarin/ChatHaven/auth-service/internal/adapters/transport/http/dto"
	"github.com/Velarin/ChatHaven/auth-service/internal/adapters/transport/http/middleware"
	appsvc "github.com/Velarin/ChatHaven/auth-service/internal/app/auth/service"
	authErrors "github.com/Velarin/ChatHaven/auth-service/internal/domain/auth/errors"
	"github.com/Velarin/ChatHaven/auth-service/internal/domain/auth/model"
	"github.com/Velarin/ChatHaven/auth-service/internal/infra/config"
	"github.com/Velarin/ChatHaven/auth-service/internal/infra/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const refreshCookie = "refreshtoken"

type Handler struct {
	svc     appsvc.Service
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewHandler(svc appsvc.Service, cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, cfg: cfg, log: log, metrics: m}
}

// RegisterRoutes mounts the auth endpoints under /auth.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/auth")
	auth.POST("/signup", h.signup)
	auth.POST("/login", h.login)
	auth.POST("/refreshtoken", h.refresh)
	auth.POST("/logout", h.logout)
	auth.POST("/send-password-reset-email", h.sendPasswordResetEmail)
	auth.POST("/reset-password/:id/:token", h.resetPassword)

	auth.GET("/chat", middleware.Protected(h.validateAccess), h.chat)
}

func (h *Handler) validateAccess(c *gin.Context, accessToken string) (model.User, error) {
	user, err := h.svc.Validate(c.Request.Context(), dto.ValidateDTO{AccessToken: accessToken})
	if err != nil {
		h.countTokenFailure("access", err)
	}
	return user, err
}

func (h *Handler) setRefreshCookie(c *gin.Context, pair model.TokenPair) {
	c.SetCookie(
		refreshCookie,
		pair.RefreshToken,
		int(pair.RefreshTTL.Seconds()),
		"/",
		h.cfg.CookieDomain,
		false, // secure
		true,  // httpOnly
	)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(refreshCookie, "", -1, "/", h.cfg.CookieDomain, false, true)
}

func (h *Handler) signup(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "type": "InvalidArgument"})
		return
	}

	if err := h.svc.Register(c.Request.Context(), body); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "user created successfully",
		"type":    "success",
	})
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "type": "InvalidArgument"})
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		h.metrics.Logins.WithLabelValues("failure").Inc()
		h.handleError(c, err)
		return
	}
	h.metrics.Logins.WithLabelValues("success").Inc()

	h.setRefreshCookie(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"accesstoken": pair.AccessToken,
		"message":     "sign in successful",
		"type":        "success",
	})
}

func (h *Handler) refresh(c *gin.Context) {
	// absent cookie flows through as an empty token: the service turns it
	// into MissingToken
	presented, _ := c.Cookie(refreshCookie)

	pair, err := h.svc.Refresh(c.Request.Context(), dto.RefreshDTO{RefreshToken: presented})
	if err != nil {
		h.metrics.Refreshes.WithLabelValues(resultLabel(err)).Inc()
		h.countTokenFailure("refresh", err)
		h.handleError(c, err)
		return
	}
	h.metrics.Refreshes.WithLabelValues("success").Inc()

	h.setRefreshCookie(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"accessToken": pair.AccessToken,
		"message":     "refreshed successfully",
		"type":        "success",
	})
}

func (h *Handler) logout(c *gin.Context) {
	presented, _ := c.Cookie(refreshCookie)
	// a bearer token, when still held, gets its remaining window revoked
	access := bearerToken(c)

	if err := h.svc.Logout(c.Request.Context(), dto.LogoutDTO{
		RefreshToken: presented,
		AccessToken:  access,
	}); err != nil {
		h.handleError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "logged out successfully",
		"type":    "success",
	})
}

func (h *Handler) chat(c *gin.Context) {
	v, ok := c.Get(middleware.UserKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token", "type": "InvalidToken"})
		return
	}
	user := v.(model.User)

	c.JSON(http.StatusOK, gin.H{
		"message": "you are logged in",
		"type":    "success",
		"user": gin.H{
			"id":    user.ID.String(),
			"email": user.Email,
		},
	})
}

func (h *Handler) sendPasswordResetEmail(c *gin.Context) {
	var body dto.ResetRequestDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "type": "InvalidArgument"})
		return
	}

	if err := h.svc.RequestPasswordReset(c.Request.Context(), body); err != nil {
		h.metrics.PasswordResets.WithLabelValues("request", "failure").Inc()
		h.handleError(c, err)
		return
	}
	h.metrics.PasswordResets.WithLabelValues("request", "success").Inc()

	c.JSON(http.StatusOK, gin.H{
		"message": "password reset link has been sent to your email",
		"type":    "success",
	})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var body struct {
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "type": "InvalidArgument"})
		return
	}

	err := h.svc.ConfirmPasswordReset(c.Request.Context(), dto.ResetConfirmDTO{
		UserID:      c.Param("id"),
		Token:       c.Param("token"),
		NewPassword: body.NewPassword,
	})
	if err != nil {
		h.metrics.PasswordResets.WithLabelValues("confirm", "failure").Inc()
		h.countTokenFailure("reset", err)
		h.handleError(c, err)
		return
	}
	h.metrics.PasswordResets.WithLabelValues("confirm", "success").Inc()

	c.JSON(http.StatusOK, gin.H{
		"message": "password reset successfully",
		"type":    "success",
	})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

func resultLabel(err error) string {
	switch {
	case authErrors.IsMissingToken(err):
		return "missing"
	case authErrors.IsTokenMismatch(err):
		return "mismatch"
	case authErrors.IsExpiredToken(err):
		return "expired"
	case authErrors.IsInvalidToken(err):
		return "invalid"
	case authErrors.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

func (h *Handler) countTokenFailure(kind string, err error) {
	switch {
	case authErrors.IsExpiredToken(err):
		h.metrics.TokenFailures.WithLabelValues(kind, "expired").Inc()
	case authErrors.IsInvalidToken(err):
		h.metrics.TokenFailures.WithLabelValues(kind, "invalid").Inc()
	}
}

// handleError turns a taxonomy error into a {message, type} response.
// Invalid and expired tokens share one caller-visible shape so the
// response cannot be used as a signature-vs-expiry oracle; logs and
// metrics keep them apart.
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case authErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "type": "InvalidArgument"})
	case authErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"message": "user already exists, try logging in", "type": "AlreadyExists"})
	case authErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"message": "user does not exist", "type": "NotFound"})
	case authErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials", "type": "InvalidCredentials"})
	case authErrors.IsMissingToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "no refresh token", "type": "MissingToken"})
	case authErrors.IsTokenMismatch(err):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid refresh token", "type": "TokenMismatch"})
	case authErrors.IsExpiredToken(err):
		h.log.Info("token rejected", zap.String("reason", "expired"))
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token", "type": "InvalidToken"})
	case authErrors.IsInvalidToken(err):
		h.log.Info("token rejected", zap.String("reason", "invalid"))
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token", "type": "InvalidToken"})
	case authErrors.IsDeliveryFailed(err):
		h.log.Error("mail delivery failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"message": "error sending email", "type": "DeliveryFailed"})
	default:
		// unexpected collaborator failure: log the detail, never return it
		h.log.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error", "type": "InternalFailure"})
	}
}
