// devserver/handlers/auth_handlers.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"portfolio/devserver/config"
	"portfolio/devserver/models"
	"portfolio/devserver/utils"
)

// TokenCookie carries the dashboard JWT.
const TokenCookie = "jwt_token"

type AuthHandlers struct {
	Dashboard config.DashboardConfig
	now       func() time.Time
	logger    *zap.Logger
}

func NewAuthHandlers(dashboard config.DashboardConfig, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{Dashboard: dashboard, now: time.Now, logger: logger}
}

// Login checks the dashboard password and issues a JWT, both as a cookie and
// in the body for scripts that prefer a bearer header.
func (h *AuthHandlers) Login(c *gin.Context) {
	if h.Dashboard.PasswordHash == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dashboard login is not enabled"})
		return
	}

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.Dashboard.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.Warn("dashboard login failed", zap.String("remote", c.RemoteIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, expiresAt, err := utils.GenerateJWT([]byte(h.Dashboard.JWTSecret), h.Dashboard.TokenTTL, h.now())
	if err != nil {
		h.logger.Error("failed to generate dashboard token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetCookie(
		TokenCookie,
		tokenString,
		int(h.Dashboard.TokenTTL/time.Second),
		"/",
		"",
		false,
		true,
	)

	h.logger.Info("dashboard login", zap.Time("expires_at", expiresAt))
	c.JSON(http.StatusOK, models.DashboardSession{Token: tokenString, ExpiresAt: expiresAt})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetCookie(
		TokenCookie,
		"",
		-1,
		"/",
		"",
		false,
		true,
	)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
