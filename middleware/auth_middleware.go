package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/devserver/config"
	"portfolio/devserver/utils"
)

// DashboardAuth guards dashboard reads when the dashboard is protected. The
// visit counter stays public. Accepted credentials: X-API-KEY, the jwt_token
// cookie, or an Authorization bearer token.
func DashboardAuth(cfg config.DashboardConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Protected() || c.Query("counter") != "" {
			c.Next()
			return
		}

		if cfg.APIKey != "" {
			key := c.GetHeader("X-API-KEY")
			if key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) == 1 {
				c.Next()
				return
			}
		}

		tokenString, err := c.Cookie("jwt_token")
		if err != nil || tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if tokenString == "" || cfg.JWTSecret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
			return
		}

		if _, err := utils.ValidateJWT([]byte(cfg.JWTSecret), tokenString); err != nil {
			logger.Debug("rejected dashboard token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Next()
	}
}
