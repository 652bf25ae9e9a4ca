package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// RequireAuth resolves the Bearer access token and stores the user ID under
// "user_id". Refresh and verification tokens are rejected.
func RequireAuth(authService services.AuthService, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authentication credentials were not provided",
				Code:    "unauthorized",
			})
			return
		}

		userID, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Debug("Rejected access token", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired token",
				Code:    "unauthorized",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func UserIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id != 0
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "learning-service",
	})
}
