package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"planmate/internal/models"
	"planmate/internal/services"
)

// Context keys set by JWTAuth
const (
	userIDKey = "userID"
	claimsKey = "claims"
)

// JWTAuth validates the Bearer token and stores the caller's identity in the context
func JWTAuth(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be Bearer <token>"})
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			log.Printf("[AUTH] Rejected token from %s: %v", c.ClientIP(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetUserID returns the authenticated user id, or "" outside JWTAuth
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetClaims returns the authenticated token claims
func GetClaims(c *gin.Context) *models.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*models.Claims); ok {
			return claims
		}
	}
	return nil
}
