package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/whatson-events/whatson-backend/config"
)

const authContextKey = "auth_context"

// AuthContext is the authenticated identity derived from the bearer
// token. Handlers receive it explicitly instead of reading raw claims.
type AuthContext struct {
	VendorID uint
	Email    string
}

// Auth validates the Authorization bearer token and attaches an
// AuthContext to the request. Missing, invalid or expired tokens yield a
// 401 with the standard message envelope.
func Auth(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed"})
			return
		}
		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed"})
			return
		}
		email, _ := claims["email"].(string)

		c.Set(authContextKey, AuthContext{VendorID: uint(userID), Email: email})
		c.Next()
	}
}

// GetAuth returns the AuthContext set by Auth. The second return is false
// on routes that never went through the middleware.
func GetAuth(c *gin.Context) (AuthContext, bool) {
	raw, exists := c.Get(authContextKey)
	if !exists {
		return AuthContext{}, false
	}
	auth, ok := raw.(AuthContext)
	return auth, ok
}
