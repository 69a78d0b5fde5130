package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/services"
)

const (
	UserContextKey  = "userID"
	EmailContextKey = "email"

	// AccessTokenCookie carries the access token for browser clients.
	AccessTokenCookie = "token"
)

// TokenValidator validates signed tokens.
type TokenValidator interface {
	ValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error)
}

// AuthMiddleware rejects requests without a valid access token. The token is
// read from the Authorization bearer header, then from the token cookie.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": services.CodeUnauthorized})
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, tokens)
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens TokenValidator) bool {
	tokenStr := bearerToken(c)
	if tokenStr == "" {
		return false
	}
	claims, err := tokens.ValidateToken(tokenStr, "access")
	if err != nil {
		return false
	}
	userID, err := services.SubjectID(claims)
	if err != nil {
		return false
	}
	c.Set(UserContextKey, userID)
	if email, ok := claims["email"].(string); ok {
		c.Set(EmailContextKey, email)
	}
	return true
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(h[len("Bearer "):])
		}
		return ""
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

func GetUserID(c *gin.Context) (uuid.UUID, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(uuid.UUID); ok && id != uuid.Nil {
			return id, nil
		}
	}
	return uuid.Nil, errors.New("user ID not found in context")
}

// OptionalUserID returns the caller's id, or nil for anonymous requests.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}
