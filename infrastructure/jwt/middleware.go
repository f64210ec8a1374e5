// Package jwt resolves the caller's session from an HS256 bearer token.
package jwt

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const claimsKey = "claims"

// ErrMissingToken is returned when no bearer token is present.
var ErrMissingToken = errors.New("missing bearer token")

// Claims are the token claims; Sub identifies the logged-in user.
type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

// Parse validates a bearer Authorization header value against secret.
func Parse(authHeader, secret string) (*Claims, error) {
	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found || token == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Middleware rejects requests without a valid token with 401.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := Parse(c.GetHeader("Authorization"), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalMiddleware stores claims when a valid token is present and lets
// every request through. Handlers use Authenticated to pick the logged-in or
// anonymous context. An empty secret disables authentication entirely.
func OptionalMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret != "" {
			if claims, err := Parse(c.GetHeader("Authorization"), secret); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// GetClaims returns the claims stored by either middleware.
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// Authenticated reports whether the request carries a valid token.
func Authenticated(c *gin.Context) bool {
	_, ok := GetClaims(c)
	return ok
}
