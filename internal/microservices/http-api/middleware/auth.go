package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mediahub/internal/auth"
)

const sessionKey = "session"

// TokenVerifier turns a bearer token into an authenticated session.
type TokenVerifier interface {
	Verify(token string) (auth.Context, error)
}

// AuthMiddleware is a Gin middleware for JWT authentication of API requests.
// The verified session is stored under "session" and its user id under
// "userID" for handlers to use.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		// "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		session, err := verifier.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(sessionKey, session)
		c.Set("userID", session.UserID)
		c.Set("email", session.Email)
		c.Request = c.Request.WithContext(auth.WithContext(c.Request.Context(), session))

		c.Next()
	}
}

// Session returns the session set by AuthMiddleware. The zero Context is
// returned for unauthenticated requests.
func Session(c *gin.Context) auth.Context {
	v, ok := c.Get(sessionKey)
	if !ok {
		return auth.Context{}
	}
	session, _ := v.(auth.Context)
	return session
}

// WithSession stores session the way AuthMiddleware does; used by tests and
// trusted internal routes.
func WithSession(session auth.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionKey, session)
		c.Set("userID", session.UserID)
		c.Next()
	}
}
