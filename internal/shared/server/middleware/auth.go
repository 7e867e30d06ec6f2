package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"tailor-portal/internal/shared/auth"
)

const (
	userIDKey = "userId"

	// sessionCookie is the cookie the session provider sets for same-site page loads.
	sessionCookie = "__session"
)

// TokenVerifier inspects a bearer token.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// Auth extracts the caller's bearer token and stores the resulting identity on
// both the gin and request contexts. It never aborts: anonymous or invalid
// callers simply carry no token and downstream handlers decide.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			c.Set("authError", err.Error())
			c.Next()
			return
		}

		id := auth.Identity{
			Token:   token,
			Subject: claims.Subject,
			Email:   claims.Email,
			Name:    claims.Name,
		}
		if claims.Subject != "" {
			c.Set(userIDKey, claims.Subject)
		}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
			return ""
		}
		return strings.TrimSpace(header[7:])
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// IdentityFromContext returns the verified identity for the request.
func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	if c == nil || c.Request == nil {
		return auth.Identity{}, false
	}
	return auth.IdentityFromContext(c.Request.Context())
}
