package middleware

import (
	"net/http"
	"strings"

	"dm-service/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	// TokenCookie is the cookie carrying the bearer token; browser
	// clients send it implicitly, including on websocket handshakes.
	TokenCookie = "token"

	identityKey = "identity"
)

type AuthMiddleware struct {
	verifier *auth.Service
}

func NewAuthMiddleware(verifier *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth verifies the bearer token and stores the identity in the
// request context. Token is taken from the Authorization header or the
// token cookie.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token"})
			return
		}

		identity, err := am.verifier.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// ExtractToken pulls the bearer token from the Authorization header, the
// token cookie, or the token query parameter, in that order.
func ExtractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

// IdentityFrom returns the verified identity set by RequireAuth.
func IdentityFrom(c *gin.Context) (*auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*auth.Identity)
	return identity, ok
}
