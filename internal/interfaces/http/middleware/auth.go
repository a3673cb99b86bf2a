package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harbinger-games/harbinger/internal/infrastructure/auth"
	"github.com/harbinger-games/harbinger/internal/shared/constants"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
	"github.com/harbinger-games/harbinger/internal/shared/utils"
)

// TokenVerifier checks an access token and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	logger   logger.Interface
}

func NewAuthMiddleware(verifier TokenVerifier, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth rejects requests without a valid bearer access token and stores the
// caller's player id in the gin context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			// EventSource cannot set headers, so the SSE stream passes the token as a query parameter.
			token = c.Query("access_token")
		}
		if token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err, "path", c.Request.URL.Path)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyPlayerID, claims.PlayerID())
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader(constants.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// PlayerIDFromContext returns the authenticated player id set by RequireAuth.
func PlayerIDFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get(constants.ContextKeyPlayerID)
	if !exists {
		return "", false
	}
	playerID, ok := v.(string)
	return playerID, ok && playerID != ""
}
