// Package middleware provides the HTTP middleware the router applies to the
// API endpoints.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studyroom/backend/internal/application/adapter"
	domainerror "github.com/studyroom/backend/internal/domain/error"
	"github.com/studyroom/backend/internal/integration/entrypoint/dto"
)

// claimsContextKey holds the validated token claims in the Gin context.
const claimsContextKey = "auth_claims"

// AuthMiddleware guards the report and record endpoints with bearer token
// authentication.
type AuthMiddleware struct {
	tokenService adapter.TokenService
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(tokenService adapter.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate returns a Gin handler that rejects requests without a valid
// access token. A missing or malformed Authorization header and an invalid
// token both answer 401; the claims of a valid token are stored for the
// handlers downstream.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, domainerror.ErrCodeMissingToken, "A bearer access token is required")
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			unauthorized(c, domainerror.ErrCodeInvalidToken, "Invalid or expired token")
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// CurrentUser returns the token claims Authenticate stored for this request.
func CurrentUser(c *gin.Context) (*adapter.TokenClaims, bool) {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*adapter.TokenClaims)
	return claims, ok
}

// bearerToken extracts the credential from an Authorization header value.
func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(c *gin.Context, code domainerror.AuthErrorCode, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: message,
		Code:  string(code),
	})
}
