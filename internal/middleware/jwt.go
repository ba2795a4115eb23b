package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skillforge/account-service/internal/constants"
	apperrors "github.com/skillforge/account-service/internal/errors"
	"github.com/skillforge/account-service/internal/service"
	ctxutil "github.com/skillforge/account-service/pkg/context"
	"github.com/skillforge/account-service/pkg/logger"
	"go.uber.org/zap"
)

type JWTMiddleware struct {
	tokenService *service.TokenService
}

func NewJWTMiddleware(tokenService *service.TokenService) *JWTMiddleware {
	return &JWTMiddleware{
		tokenService: tokenService,
	}
}

// RequireAuth gates a route on a valid bearer access token. The check is
// stateless: signature and expiry only, no storage round trip. On success
// the authenticated user id is placed in both the gin context and the
// request context.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			logger.GetLogger().Warn("Missing bearer token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.JSON(apperrors.ToHTTPStatus(apperrors.ErrAuthRequired),
				constants.BuildErrorResponse(apperrors.ErrAuthRequired.Message, nil))
			c.Abort()
			return
		}

		userID, err := m.tokenService.VerifyAccess(tokenString)
		if err != nil {
			logger.GetLogger().Warn("Access token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			c.JSON(apperrors.ToHTTPStatus(apperrors.ErrInvalidAccessToken),
				constants.BuildErrorResponse(apperrors.ErrInvalidAccessToken.Message, nil))
			c.Abort()
			return
		}

		c.Set(string(constants.CtxKeyUserID), userID)
		c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), userID))

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(constants.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != constants.AuthSchemeBearer {
		return ""
	}

	return parts[1]
}

// AuthenticatedUserID reads the user id that RequireAuth stored on the gin
// context. The bool reports whether the route was actually gated.
func AuthenticatedUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(string(constants.CtxKeyUserID))
	if !ok {
		return "", false
	}
	userID, ok := v.(string)
	return userID, ok && userID != ""
}
