package middlewares

import (
	"strings"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/common/logger"
	"github.com/Mayank561/ECOMMERCE-API/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserID  = "userId"
	ContextIsAdmin = "isAdmin"
)

// TokenValidator checks an access token and returns its claims.
type TokenValidator interface {
	Validate(tokenStr string) (*services.Claims, error)
}

// JWTMiddleware requires a valid "Bearer <token>" Authorization header and
// stores the caller's id and admin flag on the context.
func JWTMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			_ = c.Error(apperrors.Auth("Token is required"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			_ = c.Error(apperrors.Auth("Invalid token format"))
			c.Abort()
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			logger.FromContext(c.Request.Context()).Info("rejected token", zap.Error(err))
			_ = c.Error(apperrors.Auth("Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// RequireAdmin lets only admin callers through. It must run after
// JWTMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			_ = c.Error(apperrors.Forbidden("Access denied"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Caller returns the authenticated caller set by JWTMiddleware.
func Caller(c *gin.Context) (userID string, isAdmin bool) {
	return c.GetString(ContextUserID), c.GetBool(ContextIsAdmin)
}
