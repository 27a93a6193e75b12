package middleware

import (
	"hrm_backend/internal/model"
	"hrm_backend/internal/util"
	"hrm_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the bearer token issued by the auth service and
// stores its claims under "user". The token query parameter is accepted for
// websocket clients that cannot set headers.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			logger.Log.Debug("JWT rejected", zap.String("path", c.FullPath()), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if claims.UserID == 0 || claims.Role == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Set("token", tokenString)
		c.Next()
	}
}

// RoleMiddleware lets through the listed roles. admin passes every check.
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := user.Role == model.RoleAdmin
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.RespondError(c, util.ErrPermissionDenied)
			c.Abort()
			return
		}
		c.Next()
	}
}

// HRAdminOnly gates routes that manage the catalog.
func HRAdminOnly() gin.HandlerFunc {
	return RoleMiddleware(model.RoleHRAdmin)
}
