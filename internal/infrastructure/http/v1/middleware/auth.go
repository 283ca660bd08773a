package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/appctx"
	"liquorpos/internal/domain/auth"
)

// Auth middleware verifies the bearer token and installs the actor into
// the request context.
func Auth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			_ = c.Error(apperror.NewUnauthorized("missing authorization header"))
			c.Abort()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			_ = c.Error(apperror.NewUnauthorized("authorization header must be a bearer token"))
			c.Abort()
			return
		}

		claims, err := authService.VerifyToken(token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		ctx := appctx.WithActor(c.Request.Context(), appctx.Actor{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole rejects requests whose actor does not carry one of the
// allowed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		actor := appctx.GetActor(c.Request.Context())
		if !allowed[actor.Role] {
			_ = c.Error(apperror.NewForbidden("insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}
