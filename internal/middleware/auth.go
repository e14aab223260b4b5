// File: internal/middleware/auth.go
package middleware

import (
	"strings"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
)

// AuthMiddleware verifies the bearer ID token and stores the resolved *session.Session
// on both the gin context and the request context.
func AuthMiddleware(verifier session.Verifier, resolver session.Resolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
			logger.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		ctx := c.Request.Context()
		identity, err := verifier.Verify(ctx, parts[1])
		if err != nil {
			logger.Warn("Token verification failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired token."))
			return
		}

		sess, err := resolver.ResolveSession(ctx, identity)
		if err != nil {
			logger.Warn("Session resolution failed", zap.Error(err), zap.String("uid", identity.UID))
			if _, ok := common.IsAPIError(err); ok {
				common.RespondWithError(c, err)
				return
			}
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Could not resolve session."))
			return
		}

		c.Set(session.GinKey, sess)
		c.Request = c.Request.WithContext(session.WithSession(ctx, sess))

		logger.Debug("Session resolved",
			zap.String("userID", sess.UserID.String()),
			zap.String("kind", string(sess.Kind)),
			zap.String("adminRole", sess.AdminRole),
		)
		c.Next()
	}
}

// RequireStudent rejects sessions that are not students.
func RequireStudent() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromGin(c)
		if sess == nil {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("No session."))
			return
		}
		if sess.IsAdmin() {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("This action is for students."))
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects sessions that are not admins. With roles, the admin must also
// hold one of them; master admins pass every check.
func RequireAdmin(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromGin(c)
		if sess == nil {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("No session."))
			return
		}
		if !sess.IsAdmin() {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("Admin access required."))
			return
		}
		if len(roles) > 0 && !sess.HasRole(roles...) {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("Your admin role cannot perform this action."))
			return
		}
		c.Next()
	}
}
