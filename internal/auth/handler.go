// File: internal/auth/handler.go
package auth

import (
	"net/http"

	"campus_desk_backend/internal/common"
	"campus_desk_backend/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type routeBinding struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// Handler serves the session endpoints. Sign-in itself happens against the identity
// provider on the client; the API only sees the resulting ID token.
type Handler struct {
	verifier session.Verifier
	logger   *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(verifier session.Verifier, logger *zap.Logger) *Handler {
	return &Handler{
		verifier: verifier,
		logger:   logger,
	}
}

// RegisterRoutes mounts the auth routes on a group that already runs AuthMiddleware.
func (h *Handler) RegisterRoutes(signedIn *gin.RouterGroup) {
	for _, b := range []routeBinding{
		{http.MethodGet, "/auth/session", h.getSession},
		{http.MethodPost, "/auth/sign-out", h.signOut},
	} {
		signedIn.Handle(b.method, b.path, b.handler)
	}
}

func (h *Handler) getSession(c *gin.Context) {
	sess := session.FromGin(c)
	if sess == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	common.RespondOK(c, "Session resolved.", ToSessionResponse(sess))
}

func (h *Handler) signOut(c *gin.Context) {
	sess := session.FromGin(c)
	if sess == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	if err := h.verifier.SignOut(c.Request.Context(), sess.FirebaseUID); err != nil {
		h.logger.Error("Sign-out failed", zap.Error(err), zap.String("userID", sess.UserID.String()))
		common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("Could not revoke session."))
		return
	}
	common.RespondOK(c, "Signed out.", nil)
}
