package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/miniblog/miniblog/auth"
	"github.com/miniblog/miniblog/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextUserKey stores the resolved *models.User inside Gin context.
	ContextUserKey = "user"
)

// LoginRequired ensures the request carries a session bound to an existing
// user and exposes that user to downstream handlers.
func LoginRequired(mgr *auth.Manager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session := sessions.Default(ctx)
		user, ok := mgr.CurrentUser(ctx.Request.Context(), session)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "login required")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, user.ID)
		ctx.Set(ContextUsernameKey, user.Username)
		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}
