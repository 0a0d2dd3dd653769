package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/miniblog/miniblog/auth"
	"github.com/miniblog/miniblog/middleware"
	"github.com/miniblog/miniblog/models"
	"github.com/miniblog/miniblog/store"
	"github.com/miniblog/miniblog/utils"
)

// AuthController handles registration and session login/logout.
type AuthController struct {
	users store.UserStore
	mgr   *auth.Manager
}

// NewAuthController creates an AuthController.
func NewAuthController(users store.UserStore, mgr *auth.Manager) *AuthController {
	return &AuthController{users: users, mgr: mgr}
}

// Register handles local account registration with bcrypt hashing. It does
// not log the new user in; clients log in with the registered credentials.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	user, err := a.users.Register(ctx.Request.Context(), strings.TrimSpace(req.Username), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrValidation):
			utils.Error(ctx, http.StatusBadRequest, 40002, "username, email and password are required")
		case errors.Is(err, store.ErrDuplicateIdentity):
			utils.Error(ctx, http.StatusConflict, 40901, "username or email already exists")
		default:
			utils.Sugar.Errorf("register failed: %v", err)
			utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		}
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

// Login verifies user credentials and binds the session to the user.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	session := sessions.Default(ctx)
	user, err := a.mgr.Login(ctx.Request.Context(), session, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthFailure) {
			// One generic rejection for unknown user and wrong password alike.
			utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
			return
		}
		utils.Sugar.Errorf("login failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50004, "login failed")
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

// Logout clears the session binding. Safe to call when already anonymous.
func (a *AuthController) Logout(ctx *gin.Context) {
	session := sessions.Default(ctx)
	if err := a.mgr.Logout(session); err != nil {
		utils.Sugar.Errorf("logout failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to clear session")
		return
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user bound to the current session.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "login required")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// currentUser returns the user resolved by the LoginRequired middleware.
func currentUser(ctx *gin.Context) (*models.User, bool) {
	value, exists := ctx.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}
