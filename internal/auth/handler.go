package auth

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/apperr"
	"github.com/guestdesk/backend/pkg/response"
)

const msgBadCredentials = "Incorrect username or password"

// LoginRequest is the body for POST /auth/login. JSON and form encodings are accepted;
// remember_me may be sent as a flag or as an OAuth2 scope.
type LoginRequest struct {
	Username   string `json:"username" form:"username" binding:"required"`
	Password   string `json:"password" form:"password" binding:"required"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
	Scope      string `json:"scope" form:"scope"`
}

func (r LoginRequest) remember() bool {
	if r.RememberMe {
		return true
	}
	for _, s := range strings.Fields(r.Scope) {
		if s == "remember_me" {
			return true
		}
	}
	return false
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        models.UserPublic `json:"user"`
}

// ChangePasswordRequest is the body for POST /auth/change-password.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// RegisterRequest is the body for POST /auth/register (admin only).
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=20"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	IsAdmin   bool   `json:"is_admin"`
}

// ResetPasswordRequest is the body for POST /auth/reset-password (admin only).
type ResetPasswordRequest struct {
	Username        string `json:"username" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// EditUserRequest is the body for PUT /auth/user.
type EditUserRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   UserStore
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo UserStore, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()

	user, err := h.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			h.logger.Error("login lookup failed", zap.Error(err))
			response.Internal(c, "failed to log in")
			return
		}
		response.Unauthorized(c, msgBadCredentials)
		return
	}
	if !user.Enabled || !CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, msgBadCredentials)
		return
	}

	if err := h.repo.TouchLastLogin(ctx, user.ID); err != nil {
		h.logger.Warn("update last login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	token, expiresAt, err := h.jwt.Generate(user, req.remember())
	if err != nil {
		h.logger.Error("generate token failed", zap.Int64("user_id", user.ID), zap.Error(err))
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt, User: user.ToPublic()})
}

// Me handles GET /auth/user.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	response.OK(c, claims.Public())
}

// ChangePassword handles POST /auth/change-password.
func (h *Handler) ChangePassword(c *gin.Context) {
	claims, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()

	user, err := h.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		h.fail(c, err, "failed to change password")
		return
	}
	if !CheckPassword(req.OldPassword, user.Password) {
		response.BadRequest(c, "Incorrect password")
		return
	}
	h.setPassword(c, user.ID, req.NewPassword)
}

// EditUser handles PUT /auth/user.
func (h *Handler) EditUser(c *gin.Context) {
	claims, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var req EditUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	err := h.repo.UpdateProfile(c.Request.Context(), claims.UserID,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), strings.TrimSpace(req.Email))
	if err != nil {
		h.fail(c, err, "failed to update user")
		return
	}
	response.OK(c, gin.H{})
}

// Register handles POST /auth/register (admin only).
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if NormalizeUsername(req.Username) == "" {
		response.BadRequest(c, "username must not be blank")
		return
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	user, err := h.repo.Create(c.Request.Context(), CreateUserParams{
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.TrimSpace(req.Email),
		IsAdmin:      req.IsAdmin,
	})
	if err != nil {
		h.fail(c, err, "failed to create user")
		return
	}
	response.Created(c, user.ToPublic())
}

// List handles GET /auth/users (admin only).
func (h *Handler) List(c *gin.Context) {
	users, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to list users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	response.OK(c, users)
}

// ResetPassword handles POST /auth/reset-password (admin only).
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	user, err := h.repo.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		h.fail(c, err, "failed to reset password")
		return
	}
	h.setPassword(c, user.ID, req.NewPassword)
}

func (h *Handler) setPassword(c *gin.Context, userID int64, password string) {
	hash, err := HashPassword(password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	if err := h.repo.UpdatePassword(c.Request.Context(), userID, hash); err != nil {
		h.fail(c, err, "failed to update password")
		return
	}
	response.OK(c, gin.H{})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	if response.FromError(c, err, fallback) {
		h.logger.Error(fallback, zap.Error(err))
	}
}
