package httpapi

import (
	"errors"
	"net/http"

	"user-auth-server/internal/auth"
	"user-auth-server/internal/authflow"
	"user-auth-server/internal/users"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
// Rejections carry the taxonomy kind only, never internal detail.
type Handlers struct {
	Flow  *authflow.Service
	Users *users.Service
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login produces a refresh token that can later be exchanged for an access
// token.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	tok, err := h.Flow.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, authflow.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid login credentials"})
	case errors.Is(err, authflow.ErrEmailUnconfirmed):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "email not confirmed"})
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
	default:
		c.JSON(http.StatusOK, tok)
	}
}

type refreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// Refresh produces an access token based on the refresh token. The user's
// current roles are returned alongside as response metadata.
func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	res, err := h.Flow.Refresh(c.Request.Context(), req.Token)
	switch {
	case errors.Is(err, authflow.ErrInvalidTokenType):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "expected refresh token"})
	case errors.Is(err, authflow.ErrUnknownUser):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "token user not found"})
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"token":   res.Token.Token,
			"expires": res.Token.ExpiresAt,
			"roles":   res.Roles,
		})
	}
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

// SendEmailConfirmation responds 204 regardless of whether the address maps
// to an account, preventing account enumeration via this channel.
func (h Handlers) SendEmailConfirmation(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email required"})
		return
	}

	if err := h.Flow.RequestEmailConfirmation(c.Request.Context(), req.Email); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "confirmation request failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ConfirmEmail confirms the account's email address if the token matches.
func (h Handlers) ConfirmEmail(c *gin.Context) {
	userID := c.Query("userId")
	token := c.Query("token")
	if userID == "" || token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "userId and token required"})
		return
	}

	err := h.Flow.ConfirmEmail(c.Request.Context(), userID, token)
	switch {
	case errors.Is(err, authflow.ErrUnknownUser):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, authflow.ErrAlreadyConfirmed):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email already confirmed"})
	case errors.Is(err, authflow.ErrInvalidConfirmToken):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email confirmation failed"})
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "email confirmation failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
	}
}

// --- Users ---

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func toUserResponse(u users.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Name: u.Name}
}

// RegisterUser creates a new account. Username must be unique.
func (h Handlers) RegisterUser(c *gin.Context) {
	var reg users.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid registration"})
		return
	}

	u, err := h.Users.Register(c.Request.Context(), reg)
	switch {
	case errors.Is(err, users.ErrInvalidArgument), errors.Is(err, users.ErrWeakPassword):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid registration"})
	case errors.Is(err, users.ErrUsernameTaken), errors.Is(err, users.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username or email already in use"})
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
	default:
		c.JSON(http.StatusCreated, toUserResponse(u))
	}
}

func (h Handlers) ListUsers(c *gin.Context) {
	list, err := h.Users.List(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUserResponse(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetUser(c *gin.Context) {
	u, err := h.Users.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, users.ErrNotFound), errors.Is(err, users.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
	default:
		c.JSON(http.StatusOK, toUserResponse(u))
	}
}

// UpdateUser changes the caller's own record. The bearer token's user id
// must match the path id, and the current password must verify.
func (h Handlers) UpdateUser(c *gin.Context) {
	id, ok := h.requireSelf(c)
	if !ok {
		return
	}

	var upd users.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
		return
	}

	err := h.Users.Update(c.Request.Context(), id, upd)
	switch {
	case errors.Is(err, users.ErrWrongPassword):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
	case errors.Is(err, users.ErrWeakPassword):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
	case errors.Is(err, users.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
	default:
		c.Status(http.StatusNoContent)
	}
}

type deleteRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
}

// DeleteUser removes the caller's own record after a password re-check.
func (h Handlers) DeleteUser(c *gin.Context) {
	id, ok := h.requireSelf(c)
	if !ok {
		return
	}

	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "current_password required"})
		return
	}

	err := h.Users.Delete(c.Request.Context(), id, req.CurrentPassword)
	switch {
	case errors.Is(err, users.ErrWrongPassword):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
	case errors.Is(err, users.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
	default:
		c.Status(http.StatusNoContent)
	}
}

// requireSelf ensures the authenticated token's user id matches the path id.
func (h Handlers) requireSelf(c *gin.Context) (string, bool) {
	id := c.Param("id")
	callerID, err := auth.UserID(c.Request.Context())
	if err != nil || callerID != id {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return "", false
	}
	return id, true
}
