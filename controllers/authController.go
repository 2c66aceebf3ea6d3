package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fixmycity-be/middlewares"
	"fixmycity-be/models"
	"fixmycity-be/notify"
	authUtils "fixmycity-be/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// tokenTTL is the lifetime of both session and password-reset tokens.
const tokenTTL = 30 * time.Minute

// UserStore is the slice of the user repository the auth flows need.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, hash string) error
}

type AuthController struct {
	users           UserStore
	tokens          *authUtils.TokenService
	notifier        notify.Notifier
	frontendBaseURL string
	log             *zap.Logger
}

func NewAuthController(users UserStore, tokens *authUtils.TokenService, notifier notify.Notifier, frontendBaseURL string, log *zap.Logger) *AuthController {
	return &AuthController{
		users:           users,
		tokens:          tokens,
		notifier:        notifier,
		frontendBaseURL: frontendBaseURL,
		log:             log,
	}
}

// Signup registers a new user. Only the bcrypt hash is stored.
func (a *AuthController) Signup(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Name:  input.Name,
		Email: input.Email,
		Role:  models.RoleUser,
	}
	if err := user.SetPassword(input.Password); err != nil {
		a.log.Error("hashing password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := a.users.Create(ctx, &user); err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
			return
		}
		a.log.Error("creating user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	})
}

// Login verifies credentials and issues a 30-minute session token. Unknown
// email and wrong password produce the identical response.
func (a *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := a.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		a.log.Error("looking up user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if !user.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := a.tokens.Issue(authUtils.Claims{Subject: user.Email, Role: user.Role}, tokenTTL)
	if err != nil {
		a.log.Error("issuing token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user_name":    user.Name,
		"user_email":   user.Email,
		"role":         user.Role,
	})
}

// ForgotPassword issues a single-purpose reset token and hands the link to
// the notifier. Unlike login, unknown emails are disclosed here so the UI can
// point the user at signup.
func (a *AuthController) ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := a.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email not registered. Please sign up."})
			return
		}
		a.log.Error("looking up user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	resetToken, err := a.tokens.Issue(authUtils.Claims{
		Subject: user.Email,
		Action:  authUtils.ActionReset,
	}, tokenTTL)
	if err != nil {
		a.log.Error("issuing reset token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	resetURL := a.frontendBaseURL + "/reset-password?token=" + resetToken

	// Best-effort delivery: a dead mail path must not fail the reset flow.
	if err := a.notifier.SendPasswordReset(user.Email, resetURL); err != nil {
		a.log.Warn("password reset notification failed",
			zap.String("email", user.Email), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Password reset link sent to your email.",
		"reset_url": resetURL,
	})
}

// ResetPassword consumes a reset token and overwrites the user's hash. The
// token must carry the reset action and a subject.
func (a *AuthController) ResetPassword(c *gin.Context) {
	var input struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := a.tokens.Verify(input.Token)
	if err != nil || claims.Action != authUtils.ActionReset || claims.Subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	hash, err := authUtils.HashPassword(input.NewPassword)
	if err != nil {
		a.log.Error("hashing password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := a.users.UpdatePassword(ctx, claims.Subject, hash); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		a.log.Error("updating password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// Me returns the authenticated caller's profile.
func (a *AuthController) Me(c *gin.Context) {
	subject, exists := c.Get(middlewares.CtxSubject)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := a.users.FindByEmail(ctx, subject.(string))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		a.log.Error("looking up user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	})
}
