package handlers

import (
	"crypto/md5"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"contactbook/apperr"
	"contactbook/middleware"
	"contactbook/services"
)

type AuthHandler struct {
	Users   services.UserStore
	Tokens  *services.TokenManager
	Mailer  services.Mailer
	Avatars *services.AvatarService
	Log     *slog.Logger
	Timeout time.Duration
}

type authInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input authInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Write(c, h.Log, apperr.Validation(err.Error()))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	verificationToken := uuid.NewString()

	ctx, cancel := storeCtx(h.Timeout)
	defer cancel()

	user, err := h.Users.Create(ctx, email, string(hash), gravatarURL(email), verificationToken)
	if err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	h.dispatchVerification(user.Email, verificationToken)

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"email":        user.Email,
			"subscription": user.Subscription,
			"avatarURL":    user.AvatarURL,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input authInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Write(c, h.Log, apperr.Validation(err.Error()))
		return
	}

	ctx, cancel := storeCtx(h.Timeout)
	defer cancel()

	// Unknown email and bad password answer identically.
	user, err := h.Users.GetByEmail(ctx, input.Email)
	if apperr.IsNotFound(err) {
		apperr.Write(c, h.Log, apperr.Unauthorized("Email or password is wrong"))
		return
	}
	if err != nil {
		apperr.Write(c, h.Log, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		apperr.Write(c, h.Log, apperr.Unauthorized("Email or password is wrong"))
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	// Storing the issued token invalidates any previously issued one.
	if err := h.Users.SetActiveToken(ctx, user.ID, &token); err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"email":        user.Email,
			"subscription": user.Subscription,
		},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)

	ctx, cancel := storeCtx(h.Timeout)
	defer cancel()

	if err := h.Users.SetActiveToken(ctx, user.ID, nil); err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Current(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"email":        user.Email,
		"subscription": user.Subscription,
	})
}

func (h *AuthHandler) Verify(c *gin.Context) {
	ctx, cancel := storeCtx(h.Timeout)
	defer cancel()

	// The atomic consume doubles as the "already used" check: a spent token
	// no longer matches any user.
	if _, err := h.Users.ConsumeVerificationToken(ctx, c.Param("token")); err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification successful"})
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Write(c, h.Log, apperr.Validation(err.Error()))
		return
	}

	ctx, cancel := storeCtx(h.Timeout)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, input.Email)
	if err != nil {
		apperr.Write(c, h.Log, err)
		return
	}
	if user.Verified || user.VerificationToken == nil {
		apperr.Write(c, h.Log, apperr.Validation("Verification has already been passed"))
		return
	}

	h.dispatchVerification(user.Email, *user.VerificationToken)

	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
}

func (h *AuthHandler) UpdateAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		apperr.Write(c, h.Log, apperr.Validation("Avatar file is required"))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		apperr.Write(c, h.Log, apperr.Validation("Please, upload image only"))
		return
	}

	user := middleware.CurrentUser(c)
	tmpPath := h.Avatars.TempPath(user.ID, "."+strings.TrimPrefix(contentType, "image/"))
	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		apperr.Write(c, h.Log, fmt.Errorf("saving avatar upload: %w", err))
		return
	}

	avatarURL, err := h.Avatars.Ingest(tmpPath, user.ID)
	if err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	ctx, cancel := storeCtx(h.Timeout)
	defer cancel()

	if err := h.Users.UpdateAvatar(ctx, user.ID, avatarURL); err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatarURL": avatarURL})
}

// dispatchVerification sends the verification email without blocking the
// request; failure to send is logged, never fatal.
func (h *AuthHandler) dispatchVerification(email, token string) {
	go func() {
		if err := h.Mailer.SendVerification(email, token); err != nil {
			h.Log.Warn("verification email failed", "email", email, "err", err)
		}
	}()
}

// gravatarURL derives the deterministic default avatar from the normalized
// email, matching gravatar's identicon-style fallback.
func gravatarURL(email string) string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://gravatar.com/avatar/%x.jpg?d=retro", hash)
}
