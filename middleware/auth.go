package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"contactbook/models"
	"contactbook/services"
)

const userKey = "user"

// AuthRequired resolves the bearer token into the owning user. The token
// must be well-formed, correctly signed, unexpired, and equal to the user's
// stored active token; the last check makes logout and re-login revoke every
// previously issued token immediately.
func AuthRequired(users services.UserStore, tokens *services.TokenManager, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
			return
		}
		if user.ActiveToken == nil || *user.ActiveToken != tokenString {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user set by AuthRequired. Only call it from
// handlers behind that middleware.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}

// SetCurrentUser injects a user directly, bypassing token checks. Test use
// only.
func SetCurrentUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(userKey, user)
		c.Next()
	}
}
