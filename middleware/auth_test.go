package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactbook/apperr"
	"contactbook/models"
	"contactbook/services"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func (f *fakeUserStore) Create(context.Context, string, string, string, string) (*models.User, error) {
	panic("not used")
}

func (f *fakeUserStore) GetByEmail(context.Context, string) (*models.User, error) {
	panic("not used")
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("User not found")
}

func (f *fakeUserStore) SetActiveToken(_ context.Context, id string, token *string) error {
	f.users[id].ActiveToken = token
	return nil
}

func (f *fakeUserStore) ConsumeVerificationToken(context.Context, string) (*models.User, error) {
	panic("not used")
}

func (f *fakeUserStore) UpdateAvatar(context.Context, string, string) error {
	panic("not used")
}

func newAuthRouter(users services.UserStore, tokens *services.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", AuthRequired(users, tokens, time.Second), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": CurrentUser(c).Email})
	})
	return r
}

func probe(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredAcceptsActiveToken(t *testing.T) {
	tokens := services.NewTokenManager("secret", time.Hour)
	token, err := tokens.Issue("u1")
	require.NoError(t, err)

	users := &fakeUserStore{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "alice@example.com", ActiveToken: &token},
	}}
	r := newAuthRouter(users, tokens)

	w := probe(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
}

func TestAuthRequiredRejectsMissingOrMalformed(t *testing.T) {
	tokens := services.NewTokenManager("secret", time.Hour)
	users := &fakeUserStore{users: map[string]*models.User{}}
	r := newAuthRouter(users, tokens)

	for _, header := range []string{"", "Basic abc", "Bearer garbage"} {
		w := probe(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthRequiredRejectsExpired(t *testing.T) {
	tokens := services.NewTokenManager("secret", -time.Minute)
	token, err := tokens.Issue("u1")
	require.NoError(t, err)

	users := &fakeUserStore{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "alice@example.com", ActiveToken: &token},
	}}
	r := newAuthRouter(users, tokens)

	w := probe(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsAfterLogout(t *testing.T) {
	tokens := services.NewTokenManager("secret", time.Hour)
	token, err := tokens.Issue("u1")
	require.NoError(t, err)

	users := &fakeUserStore{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "alice@example.com", ActiveToken: &token},
	}}
	r := newAuthRouter(users, tokens)

	require.Equal(t, http.StatusOK, probe(r, "Bearer "+token).Code)

	// Logout clears the stored token; the structurally valid token is now
	// revoked.
	require.NoError(t, users.SetActiveToken(context.Background(), "u1", nil))
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer "+token).Code)
}

func TestAuthRequiredRejectsRotatedToken(t *testing.T) {
	tokens := services.NewTokenManager("secret", time.Hour)
	first, err := tokens.Issue("u1")
	require.NoError(t, err)

	users := &fakeUserStore{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "alice@example.com", ActiveToken: &first},
	}}
	r := newAuthRouter(users, tokens)

	require.Equal(t, http.StatusOK, probe(r, "Bearer "+first).Code)

	// A second login replaces the stored token; the earlier one must stop
	// working even though it is unexpired and correctly signed.
	time.Sleep(time.Second)
	second, err := tokens.Issue("u1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.NoError(t, users.SetActiveToken(context.Background(), "u1", &second))

	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer "+first).Code)
	assert.Equal(t, http.StatusOK, probe(r, "Bearer "+second).Code)
}
