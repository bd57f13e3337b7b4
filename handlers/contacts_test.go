package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactbook/middleware"
	"contactbook/models"
	"contactbook/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// contactsRouter serves the contact routes with the file store and a fixed
// authenticated user per request owner header-free, via the test middleware.
func contactsRouter(t *testing.T, user *models.User) (*gin.Engine, services.ContactStore) {
	t.Helper()
	store, err := services.NewFileContactStore(filepath.Join(t.TempDir(), "contacts.json"))
	require.NoError(t, err)

	h := &ContactsHandler{Store: store, Log: discardLogger(), Timeout: time.Second}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	cg := r.Group("/contacts", middleware.SetCurrentUser(user))
	cg.GET("", h.List)
	cg.GET("/:id", h.Get)
	cg.POST("", h.Create)
	cg.PUT("/:id", h.Update)
	cg.PATCH("/:id/favorite", h.SetFavorite)
	cg.DELETE("/:id", h.Delete)
	return r, store
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeContact(t *testing.T, w *httptest.ResponseRecorder) models.Contact {
	t.Helper()
	var c models.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	return c
}

var alice = &models.User{ID: "user-alice", Email: "alice@example.com"}

func TestContactsCreateAndGet(t *testing.T) {
	r, _ := contactsRouter(t, alice)

	w := doJSON(r, http.MethodPost, "/contacts", `{"name":"Bob","email":"bob@x.com","phone":"1234567890"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeContact(t, w)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "user-alice", created.Owner)

	w = doJSON(r, http.MethodGet, "/contacts/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodeContact(t, w))
}

func TestContactsCreateValidation(t *testing.T) {
	r, _ := contactsRouter(t, alice)

	cases := []string{
		`{}`,
		`{"name":"Bob","email":"bob@x.com"}`,
		`{"name":"Bob","email":"not-an-email","phone":"1234567890"}`,
		`{"name":"Bob","email":"bob@x.com","phone":"123"}`,
		`{"name":"Bob","email":"bob@x.com","phone":"12345678ab"}`,
	}
	for _, body := range cases {
		w := doJSON(r, http.MethodPost, "/contacts", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestContactsListScopedToOwner(t *testing.T) {
	r, store := contactsRouter(t, alice)

	w := doJSON(r, http.MethodPost, "/contacts", `{"name":"Bob","email":"bob@x.com","phone":"1234567890"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// Another owner's contact must not leak into alice's list.
	_, err := store.Create(context.Background(), "user-bob", services.ContactInput{Name: "Eve", Email: "eve@x.com", Phone: "0987654321"})
	require.NoError(t, err)

	w = doJSON(r, http.MethodGet, "/contacts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Bob", list[0].Name)
}

func TestContactsCrossOwnerLookupIsNotFound(t *testing.T) {
	r, store := contactsRouter(t, alice)

	other, err := store.Create(context.Background(), "user-bob", services.ContactInput{Name: "Eve", Email: "eve@x.com", Phone: "0987654321"})
	require.NoError(t, err)

	for _, probe := range []struct{ method, path, body string }{
		{http.MethodGet, "/contacts/" + other.ID, ""},
		{http.MethodPut, "/contacts/" + other.ID, `{"name":"Hijack"}`},
		{http.MethodPatch, "/contacts/" + other.ID + "/favorite", `{"favorite":true}`},
		{http.MethodDelete, "/contacts/" + other.ID, ""},
	} {
		w := doJSON(r, probe.method, probe.path, probe.body)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", probe.method, probe.path)
	}
}

func TestContactsUpdateEmptyBodyRejected(t *testing.T) {
	r, _ := contactsRouter(t, alice)

	w := doJSON(r, http.MethodPost, "/contacts", `{"name":"Bob","email":"bob@x.com","phone":"1234567890"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeContact(t, w)

	w = doJSON(r, http.MethodPut, "/contacts/"+created.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The stored record is unchanged.
	w = doJSON(r, http.MethodGet, "/contacts/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodeContact(t, w))
}

func TestContactsUpdatePartial(t *testing.T) {
	r, _ := contactsRouter(t, alice)

	w := doJSON(r, http.MethodPost, "/contacts", `{"name":"Bob","email":"bob@x.com","phone":"1234567890"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeContact(t, w)

	w = doJSON(r, http.MethodPut, "/contacts/"+created.ID, `{"phone":"5550001111"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeContact(t, w)
	assert.Equal(t, "5550001111", updated.Phone)
	assert.Equal(t, "Bob", updated.Name)
	assert.Equal(t, "bob@x.com", updated.Email)
}

func TestContactsFavoriteToggle(t *testing.T) {
	r, _ := contactsRouter(t, alice)

	w := doJSON(r, http.MethodPost, "/contacts", `{"name":"Bob","email":"bob@x.com","phone":"1234567890"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeContact(t, w)

	path := fmt.Sprintf("/contacts/%s/favorite", created.ID)

	w = doJSON(r, http.MethodPatch, path, `{"favorite":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeContact(t, w).Favorite)

	w = doJSON(r, http.MethodPatch, path, `{"favorite":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeContact(t, w).Favorite)

	// Missing favorite field is a validation error, not a silent false.
	w = doJSON(r, http.MethodPatch, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactsDelete(t *testing.T) {
	r, _ := contactsRouter(t, alice)

	w := doJSON(r, http.MethodPost, "/contacts", `{"name":"Bob","email":"bob@x.com","phone":"1234567890"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeContact(t, w)

	w = doJSON(r, http.MethodDelete, "/contacts/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodeContact(t, w))

	w = doJSON(r, http.MethodDelete, "/contacts/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
