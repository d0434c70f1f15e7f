package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader map[string]*users.User

func (s stubLoader) GetByID(_ context.Context, id string) (*users.User, error) {
	if id == "explode" {
		return nil, errors.New("connection reset")
	}
	user, ok := s[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return user, nil
}

func authFixture(t *testing.T) (*auth.TokenIssuer, http.Handler, *auth.Actor) {
	t.Helper()
	issuer := auth.NewTokenIssuer("test-secret", time.Hour, "events-test")
	loader := stubLoader{"u1": {ID: "u1", UserName: "ana", Role: auth.RoleAdmin}}

	seen := &auth.Actor{}
	handler := RequireAuth(issuer, loader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		*seen = actor
		w.WriteHeader(http.StatusNoContent)
	}))
	return issuer, handler, seen
}

func TestRequireAuth_ValidToken(t *testing.T) {
	issuer, handler, seen := authFixture(t)
	token, _, err := issuer.Issue("u1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/ana", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, auth.Actor{ID: "u1", Role: auth.RoleAdmin}, *seen)
}

func TestRequireAuth_Rejections(t *testing.T) {
	issuer, handler, _ := authFixture(t)
	goneToken, _, err := issuer.Issue("deleted-user")
	require.NoError(t, err)
	otherIssuer := auth.NewTokenIssuer("another-secret", time.Hour, "events-test")
	forged, _, err := otherIssuer.Issue("u1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong signature", "Bearer " + forged},
		{"deleted user", "Bearer " + goneToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/ana", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestRequireAuth_LoaderFailureIs500(t *testing.T) {
	issuer, handler, _ := authFixture(t)
	token, _, err := issuer.Issue("explode")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestActorFromContext_Missing(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)
}
