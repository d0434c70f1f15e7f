package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, res *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var body ProblemDetails
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestWriteClientErrorCarriesMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/users/register", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusConflict, TypeConflict, "Conflict", errors.New("email already exists"))

	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
	require.Equal(t, http.StatusConflict, res.Code)
	body := decode(t, res)
	require.Equal(t, "email already exists", body.Detail)
	require.Equal(t, "email already exists", body.Message)
	require.Equal(t, "/api/v1/users/register", body.Instance)
	require.Equal(t, TypeConflict, body.Type)
}

func TestWriteServerErrorHidesCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/events", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusInternalServerError, TypeServerError, "Server error", errors.New("pq: connection refused"))

	body := decode(t, res)
	require.Equal(t, http.StatusText(http.StatusInternalServerError), body.Detail)
	require.Equal(t, body.Detail, body.Message)
}

func TestWriteExplicitDetailWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/x", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusTooManyRequests, TypeRateLimited, "Too many requests", nil,
		WithDetail("slow down"), WithInstance("/custom"))

	body := decode(t, res)
	require.Equal(t, "slow down", body.Message)
	require.Equal(t, "/custom", body.Instance)
}
