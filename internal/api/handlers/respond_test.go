package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/errs"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorMapsKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", errs.Field("title", "is required"), http.StatusBadRequest},
		{"unauthenticated", errs.Unauthenticated("invalid credentials"), http.StatusUnauthorized},
		{"forbidden", errs.Forbidden("not allowed"), http.StatusForbidden},
		{"not found", errs.NotFound("event not found"), http.StatusNotFound},
		{"conflict", errs.Conflict("userName already exists"), http.StatusConflict},
		{"wrapped", fmt.Errorf("update: %w", errs.NotFound("user not found")), http.StatusNotFound},
		{"unsupported upload", fmt.Errorf("save: %w", media.ErrUnsupportedType), http.StatusBadRequest},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
			rec := httptest.NewRecorder()

			writeError(rec, req, tt.err)

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			body := decodeBody(t, rec)
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()

	writeError(rec, req, errors.New("pq: password authentication failed for user events"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password authentication")
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), decodeBody(t, rec)["message"])
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Meetup"}`))
	require.NoError(t, decodeJSON(req, &dst))
	assert.Equal(t, "Meetup", dst.Title)

	empty := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, decodeJSON(empty, &dst))

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	err := decodeJSON(bad, &dst)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestDecodeJSONPassesThroughMaxBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"`+strings.Repeat("x", 64)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	var dst map[string]any
	err := decodeJSON(req, &dst)

	var maxErr *http.MaxBytesError
	require.ErrorAs(t, err, &maxErr)
}

func TestULIDParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", strings.ToLower(testEventID))
	id, err := ULIDParam(req, "id")
	require.NoError(t, err)
	assert.Equal(t, testEventID, id)

	req.SetPathValue("id", "not-a-ulid")
	_, err = ULIDParam(req, "id")
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	req.SetPathValue("id", " ")
	_, err = ULIDParam(req, "id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is required")
}
