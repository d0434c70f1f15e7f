package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/api/middleware"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/api/problem"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/errs"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/media"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError is the single place domain errors become HTTP statuses.
// Anything unclassified is a 500 whose cause is only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeTooLarge, "Payload Too Large", err)
		return
	}
	if errors.Is(err, media.ErrUnsupportedType) {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err)
		return
	}

	switch errs.KindOf(err) {
	case errs.KindValidation:
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err)
	case errs.KindUnauthenticated:
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthenticated, "Unauthorized", err)
	case errs.KindForbidden:
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", err)
	case errs.KindNotFound:
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err)
	case errs.KindConflict:
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Conflict", err)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err)
	}
}

var errMalformedJSON = errs.Validation("request body must be valid JSON")

// decodeJSON reads a single JSON object into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("%w: %v", errMalformedJSON, err)
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// multipartMemory is how much of a multipart body is held in memory; the
// rest spills to temporary files.
const multipartMemory = 1 << 20

// formValue returns the first value of key and whether the form sent it.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// saveUpload stores the file sent as field, if any, and returns its URL.
func saveUpload(r *http.Request, store media.Store, field string) (string, bool, error) {
	if store == nil || r.MultipartForm == nil {
		return "", false, nil
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s upload: %w", field, err)
	}
	defer func() { _ = file.Close() }()

	url, err := store.Save(r.Context(), header.Filename, file)
	if err != nil {
		return "", false, fmt.Errorf("save %s upload: %w", field, err)
	}
	return url, true, nil
}

// actor returns the authenticated caller. Routes that need one are behind
// middleware.RequireAuth, so a missing actor is a wiring fault.
func actor(r *http.Request) (auth.Actor, error) {
	a, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return auth.Actor{}, errs.Unauthenticated("authentication required")
	}
	return a, nil
}
