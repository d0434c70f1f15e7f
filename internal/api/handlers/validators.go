package handlers

import (
	"net/http"
	"strings"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/errs"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/ids"
)

// ULIDParam reads a path wildcard that must hold a ULID.
func ULIDParam(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(r.PathValue(name))
	if value == "" {
		return "", errs.Field(name, "is required")
	}
	if err := ids.ValidateULID(value); err != nil {
		return "", errs.Field(name, "must be a valid ULID")
	}
	return ids.Normalize(value), nil
}
