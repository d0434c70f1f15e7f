package events

import (
	"context"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/errs"
)

var ErrEventNotFound = errs.NotFound("event not found")

// Repository persists events and their attendee sets.
type Repository interface {
	// List returns every event ordered by date ascending.
	List(ctx context.Context, projection Projection) ([]Event, error)
	GetByID(ctx context.Context, id string, projection Projection) (*Event, error)
	// Create stores event and returns its id.
	Create(ctx context.Context, event Event) (string, error)
	// Update overwrites title, description, date, location and image.
	Update(ctx context.Context, event Event) error
	Delete(ctx context.Context, id string) error
	// AddAttendee and RemoveAttendee are atomic and idempotent. Both return
	// ErrEventNotFound when the event does not exist.
	AddAttendee(ctx context.Context, eventID, userID string) error
	RemoveAttendee(ctx context.Context, eventID, userID string) error
}
