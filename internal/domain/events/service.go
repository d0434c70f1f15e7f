package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/errs"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/patch"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/sanitize"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var (
	ErrEditForbidden   = errs.Forbidden("you do not have permission to edit this event")
	ErrDeleteForbidden = errs.Forbidden("you do not have permission to delete this event")
)

type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
	logger   zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validation.New(),
		now:      time.Now,
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

// WithClock replaces the time source used for the future-date check.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateParams are the fields accepted when creating an event.
type CreateParams struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Location    string `json:"location" validate:"required,max=300"`

	// ImageURL is set by the transport layer after an upload.
	ImageURL string `json:"-"`
}

// UpdateParams replaces only the fields that are present. A date without a
// time keeps the stored time of day; a time without a date keeps the stored
// calendar date.
type UpdateParams struct {
	Title       patch.Field[string] `json:"title"`
	Description patch.Field[string] `json:"description"`
	Location    patch.Field[string] `json:"location"`
	Date        patch.Field[string] `json:"date"`
	Time        patch.Field[string] `json:"time"`

	ImageURL patch.Field[string] `json:"-"`
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx, ListProjection)
}

func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetByID(ctx, id, ListProjection)
}

// Create stores a new event owned by actor. The composed instant must lie
// strictly after the current time.
func (s *Service) Create(ctx context.Context, actor auth.Actor, params CreateParams) (*Event, error) {
	params.Title = sanitize.Text(params.Title)
	params.Description = sanitize.Text(params.Description)
	params.Location = sanitize.Text(params.Location)

	if err := s.validate.Struct(params); err != nil {
		return nil, validation.Error(err)
	}

	date, err := ComposeInstant(params.Date, params.Time)
	if err != nil {
		return nil, err
	}
	if !date.After(s.now()) {
		return nil, ErrDateNotFuture
	}

	id, err := s.repo.Create(ctx, Event{
		Title:       params.Title,
		Description: params.Description,
		Date:        date,
		Location:    params.Location,
		ImageURL:    params.ImageURL,
		CreatedBy:   UserRef{ID: actor.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().Str("event_id", id).Str("actor_id", actor.ID).Time("date", date).Msg("event created")
	return s.repo.GetByID(ctx, id, ListProjection)
}

// Update changes an event on behalf of its creator or an admin. The date is
// re-parsed but not required to be in the future.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, params UpdateParams) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id, Projection{})
	if err != nil {
		return nil, err
	}

	if !auth.CanModify(actor, event.CreatedBy.ID) {
		return nil, ErrEditForbidden
	}

	updated := *event

	if value, ok := params.Title.Get(); ok {
		title := sanitize.Text(value)
		if title == "" {
			return nil, errs.Field("title", "must not be empty")
		}
		if err := s.validate.Var(title, "max=200"); err != nil {
			return nil, errs.Field("title", "must be at most 200 characters")
		}
		updated.Title = title
	}
	if value, ok := params.Description.Get(); ok {
		updated.Description = sanitize.Text(value)
	}
	if value, ok := params.Location.Get(); ok {
		location := sanitize.Text(value)
		if location == "" {
			return nil, errs.Field("location", "must not be empty")
		}
		updated.Location = location
	}
	if value, ok := params.ImageURL.Get(); ok {
		updated.ImageURL = value
	}

	date, dateSet := params.Date.Get()
	clock, clockSet := params.Time.Get()
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if (dateSet && date != "") || (clockSet && clock != "") {
		if date == "" {
			date = dateOf(event.Date)
		}
		if clock == "" {
			clock = clockOf(event.Date)
		}
		instant, err := ComposeInstant(date, clock)
		if err != nil {
			return nil, err
		}
		updated.Date = instant
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info().Str("event_id", id).Str("actor_id", actor.ID).Msg("event updated")
	return s.repo.GetByID(ctx, id, ListProjection)
}

// Delete removes an event on behalf of its creator or an admin.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	event, err := s.repo.GetByID(ctx, id, Projection{})
	if err != nil {
		return err
	}

	if !auth.CanModify(actor, event.CreatedBy.ID) {
		return ErrDeleteForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("event_id", id).Str("actor_id", actor.ID).Msg("event deleted")
	return nil
}

// Attend adds actor to the attendee set. Attending twice has no effect.
func (s *Service) Attend(ctx context.Context, actor auth.Actor, id string) (*Event, error) {
	if err := s.repo.AddAttendee(ctx, id, actor.ID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id, AttendanceProjection)
}

// Unattend removes actor from the attendee set. Removing a non-attendee has
// no effect.
func (s *Service) Unattend(ctx context.Context, actor auth.Actor, id string) (*Event, error) {
	if err := s.repo.RemoveAttendee(ctx, id, actor.ID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id, AttendanceProjection)
}
