package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/events"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/ids"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

// ErrUnknownRefField is returned for projection fields outside the safelist.
var ErrUnknownRefField = errors.New("unknown reference field")

// refColumns is the only mapping from projectable user fields to columns.
// Credential columns are never listed here.
var refColumns = map[events.RefField]string{
	events.RefUserName:  "user_name",
	events.RefEmail:     "email",
	events.RefRole:      "role",
	events.RefAvatarURL: "avatar_url",
}

func (r *EventRepository) queryer() queryer {
	return r.pool
}

// refObject builds a json_build_object expression for alias. The id is
// taken from idExpr so dangling references still carry it.
func refObject(alias, idExpr string, fields []events.RefField) (string, error) {
	parts := []string{"'id', " + idExpr}
	seen := map[events.RefField]bool{}
	for _, field := range fields {
		column, ok := refColumns[field]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownRefField, field)
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		parts = append(parts, fmt.Sprintf("'%s', %s.%s", field, alias, column))
	}
	return "json_build_object(" + strings.Join(parts, ", ") + ")", nil
}

func selectEvents(projection events.Projection, where string) (string, error) {
	creator, err := refObject("c", "e.created_by", projection.Creator)
	if err != nil {
		return "", err
	}
	attendee, err := refObject("u", "u.id", projection.Attendees)
	if err != nil {
		return "", err
	}

	return `
SELECT e.id, e.title, e.description, e.date, e.location, e.image_url,
       e.created_at, e.updated_at,
       ` + creator + ` AS creator,
       COALESCE((
           SELECT json_agg(` + attendee + ` ORDER BY a.joined_at, a.user_id)
             FROM event_attendees a
             JOIN users u ON u.id = a.user_id
            WHERE a.event_id = e.id
       ), '[]'::json) AS attendees
  FROM events e
  LEFT JOIN users c ON c.id = e.created_by
` + where, nil
}

func (r *EventRepository) List(ctx context.Context, projection events.Projection) ([]events.Event, error) {
	query, err := selectEvents(projection, "ORDER BY e.date ASC, e.id ASC")
	if err != nil {
		return nil, err
	}

	rows, err := r.queryer().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	list := []events.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		list = append(list, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return list, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string, projection events.Projection) (*events.Event, error) {
	query, err := selectEvents(projection, "WHERE e.id = $1")
	if err != nil {
		return nil, err
	}

	event, err := scanEvent(r.queryer().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Create(ctx context.Context, event events.Event) (string, error) {
	id, err := ids.NewULID()
	if err != nil {
		return "", fmt.Errorf("generate event id: %w", err)
	}

	_, err = r.queryer().Exec(ctx, `
INSERT INTO events (id, title, description, date, location, image_url, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id,
		event.Title,
		event.Description,
		event.Date.UTC(),
		event.Location,
		event.ImageURL,
		event.CreatedBy.ID,
	)
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return id, nil
}

func (r *EventRepository) Update(ctx context.Context, event events.Event) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET title = $2,
       description = $3,
       date = $4,
       location = $5,
       image_url = $6,
       updated_at = now()
 WHERE id = $1`,
		event.ID,
		event.Title,
		event.Description,
		event.Date.UTC(),
		event.Location,
		event.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrEventNotFound
	}
	return nil
}

// AddAttendee inserts into the join table; the composite primary key makes
// a repeated attend a no-op. A missing event surfaces as a foreign key
// violation.
func (r *EventRepository) AddAttendee(ctx context.Context, eventID, userID string) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO event_attendees (event_id, user_id)
VALUES ($1, $2)
ON CONFLICT (event_id, user_id) DO NOTHING`, eventID, userID)
	if err != nil {
		if _, ok := pgError(err, codeForeignKeyViolation); ok {
			return events.ErrEventNotFound
		}
		return fmt.Errorf("add attendee: %w", err)
	}
	return nil
}

func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	var exists bool
	err := r.queryer().QueryRow(ctx, `
WITH removed AS (
    DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2
)
SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("remove attendee: %w", err)
	}
	if !exists {
		return events.ErrEventNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var (
		event     events.Event
		creator   []byte
		attendees []byte
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.ImageURL,
		&event.CreatedAt,
		&event.UpdatedAt,
		&creator,
		&attendees,
	); err != nil {
		return nil, err
	}
	event.Date = event.Date.UTC()
	if err := json.Unmarshal(creator, &event.CreatedBy); err != nil {
		return nil, fmt.Errorf("decode creator: %w", err)
	}
	if err := json.Unmarshal(attendees, &event.Attendees); err != nil {
		return nil, fmt.Errorf("decode attendees: %w", err)
	}
	if event.Attendees == nil {
		event.Attendees = []events.UserRef{}
	}
	return &event, nil
}
