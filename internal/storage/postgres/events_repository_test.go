package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/events"
	"github.com/stretchr/testify/require"
)

func createTestEvent(t *testing.T, ctx context.Context, repo *Repository, creatorID string, date time.Time) string {
	t.Helper()
	id, err := repo.Events().Create(ctx, events.Event{
		Title:     "Meetup",
		Date:      date,
		Location:  "Madrid",
		CreatedBy: events.UserRef{ID: creatorID},
	})
	require.NoError(t, err)
	return id
}

func TestEventRepositoryProjection(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	ana := insertUser(t, ctx, repo, "ana", auth.RoleAdmin)
	bea := insertUser(t, ctx, repo, "bea", auth.RoleUser)
	date := time.Date(2031, time.January, 2, 18, 30, 0, 0, time.UTC)
	id := createTestEvent(t, ctx, repo, ana.ID, date)
	require.NoError(t, repo.Events().AddAttendee(ctx, id, bea.ID))

	listed, err := repo.Events().GetByID(ctx, id, events.ListProjection)
	require.NoError(t, err)
	require.True(t, date.Equal(listed.Date))
	require.Equal(t, events.UserRef{ID: ana.ID, UserName: "ana", Email: ana.Email, Role: "admin"}, listed.CreatedBy)
	require.Equal(t, []events.UserRef{{ID: bea.ID, UserName: "bea", Email: bea.Email}}, listed.Attendees)

	attendance, err := repo.Events().GetByID(ctx, id, events.AttendanceProjection)
	require.NoError(t, err)
	require.Equal(t, bea.AvatarURL, attendance.Attendees[0].AvatarURL)

	bare, err := repo.Events().GetByID(ctx, id, events.Projection{})
	require.NoError(t, err)
	require.Equal(t, events.UserRef{ID: ana.ID}, bare.CreatedBy)

	_, err = repo.Events().GetByID(ctx, id, events.Projection{Creator: []events.RefField{"password_hash"}})
	require.ErrorIs(t, err, ErrUnknownRefField)
}

func TestEventRepositoryListOrdersByDate(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	ana := insertUser(t, ctx, repo, "ana", auth.RoleUser)
	later := createTestEvent(t, ctx, repo, ana.ID, time.Date(2031, time.June, 1, 10, 0, 0, 0, time.UTC))
	sooner := createTestEvent(t, ctx, repo, ana.ID, time.Date(2031, time.March, 1, 10, 0, 0, 0, time.UTC))

	list, err := repo.Events().List(ctx, events.ListProjection)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, sooner, list[0].ID)
	require.Equal(t, later, list[1].ID)
	require.Empty(t, list[0].Attendees)
}

func TestEventRepositoryAttendanceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	ana := insertUser(t, ctx, repo, "ana", auth.RoleUser)
	bea := insertUser(t, ctx, repo, "bea", auth.RoleUser)
	id := createTestEvent(t, ctx, repo, ana.ID, time.Now().Add(24*time.Hour))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, repo.Events().AddAttendee(ctx, id, bea.ID))
		}()
	}
	wg.Wait()

	event, err := repo.Events().GetByID(ctx, id, events.ListProjection)
	require.NoError(t, err)
	require.Len(t, event.Attendees, 1)

	require.NoError(t, repo.Events().RemoveAttendee(ctx, id, ana.ID))
	event, err = repo.Events().GetByID(ctx, id, events.ListProjection)
	require.NoError(t, err)
	require.Len(t, event.Attendees, 1)

	require.NoError(t, repo.Events().RemoveAttendee(ctx, id, bea.ID))
	event, err = repo.Events().GetByID(ctx, id, events.ListProjection)
	require.NoError(t, err)
	require.Empty(t, event.Attendees)

	require.ErrorIs(t, repo.Events().AddAttendee(ctx, "missing", bea.ID), events.ErrEventNotFound)
	require.ErrorIs(t, repo.Events().RemoveAttendee(ctx, "missing", bea.ID), events.ErrEventNotFound)
}

func TestEventRepositoryDanglingReferences(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	ana := insertUser(t, ctx, repo, "ana", auth.RoleUser)
	id := createTestEvent(t, ctx, repo, ana.ID, time.Now().Add(time.Hour))
	require.NoError(t, repo.Events().AddAttendee(ctx, id, ana.ID))
	require.NoError(t, repo.Users().Delete(ctx, ana.ID))

	event, err := repo.Events().GetByID(ctx, id, events.ListProjection)
	require.NoError(t, err)
	require.Equal(t, events.UserRef{ID: ana.ID}, event.CreatedBy)
	require.Empty(t, event.Attendees)
}

func TestEventRepositoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	ana := insertUser(t, ctx, repo, "ana", auth.RoleUser)
	id := createTestEvent(t, ctx, repo, ana.ID, time.Now().Add(time.Hour))

	event, err := repo.Events().GetByID(ctx, id, events.Projection{})
	require.NoError(t, err)
	event.Title = "Renamed"
	event.ImageURL = "/uploads/cover.png"
	require.NoError(t, repo.Events().Update(ctx, *event))

	got, err := repo.Events().GetByID(ctx, id, events.Projection{})
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Title)
	require.Equal(t, "/uploads/cover.png", got.ImageURL)

	require.NoError(t, repo.Events().AddAttendee(ctx, id, ana.ID))
	require.NoError(t, repo.Events().Delete(ctx, id))
	_, err = repo.Events().GetByID(ctx, id, events.Projection{})
	require.ErrorIs(t, err, events.ErrEventNotFound)
	require.ErrorIs(t, repo.Events().Delete(ctx, id), events.ErrEventNotFound)

	event.ID = "missing"
	require.ErrorIs(t, repo.Events().Update(ctx, *event), events.ErrEventNotFound)
}
