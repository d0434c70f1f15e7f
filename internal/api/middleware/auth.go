package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/api/problem"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/users"
	"github.com/rs/zerolog"
)

// TokenVerifier resolves a bearer token to a user ID.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserLoader loads the account behind a verified token.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

type actorKey struct{}

var errAccountGone = errors.New("user for this token no longer exists")

// RequireAuth accepts requests carrying a valid "Bearer" token whose user
// still exists, and stores that user as the request's auth.Actor. Anything
// else is a 401 problem response.
func RequireAuth(tokens TokenVerifier, loader UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				unauthorized(w, r, err)
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				unauthorized(w, r, err)
				return
			}

			user, err := loader.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, users.ErrUserNotFound) {
					unauthorized(w, r, errAccountGone)
					return
				}
				problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server Error", err)
				return
			}

			actor := auth.Actor{ID: user.ID, Role: user.Role}
			LoggerFromContext(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("actor_id", actor.ID)
			})
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="events"`)
	problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthenticated, "Unauthorized", err)
}

// WithActor stores the authenticated actor in ctx.
func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by RequireAuth.
func ActorFromContext(ctx context.Context) (auth.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(auth.Actor)
	return actor, ok
}
