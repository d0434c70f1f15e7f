package users

import (
	"context"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/errs"
)

var (
	ErrUserNotFound  = errs.NotFound("user not found")
	ErrUserNameTaken = errs.Conflict("user name already exists")
	ErrEmailTaken    = errs.Conflict("email already exists")
)

// Repository persists users. Implementations return ErrUserNotFound for
// missing rows and ErrUserNameTaken / ErrEmailTaken when a unique index
// rejects a write.
type Repository interface {
	Create(ctx context.Context, user User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUserName(ctx context.Context, userName string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// FindByLogin returns the user matching userName or email, preferring
	// the user name match.
	FindByLogin(ctx context.Context, userName, email string) (*User, error)
	Update(ctx context.Context, user User) (*User, error)
	Delete(ctx context.Context, id string) error
}
