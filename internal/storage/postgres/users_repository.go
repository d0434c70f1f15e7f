package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/ids"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `
id, user_name, email, password_hash, role, security_question, security_answer_hash,
avatar_url, birthday, bio, hidden_talents, hobbies, interests, favorite_food,
social_media, created_at, updated_at`

func (r *UserRepository) queryer() queryer {
	return r.pool
}

func (r *UserRepository) Create(ctx context.Context, user users.User) (*users.User, error) {
	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}
	social, err := json.Marshal(user.SocialMedia)
	if err != nil {
		return nil, fmt.Errorf("encode social media: %w", err)
	}

	row := r.queryer().QueryRow(ctx, `
INSERT INTO users (
    id, user_name, email, password_hash, role, security_question, security_answer_hash,
    avatar_url, birthday, bio, hidden_talents, hobbies, interests, favorite_food, social_media
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING `+userColumns,
		id,
		user.UserName,
		user.Email,
		user.PasswordHash,
		string(roleOrDefault(user.Role)),
		user.SecurityQuestion,
		user.SecurityAnswerHash,
		user.AvatarURL,
		user.Birthday,
		user.Bio,
		user.HiddenTalents,
		nonNil(user.Hobbies),
		nonNil(user.Interests),
		user.FavoriteFood,
		social,
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", mapUserWriteError(err))
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (*users.User, error) {
	return r.getOne(ctx, "user_name = $1", userName)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *UserRepository) FindByLogin(ctx context.Context, userName, email string) (*users.User, error) {
	if userName == "" && email == "" {
		return nil, users.ErrUserNotFound
	}
	row := r.queryer().QueryRow(ctx, `
SELECT `+userColumns+`
  FROM users
 WHERE ($1 <> '' AND user_name = $1)
    OR ($2 <> '' AND email = $2)
 ORDER BY (user_name = $1) DESC
 LIMIT 1`, userName, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user for login: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user users.User) (*users.User, error) {
	social, err := json.Marshal(user.SocialMedia)
	if err != nil {
		return nil, fmt.Errorf("encode social media: %w", err)
	}

	row := r.queryer().QueryRow(ctx, `
UPDATE users
   SET user_name = $2,
       email = $3,
       password_hash = $4,
       role = $5,
       security_question = $6,
       security_answer_hash = $7,
       avatar_url = $8,
       birthday = $9,
       bio = $10,
       hidden_talents = $11,
       hobbies = $12,
       interests = $13,
       favorite_food = $14,
       social_media = $15,
       updated_at = now()
 WHERE id = $1
RETURNING `+userColumns,
		user.ID,
		user.UserName,
		user.Email,
		user.PasswordHash,
		string(roleOrDefault(user.Role)),
		user.SecurityQuestion,
		user.SecurityAnswerHash,
		user.AvatarURL,
		user.Birthday,
		user.Bio,
		user.HiddenTalents,
		nonNil(user.Hobbies),
		nonNil(user.Interests),
		user.FavoriteFood,
		social,
	)
	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", mapUserWriteError(err))
	}
	return updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg string) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var (
		user     users.User
		role     string
		birthday *time.Time
		social   []byte
	)
	if err := row.Scan(
		&user.ID,
		&user.UserName,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.SecurityQuestion,
		&user.SecurityAnswerHash,
		&user.AvatarURL,
		&birthday,
		&user.Bio,
		&user.HiddenTalents,
		&user.Hobbies,
		&user.Interests,
		&user.FavoriteFood,
		&social,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Role = auth.NormalizeRole(role)
	if birthday != nil {
		utc := birthday.UTC()
		user.Birthday = &utc
	}
	if len(social) > 0 {
		if err := json.Unmarshal(social, &user.SocialMedia); err != nil {
			return nil, fmt.Errorf("decode social media: %w", err)
		}
	}
	return &user, nil
}

// mapUserWriteError turns unique index violations into domain conflicts.
func mapUserWriteError(err error) error {
	pgErr, ok := pgError(err, codeUniqueViolation)
	if !ok {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_user_name_key":
		return users.ErrUserNameTaken
	case "users_email_key":
		return users.ErrEmailTaken
	default:
		return err
	}
}

func roleOrDefault(role auth.Role) auth.Role {
	if role == "" {
		return auth.RoleUser
	}
	return role
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
