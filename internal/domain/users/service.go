package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/audit"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/errs"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/patch"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/sanitize"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Error values returned by the service that are not storage-level.
var (
	// ErrInvalidCredentials is the same for unknown identifiers and wrong
	// passwords.
	ErrInvalidCredentials     = errs.Unauthenticated("incorrect username or password")
	ErrCurrentPasswordMissing = errs.Field("currentPassword", "is required to update your data")
	ErrCurrentPasswordWrong   = errs.Unauthenticated("current password is incorrect")
	ErrPasswordUnchanged      = errs.Field("newPassword", "must differ from the current password")
	ErrRoleChangeForbidden    = errs.Forbidden("only an admin can change roles")
	ErrInvalidRole            = errs.Field("newRole", "must be 'admin' or 'user'")
	ErrModifyForbidden        = errs.Forbidden("you cannot modify this user")
	ErrDeleteForbidden        = errs.Forbidden("you do not have permission to delete this user")
	ErrNoSecurityQuestion     = errs.Validation("no security question is configured for this account")
	ErrInvalidSecurityAnswer  = errs.Unauthenticated("incorrect user or security answer")
	ErrMissingIdentifier      = errs.Validation("userName or email is required")
)

// CredentialHasher hashes and verifies passwords and security answers.
type CredentialHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// Notifier tells users about security-relevant account changes.
type Notifier interface {
	PasswordChanged(ctx context.Context, email, userName string) error
}

// Service handles registration, login and profile management.
type Service struct {
	repo        Repository
	hasher      CredentialHasher
	tokens      TokenIssuer
	notifier    Notifier
	auditLogger *audit.Logger
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewService creates a new user service instance. notifier and auditLogger may be nil.
func NewService(
	repo Repository,
	hasher CredentialHasher,
	tokens TokenIssuer,
	notifier Notifier,
	auditLogger *audit.Logger,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		notifier:    notifier,
		auditLogger: auditLogger,
		validate:    validation.New(),
		logger:      logger.With().Str("component", "users").Logger(),
	}
}

// RegisterParams contains the fields accepted on registration.
type RegisterParams struct {
	UserName         string `json:"userName" validate:"required,max=50"`
	Email            string `json:"email" validate:"required,emailshape"`
	Password         string `json:"password" validate:"required"`
	SecurityQuestion string `json:"securityQuestion" validate:"required_with=SecurityAnswer,max=200"`
	SecurityAnswer   string `json:"securityAnswer" validate:"required_with=SecurityQuestion"`
}

// LoginParams identifies a user by user name or email.
type LoginParams struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

// UpdateParams is an explicit patch. Credential and identity fields follow the
// "non-empty means change" rule; profile fields use patch.Field so an omitted
// field is left untouched and an explicit null clears it.
type UpdateParams struct {
	CurrentPassword   string `json:"currentPassword"`
	NewUserName       string `json:"newUserName"`
	NewEmail          string `json:"newEmail"`
	NewPassword       string `json:"newPassword"`
	NewRole           string `json:"newRole"`
	SecurityQuestion  string `json:"securityQuestion"`
	NewSecurityAnswer string `json:"newSecurityAnswer"`

	// AvatarURL is set by the transport layer after an upload.
	AvatarURL patch.Field[string] `json:"-"`

	Birthday      patch.Field[string]      `json:"birthday"`
	Bio           patch.Field[string]      `json:"bio"`
	HiddenTalents patch.Field[string]      `json:"hiddenTalents"`
	Hobbies       patch.Field[[]string]    `json:"hobbies"`
	Interests     patch.Field[[]string]    `json:"interests"`
	FavoriteFood  patch.Field[string]      `json:"favoriteFood"`
	SocialMedia   patch.Field[SocialMedia] `json:"socialMedia"`
}

// ResetPasswordParams carries the security-question recovery flow input.
type ResetPasswordParams struct {
	UserName       string `json:"userName"`
	Email          string `json:"email"`
	SecurityAnswer string `json:"securityAnswer"`
	NewPassword    string `json:"newPassword"`
}

// credentialChanges records plaintext credentials that must be hashed right
// before the user is persisted. Nil fields are untouched.
type credentialChanges struct {
	password *string
	answer   *string
}

func (c credentialChanges) empty() bool {
	return c.password == nil && c.answer == nil
}

// apply hashes only the pending credentials into user.
func (s *Service) apply(user *User, changes credentialChanges) error {
	if changes.password != nil {
		hash, err := s.hasher.Hash(*changes.password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if changes.answer != nil {
		hash, err := s.hasher.Hash(*changes.answer)
		if err != nil {
			return fmt.Errorf("hash security answer: %w", err)
		}
		user.SecurityAnswerHash = hash
	}
	return nil
}

// Register creates a user with role "user".
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	params.UserName = strings.TrimSpace(params.UserName)
	params.Email = normalizeEmail(params.Email)
	params.SecurityQuestion = strings.TrimSpace(params.SecurityQuestion)

	if err := s.validate.Struct(params); err != nil {
		return nil, validation.Error(err)
	}

	if err := s.ensureUserNameFree(ctx, params.UserName); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, params.Email); err != nil {
		return nil, err
	}

	user := User{
		UserName:         params.UserName,
		Email:            params.Email,
		Role:             auth.RoleUser,
		SecurityQuestion: params.SecurityQuestion,
	}
	changes := credentialChanges{password: &params.Password}
	if params.SecurityAnswer != "" {
		changes.answer = &params.SecurityAnswer
	}
	if err := s.apply(&user, changes); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("username", created.UserName).Msg("user registered")
	s.auditLogger.LogSuccess("user.registered", created.ID, "user", created.ID, audit.IPAddress(ctx), map[string]string{
		"username": created.UserName,
	})
	return created, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	userName := strings.TrimSpace(params.UserName)
	email := normalizeEmail(params.Email)
	if (userName == "" && email == "") || params.Password == "" {
		return nil, errs.Validation("userName or email and password are required")
	}

	user, err := s.repo.FindByLogin(ctx, userName, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user for login: %w", err)
	}

	if !s.hasher.Verify(params.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

// Update applies params to the user with the given id on behalf of actor.
// Every check runs before the single write.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, params UpdateParams) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !auth.CanModify(actor, user.ID) {
		return nil, ErrModifyForbidden
	}

	if !actor.IsAdmin() {
		if params.CurrentPassword == "" {
			return nil, ErrCurrentPasswordMissing
		}
		if !s.hasher.Verify(params.CurrentPassword, user.PasswordHash) {
			return nil, ErrCurrentPasswordWrong
		}
	}

	updated := *user
	var oldRole auth.Role

	if params.NewRole != "" {
		if !auth.CanChangeRole(actor) {
			return nil, ErrRoleChangeForbidden
		}
		role, err := auth.ParseRole(params.NewRole)
		if err != nil {
			return nil, ErrInvalidRole
		}
		if role != user.Role {
			oldRole = user.Role
			updated.Role = role
		}
	}

	if name := strings.TrimSpace(params.NewUserName); name != "" && name != user.UserName {
		if utf8.RuneCountInString(name) > 50 {
			return nil, errs.Field("newUserName", "must be at most 50 characters")
		}
		if err := s.ensureUserNameFree(ctx, name); err != nil {
			return nil, err
		}
		updated.UserName = name
	}

	if email := normalizeEmail(params.NewEmail); email != "" && email != user.Email {
		if !IsEmail(email) {
			return nil, errs.Field("newEmail", "is not a valid email")
		}
		if err := s.ensureEmailFree(ctx, email); err != nil {
			return nil, err
		}
		updated.Email = email
	}

	var changes credentialChanges
	if params.NewPassword != "" {
		if s.hasher.Verify(params.NewPassword, user.PasswordHash) {
			return nil, ErrPasswordUnchanged
		}
		changes.password = &params.NewPassword
	}

	if question := strings.TrimSpace(params.SecurityQuestion); question != "" {
		updated.SecurityQuestion = question
	}
	if params.NewSecurityAnswer != "" {
		if updated.SecurityQuestion == "" {
			return nil, errs.Field("securityQuestion", "is required with newSecurityAnswer")
		}
		changes.answer = &params.NewSecurityAnswer
	}

	if err := applyProfile(&updated, params); err != nil {
		return nil, err
	}

	if err := s.apply(&updated, changes); err != nil {
		return nil, err
	}

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", saved.ID).
		Str("actor_id", actor.ID).
		Bool("credentials_changed", !changes.empty()).
		Msg("user updated")

	if oldRole != "" {
		s.auditLogger.LogSuccess("user.role_changed", actor.ID, "user", saved.ID, audit.IPAddress(ctx), map[string]string{
			"from": string(oldRole),
			"to":   string(saved.Role),
		})
	}
	return saved, nil
}

// applyProfile copies every present profile field from params into user.
func applyProfile(user *User, params UpdateParams) error {
	if value, ok := params.AvatarURL.Get(); ok {
		user.AvatarURL = value
	}
	if value, ok := params.Birthday.Get(); ok {
		birthday, err := parseBirthday(value)
		if err != nil {
			return err
		}
		user.Birthday = birthday
	}
	if value, ok := params.Bio.Get(); ok {
		bio := sanitize.Text(value)
		if utf8.RuneCountInString(bio) > MaxBioLength {
			return errs.Field("bio", fmt.Sprintf("must be at most %d characters", MaxBioLength))
		}
		user.Bio = bio
	}
	if value, ok := params.HiddenTalents.Get(); ok {
		user.HiddenTalents = sanitize.Text(value)
	}
	if value, ok := params.Hobbies.Get(); ok {
		user.Hobbies = sanitize.TextSlice(value)
	}
	if value, ok := params.Interests.Get(); ok {
		user.Interests = sanitize.TextSlice(value)
	}
	if value, ok := params.FavoriteFood.Get(); ok {
		user.FavoriteFood = sanitize.Text(value)
	}
	if value, ok := params.SocialMedia.Get(); ok {
		user.SocialMedia = SocialMedia{
			Instagram: strings.TrimSpace(value.Instagram),
			Twitter:   strings.TrimSpace(value.Twitter),
			TikTok:    strings.TrimSpace(value.TikTok),
		}
	}
	return nil
}

// GetProfile looks a user up by user name.
func (s *Service) GetProfile(ctx context.Context, userName string) (*User, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, errs.Field("userName", "is required")
	}
	return s.repo.GetByUserName(ctx, userName)
}

// GetByID returns the user with the given id.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes the user with the given id and returns the removed record.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) (*User, error) {
	if !auth.CanModify(actor, id) {
		return nil, ErrDeleteForbidden
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("actor_id", actor.ID).Msg("user deleted")
	s.auditLogger.LogSuccess("user.deleted", actor.ID, "user", user.ID, audit.IPAddress(ctx), map[string]string{
		"username": user.UserName,
		"email":    user.Email,
	})
	return user, nil
}

// SecurityQuestion returns the recovery question of the identified user.
func (s *Service) SecurityQuestion(ctx context.Context, userName, email string) (string, error) {
	user, err := s.findForRecovery(ctx, userName, email)
	if err != nil {
		return "", err
	}
	if user.SecurityQuestion == "" || user.SecurityAnswerHash == "" {
		return "", ErrNoSecurityQuestion
	}
	return user.SecurityQuestion, nil
}

// ResetPassword replaces the password of a user who answers their security
// question correctly.
func (s *Service) ResetPassword(ctx context.Context, params ResetPasswordParams) error {
	if params.SecurityAnswer == "" || params.NewPassword == "" {
		return errs.Validation("securityAnswer and newPassword are required")
	}

	user, err := s.findForRecovery(ctx, params.UserName, params.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidSecurityAnswer
		}
		return err
	}

	if !s.hasher.Verify(params.SecurityAnswer, user.SecurityAnswerHash) {
		s.auditLogger.LogFailure("user.password_reset", user.ID, audit.IPAddress(ctx), map[string]string{
			"reason": "wrong security answer",
		})
		return ErrInvalidSecurityAnswer
	}

	updated := *user
	if err := s.apply(&updated, credentialChanges{password: &params.NewPassword}); err != nil {
		return err
	}
	if _, err := s.repo.Update(ctx, updated); err != nil {
		return err
	}

	s.auditLogger.LogSuccess("user.password_reset", user.ID, "user", user.ID, audit.IPAddress(ctx), nil)
	if s.notifier != nil {
		if err := s.notifier.PasswordChanged(ctx, user.Email, user.UserName); err != nil {
			s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to send password change notice")
		}
	}
	return nil
}

// EnsureAdmin creates an admin account unless a user with the same user name
// or email exists. It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, userName, email, password string) (bool, error) {
	userName = strings.TrimSpace(userName)
	email = normalizeEmail(email)
	if userName == "" || email == "" || password == "" {
		return false, errs.Validation("admin userName, email and password are required")
	}

	if _, err := s.repo.FindByLogin(ctx, userName, email); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, fmt.Errorf("check admin user: %w", err)
	}

	user := User{UserName: userName, Email: email, Role: auth.RoleAdmin}
	if err := s.apply(&user, credentialChanges{password: &password}); err != nil {
		return false, err
	}
	if _, err := s.repo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create admin user: %w", err)
	}
	return true, nil
}

func (s *Service) findForRecovery(ctx context.Context, userName, email string) (*User, error) {
	userName = strings.TrimSpace(userName)
	email = normalizeEmail(email)
	if userName == "" && email == "" {
		return nil, ErrMissingIdentifier
	}
	return s.repo.FindByLogin(ctx, userName, email)
}

func (s *Service) ensureUserNameFree(ctx context.Context, userName string) error {
	_, err := s.repo.GetByUserName(ctx, userName)
	if err == nil {
		return ErrUserNameTaken
	}
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	return fmt.Errorf("check user name: %w", err)
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return ErrEmailTaken
	}
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	return fmt.Errorf("check email: %w", err)
}
