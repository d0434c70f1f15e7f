package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/errs"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/ids"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/patch"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/users"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/media"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/metrics"
)

// UserService is the part of users.Service the HTTP layer calls.
type UserService interface {
	Register(ctx context.Context, params users.RegisterParams) (*users.User, error)
	Login(ctx context.Context, params users.LoginParams) (*users.LoginResult, error)
	Update(ctx context.Context, actor auth.Actor, id string, params users.UpdateParams) (*users.User, error)
	GetProfile(ctx context.Context, userName string) (*users.User, error)
	Delete(ctx context.Context, actor auth.Actor, id string) (*users.User, error)
	SecurityQuestion(ctx context.Context, userName, email string) (string, error)
	ResetPassword(ctx context.Context, params users.ResetPasswordParams) error
}

type UsersHandler struct {
	Service UserService
	Media   media.Store
	BaseURL string
}

func NewUsersHandler(service UserService, store media.Store, baseURL string) *UsersHandler {
	return &UsersHandler{Service: service, Media: store, BaseURL: baseURL}
}

type loginUser struct {
	ID       string    `json:"id"`
	UserName string    `json:"userName"`
	Email    string    `json:"email"`
	Role     auth.Role `json:"role"`
}

type loginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      loginUser `json:"user"`
}

type userResponse struct {
	Message string        `json:"message"`
	User    users.Profile `json:"user"`
}

type securityQuestionResponse struct {
	SecurityQuestion string `json:"securityQuestion"`
}

type identifierRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var params users.RegisterParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.Register(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	metrics.UserRegistrations.Inc()

	if location, err := ids.ResourceURL(h.BaseURL, "api/v1/users", user.ID); err == nil {
		w.Header().Set("Location", location)
	}
	writeJSON(w, http.StatusCreated, userResponse{Message: "user registered", User: user.Profile()})
}

func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var params users.LoginParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.Service.Login(r.Context(), params)
	if err != nil {
		if errs.KindOf(err) == errs.KindUnauthenticated {
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
		}
		writeError(w, r, err)
		return
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	writeJSON(w, http.StatusOK, loginResponse{
		Message:   "login successful",
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User: loginUser{
			ID:       result.User.ID,
			UserName: result.User.UserName,
			Email:    result.User.Email,
			Role:     result.User.Role,
		},
	})
}

func (h *UsersHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req identifierRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	question, err := h.Service.SecurityQuestion(r.Context(), req.UserName, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, securityQuestionResponse{SecurityQuestion: question})
}

func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var params users.ResetPasswordParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Service.ResetPassword(r.Context(), params); err != nil {
		metrics.PasswordResets.WithLabelValues("failure").Inc()
		writeError(w, r, err)
		return
	}
	metrics.PasswordResets.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

// Profile serves GET on the shared /users/{id} route, where the segment is
// a user name.
func (h *UsersHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if _, err := actor(r); err != nil {
		writeError(w, r, err)
		return
	}

	userName := strings.TrimSpace(r.PathValue("id"))
	if userName == "" {
		writeError(w, r, errs.Field("userName", "is required"))
		return
	}

	user, err := h.Service.GetProfile(r.Context(), userName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Profile())
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := ULIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	params, err := h.updateParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.Update(r.Context(), caller, id, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Message: "user updated", User: user.Profile()})
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := ULIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.Delete(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Message: "user deleted", User: user.Profile()})
}

// updateParams reads a JSON body, or a multipart form whose optional
// "avatar" file replaces the avatar.
func (h *UsersHandler) updateParams(r *http.Request) (users.UpdateParams, error) {
	var params users.UpdateParams
	if !isMultipart(r) {
		return params, decodeJSON(r, &params)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return params, multipartError(err)
	}

	params.CurrentPassword, _ = formValue(r, "currentPassword")
	params.NewUserName, _ = formValue(r, "newUserName")
	params.NewEmail, _ = formValue(r, "newEmail")
	params.NewPassword, _ = formValue(r, "newPassword")
	params.NewRole, _ = formValue(r, "newRole")
	params.SecurityQuestion, _ = formValue(r, "securityQuestion")
	params.NewSecurityAnswer, _ = formValue(r, "newSecurityAnswer")

	params.Birthday = formField(r, "birthday")
	params.Bio = formField(r, "bio")
	params.HiddenTalents = formField(r, "hiddenTalents")
	params.FavoriteFood = formField(r, "favoriteFood")
	params.Hobbies = formList(r, "hobbies")
	params.Interests = formList(r, "interests")

	if raw, ok := formValue(r, "socialMedia"); ok {
		var social users.SocialMedia
		if strings.TrimSpace(raw) != "" {
			if err := json.Unmarshal([]byte(raw), &social); err != nil {
				return params, errs.Field("socialMedia", "must be a JSON object")
			}
		}
		params.SocialMedia = patch.Some(social)
	}

	url, ok, err := saveUpload(r, h.Media, "avatar")
	if err != nil {
		return params, err
	}
	if ok {
		params.AvatarURL = patch.Some(url)
	}
	return params, nil
}

func formField(r *http.Request, key string) patch.Field[string] {
	if value, ok := formValue(r, key); ok {
		return patch.Some(value)
	}
	return patch.Field[string]{}
}

// formList accepts repeated keys or a single comma-separated value.
func formList(r *http.Request, key string) patch.Field[[]string] {
	values, ok := r.MultipartForm.Value[key]
	if !ok {
		return patch.Field[[]string]{}
	}
	if len(values) == 1 {
		values = strings.Split(values[0], ",")
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return patch.Some(out)
}

func multipartError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return maxErr
	}
	return errs.Validation("invalid multipart form: " + err.Error())
}
