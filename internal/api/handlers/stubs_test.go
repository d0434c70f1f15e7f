package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/api/middleware"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/events"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/users"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "01HZX3M8Q1V6YJ4K2N5P7R9T0W"
	testEventID = "01HZX3M8Q1V6YJ4K2N5P7R9T0X"
	testBaseURL = "https://events.example"
)

type stubUserService struct {
	register         func(ctx context.Context, params users.RegisterParams) (*users.User, error)
	login            func(ctx context.Context, params users.LoginParams) (*users.LoginResult, error)
	update           func(ctx context.Context, actor auth.Actor, id string, params users.UpdateParams) (*users.User, error)
	getProfile       func(ctx context.Context, userName string) (*users.User, error)
	deleteUser       func(ctx context.Context, actor auth.Actor, id string) (*users.User, error)
	securityQuestion func(ctx context.Context, userName, email string) (string, error)
	resetPassword    func(ctx context.Context, params users.ResetPasswordParams) error
}

func (s *stubUserService) Register(ctx context.Context, params users.RegisterParams) (*users.User, error) {
	return s.register(ctx, params)
}

func (s *stubUserService) Login(ctx context.Context, params users.LoginParams) (*users.LoginResult, error) {
	return s.login(ctx, params)
}

func (s *stubUserService) Update(ctx context.Context, actor auth.Actor, id string, params users.UpdateParams) (*users.User, error) {
	return s.update(ctx, actor, id, params)
}

func (s *stubUserService) GetProfile(ctx context.Context, userName string) (*users.User, error) {
	return s.getProfile(ctx, userName)
}

func (s *stubUserService) Delete(ctx context.Context, actor auth.Actor, id string) (*users.User, error) {
	return s.deleteUser(ctx, actor, id)
}

func (s *stubUserService) SecurityQuestion(ctx context.Context, userName, email string) (string, error) {
	return s.securityQuestion(ctx, userName, email)
}

func (s *stubUserService) ResetPassword(ctx context.Context, params users.ResetPasswordParams) error {
	return s.resetPassword(ctx, params)
}

type stubEventService struct {
	list     func(ctx context.Context) ([]events.Event, error)
	get      func(ctx context.Context, id string) (*events.Event, error)
	create   func(ctx context.Context, actor auth.Actor, params events.CreateParams) (*events.Event, error)
	update   func(ctx context.Context, actor auth.Actor, id string, params events.UpdateParams) (*events.Event, error)
	delete   func(ctx context.Context, actor auth.Actor, id string) error
	attend   func(ctx context.Context, actor auth.Actor, id string) (*events.Event, error)
	unattend func(ctx context.Context, actor auth.Actor, id string) (*events.Event, error)
}

func (s *stubEventService) List(ctx context.Context) ([]events.Event, error) {
	return s.list(ctx)
}

func (s *stubEventService) Get(ctx context.Context, id string) (*events.Event, error) {
	return s.get(ctx, id)
}

func (s *stubEventService) Create(ctx context.Context, actor auth.Actor, params events.CreateParams) (*events.Event, error) {
	return s.create(ctx, actor, params)
}

func (s *stubEventService) Update(ctx context.Context, actor auth.Actor, id string, params events.UpdateParams) (*events.Event, error) {
	return s.update(ctx, actor, id, params)
}

func (s *stubEventService) Delete(ctx context.Context, actor auth.Actor, id string) error {
	return s.delete(ctx, actor, id)
}

func (s *stubEventService) Attend(ctx context.Context, actor auth.Actor, id string) (*events.Event, error) {
	return s.attend(ctx, actor, id)
}

func (s *stubEventService) Unattend(ctx context.Context, actor auth.Actor, id string) (*events.Event, error) {
	return s.unattend(ctx, actor, id)
}

// stubStore records uploads instead of writing them.
type stubStore struct {
	filename string
	content  []byte
	err      error
}

func (s *stubStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.filename = filename
	s.content = data
	return "https://events.example/uploads/" + filename, nil
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

type formFile struct {
	field    string
	filename string
	content  string
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func withActor(req *http.Request, id string, role auth.Role) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), auth.Actor{ID: id, Role: role}))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
