package httpapi

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/services"
)

// userServiceStub lets every test plug in just the calls it cares about.
type userServiceStub struct {
	register     func(req services.CreateUserRequest, avatar *services.Upload) (*models.User, error)
	authenticate func(email, password string) (*models.User, string, error)
	get          func(id int64) (*models.User, error)
	list         func() ([]*models.User, error)
	update       func(id int64, req services.UpdateUserRequest, avatar *services.Upload) (*models.User, error)
	delete       func(id int64) error
}

func (s *userServiceStub) Register(ctx context.Context, req services.CreateUserRequest, avatar *services.Upload) (*models.User, error) {
	return s.register(req, avatar)
}

func (s *userServiceStub) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	return s.authenticate(email, password)
}

func (s *userServiceStub) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.get(id)
}

func (s *userServiceStub) List(ctx context.Context) ([]*models.User, error) {
	return s.list()
}

func (s *userServiceStub) Update(ctx context.Context, id int64, req services.UpdateUserRequest, avatar *services.Upload) (*models.User, error) {
	return s.update(id, req, avatar)
}

func (s *userServiceStub) Delete(ctx context.Context, id int64) error {
	return s.delete(id)
}

type reconcilerStub struct {
	result *services.ReconcileResult
	err    error
}

func (r *reconcilerStub) Run(ctx context.Context) (*services.ReconcileResult, error) {
	return r.result, r.err
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var testSecret = []byte("test-secret")

func newTestEcho(users UserService, rec Reconciler) *echo.Echo {
	e := echo.New()
	logger := testLogger()
	NewHealthHandler().Register(e)
	NewAuthHandler(users, logger).Register(e)
	NewUsersHandler(users, rec, BearerAuth(testSecret), logger).Register(e)
	return e
}

func multipartBody(t *testing.T, fields map[string]string, avatarName string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("error writing field %s: %v", k, err)
		}
	}
	if avatarName != "" {
		fw, err := w.CreateFormFile("avatar", avatarName)
		if err != nil {
			t.Fatalf("error creating form file: %v", err)
		}
		if _, err := fw.Write([]byte("image-bytes")); err != nil {
			t.Fatalf("error writing form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("error closing multipart writer: %v", err)
	}

	return &buf, w.FormDataContentType()
}

func strptr(s string) *string {
	return &s
}
