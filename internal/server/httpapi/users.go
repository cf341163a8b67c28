package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/services"
)

// UserService is the account surface the handlers depend on.
type UserService interface {
	Register(ctx context.Context, req services.CreateUserRequest, avatar *services.Upload) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, string, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, req services.UpdateUserRequest, avatar *services.Upload) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// Reconciler runs a one-shot import from the external directory.
type Reconciler interface {
	Run(ctx context.Context) (*services.ReconcileResult, error)
}

// UsersHandler serves account CRUD and the directory import trigger.
// Mutating routes on existing records require a bearer token.
type UsersHandler struct {
	users      UserService
	reconciler Reconciler
	authMW     echo.MiddlewareFunc
	logger     logging.Logger
}

func NewUsersHandler(users UserService, reconciler Reconciler, authMW echo.MiddlewareFunc, logger logging.Logger) *UsersHandler {
	return &UsersHandler{
		users:      users,
		reconciler: reconciler,
		authMW:     authMW,
		logger:     logger.With("handler", "users"),
	}
}

// FetchResponse is the success body for POST /api/users/fetch.
type FetchResponse struct {
	Message string `json:"message"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
}

func (h *UsersHandler) Register(e *echo.Echo) {
	g := e.Group("/api/users")
	g.POST("/fetch", h.FetchUsers)
	g.POST("", h.CreateUser)
	g.GET("", h.ListUsers)
	g.GET("/:id", h.GetUser)
	g.PUT("/:id", h.UpdateUser, h.authMW)
	g.DELETE("/:id", h.DeleteUser, h.authMW)
}

// CreateUser creates an account from a multipart form without signing it in.
func (h *UsersHandler) CreateUser(c echo.Context) error {
	req := services.CreateUserRequest{
		FirstName: formValue(c, "firstName"),
		LastName:  formValue(c, "lastName"),
	}
	if v := formValue(c, "email"); v != nil {
		req.Email = *v
	}
	if v := formValue(c, "password"); v != nil {
		req.Password = *v
	}

	avatar, file, err := openAvatar(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid avatar upload")
	}
	if file != nil {
		defer file.Close()
	}

	user, err := h.users.Register(c.Request().Context(), req, avatar)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *UsersHandler) ListUsers(c echo.Context) error {
	list, err := h.users.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *UsersHandler) GetUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateUser applies a partial update from a multipart form. Absent fields
// stay untouched; a submitted password is re-hashed by the service.
func (h *UsersHandler) UpdateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	req := services.UpdateUserRequest{
		Email:     formValue(c, "email"),
		Password:  formValue(c, "password"),
		FirstName: formValue(c, "firstName"),
		LastName:  formValue(c, "lastName"),
	}

	avatar, file, err := openAvatar(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid avatar upload")
	}
	if file != nil {
		defer file.Close()
	}

	user, err := h.users.Update(c.Request().Context(), id, req, avatar)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UsersHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// FetchUsers runs the directory import and reports how many records it wrote.
func (h *UsersHandler) FetchUsers(c echo.Context) error {
	result, err := h.reconciler.Run(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, FetchResponse{
		Message: "users fetched and saved",
		Created: result.Created,
		Updated: result.Updated,
	})
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return id, nil
}
