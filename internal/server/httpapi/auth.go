package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/services"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	users  UserService
	logger logging.Logger
}

func NewAuthHandler(users UserService, logger logging.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		logger: logger.With("handler", "auth"),
	}
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the success body for register and login.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) Register(e *echo.Echo) {
	e.POST("/api/auth/register", h.RegisterUser)
	e.POST("/api/auth/login", h.Login)
}

// RegisterUser creates an account from a multipart form (email, password,
// firstName, lastName, avatar file) and signs the new account in.
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	ctx := c.Request().Context()

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

	user, err := h.users.Register(ctx, req, avatar)
	if err != nil {
		return httpError(err)
	}

	_, token, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login verifies credentials and returns the account with a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, token, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{User: user, Token: token})
}
