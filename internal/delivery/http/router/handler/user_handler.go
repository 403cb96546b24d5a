package handler

import (
	"log/slog"

	"passport/internal/delivery/http/response"

	"github.com/labstack/echo/v4"
)

// UserHandler holds the user-record CRUD handlers. The routes are part of the
// public surface but their behavior is not implemented yet.
type UserHandler struct {
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(logger *slog.Logger) *UserHandler {
	return &UserHandler{logger: logger}
}

// GetUser returns a user record. Not implemented.
func (h *UserHandler) GetUser(c echo.Context) error {
	return response.NotImplemented(c, "NOT_IMPLEMENTED", "user lookup is not implemented")
}

// UpdateUser updates a user record. Not implemented.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	return response.NotImplemented(c, "NOT_IMPLEMENTED", "user update is not implemented")
}

// DeleteUser deletes a user record. Not implemented.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	return response.NotImplemented(c, "NOT_IMPLEMENTED", "user deletion is not implemented")
}
