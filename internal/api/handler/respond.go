package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// envelope is the uniform response body: every domain-level outcome is
// HTTP 200 with success true/false; callers inspect the envelope, not the
// status code.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func sendSuccess(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data, Message: message})
}
