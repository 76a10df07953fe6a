package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

// claims carries the authenticated identity placed on the context by the
// auth middleware.
type claims struct {
	UserID string
	Role   domain.Role
	Email  string
}

func ctxClaims(c echo.Context) (claims, error) {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	email, _ := c.Get("email").(string)
	if id == "" || role == "" {
		return claims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
	}
	return claims{UserID: id, Role: domain.Role(role), Email: email}, nil
}
