package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omas1st/contestbk/internal/user"
)

// Me returns the authenticated user's profile, with the withdrawal timer
// expiry already applied to balance and timer_active.
func Me(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	u, err := user.Get(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, u)
}
