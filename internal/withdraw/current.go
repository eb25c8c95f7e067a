package withdraw

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Current returns the caller's most recent withdrawal snapshot.
func Current(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	w, err := latestForUser(c.Request().Context(), uid)
	if err != nil {
		c.Logger().Errorf("load latest withdrawal: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	if w == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no withdrawal yet"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"withdrawal_id": w.ID,
		"stage":         w.Stage,
		"status":        w.Status,
		"amount":        w.Amount,
		"method":        w.Method,
		"created_at":    w.CreatedAt,
	})
}
