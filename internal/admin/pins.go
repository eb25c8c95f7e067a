package admin

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/omas1st/contestbk/internal/alerts"
	"github.com/omas1st/contestbk/internal/db"
	"github.com/omas1st/contestbk/internal/withdraw"
)

var pinFormat = regexp.MustCompile(`^\d{4}$`)

type SetPinRequest struct {
	Stage string `json:"stage"`
	Pin   string `json:"pin"`
}

// PinNotification is the literal feed entry that delivers a stage pin. The
// notification feed is the only channel the user receives the pin on, and the
// legacy recovery scan in the withdraw package parses this exact shape.
func PinNotification(stage, pin string) string {
	return fmt.Sprintf("Your %s pin is: %s", stage, pin)
}

// SetPin issues (or overwrites) the 4-digit confirmation pin for one of a
// user's stages and delivers it through the notification feed.
func SetPin(c echo.Context) error {
	userID := c.Param("id")
	var req SetPinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if !withdraw.ValidStage(req.Stage) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown stage"})
	}
	if !pinFormat.MatchString(req.Pin) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pin must be exactly 4 digits"})
	}

	ctx := context.Background()

	var email string
	if err := db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	_, err := db.Conn.Exec(ctx, `
        INSERT INTO stage_pins (user_id, stage, pin, is_set, from_notification, confirmed)
        VALUES ($1, $2, $3, TRUE, FALSE, FALSE)
        ON CONFLICT (user_id, stage)
        DO UPDATE SET pin = EXCLUDED.pin, is_set = TRUE, set_at = NOW(),
                      from_notification = FALSE, confirmed = FALSE`,
		userID, req.Stage, req.Pin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to set pin"})
	}

	if err := alerts.Notify(ctx, userID, "Confirmation code", PinNotification(req.Stage, req.Pin)); err != nil {
		c.Logger().Errorf("pin notification failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pin set but notification failed"})
	}

	// The email only points at the feed; the pin itself stays in-app
	if err := alerts.EnqueuePinIssued(userID, email, req.Stage); err != nil {
		c.Logger().Warnf("pin email enqueue failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "pin issued",
		"user_id": userID,
		"stage":   req.Stage,
	})
}
