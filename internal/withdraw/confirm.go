package withdraw

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/omas1st/contestbk/internal/alerts"
	"github.com/omas1st/contestbk/internal/db"
	"github.com/omas1st/contestbk/internal/user"
)

type ConfirmRequest struct {
	Stage string `json:"stage"`
	Pin   string `json:"pin"`
}

// ConfirmPin validates the stage's 4-digit pin and advances the withdrawal to
// the next stage, quoting the fee owed for it.
func ConfirmPin(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	ctx := c.Request().Context()

	req := new(ConfirmRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if !ValidStage(req.Stage) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown stage"})
	}
	stage := Stage(req.Stage)

	u, err := user.Get(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	w, err := getByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "withdrawal not found"})
	}
	if err != nil {
		c.Logger().Errorf("load withdrawal: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	if w.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your withdrawal"})
	}

	rec, err := getPinRecord(ctx, uid, stage)
	if err != nil {
		c.Logger().Errorf("load pin record: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	if rec == nil || !rec.Set {
		rec, err = recoverFromNotifications(c, uid, stage)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
		}
		if rec == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no pin set for this stage"})
		}
	}

	result, err := Confirm(w, stage, rec, req.Pin, u.Balance)
	if errors.Is(err, ErrIncorrectPin) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "incorrect pin"})
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	_, err = db.Conn.Exec(ctx, `
        UPDATE stage_pins SET confirmed = TRUE
        WHERE user_id = $1 AND stage = $2`, uid, string(stage))
	if err != nil {
		c.Logger().Errorf("mark stage confirmed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	_, err = db.Conn.Exec(ctx, `
        UPDATE withdrawals SET stage = $1, status = $2, updated_at = NOW()
        WHERE id = $3`, string(w.Stage), w.Status, w.ID)
	if err != nil {
		c.Logger().Errorf("advance withdrawal: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	// Confirmation feed entry is best-effort
	body := fmt.Sprintf("Your %s step has been confirmed.", stage)
	if result.NextStage != nil {
		body = fmt.Sprintf("Your %s step has been confirmed. Next step: %s.", stage, *result.NextStage)
	}
	if nerr := alerts.Notify(ctx, uid, "Step confirmed", body); nerr != nil {
		c.Logger().Warnf("confirmation notification failed: %v", nerr)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"withdrawal_id": w.ID,
		"stage":         result.Stage,
		"status":        result.Status,
		"next_stage":    result.NextStage,
		"amount":        result.Amount,
	})
}

// recoverFromNotifications handles pins that were only ever delivered as
// notification text. A hit is persisted as a regular pin record flagged
// from_notification. Returns nil when nothing matched.
func recoverFromNotifications(c echo.Context, uid string, stage Stage) (*PinRecord, error) {
	ctx := c.Request().Context()

	bodies, err := recentNotificationBodies(ctx, uid, 50)
	if err != nil {
		c.Logger().Errorf("load notifications for recovery: %v", err)
		return nil, err
	}

	pin, found := RecoverPin(stage, bodies)
	if !found {
		return nil, nil
	}

	rec := &PinRecord{Pin: pin, Set: true, FromNotification: true}
	_, err = db.Conn.Exec(ctx, `
        INSERT INTO stage_pins (user_id, stage, pin, is_set, from_notification)
        VALUES ($1, $2, $3, TRUE, TRUE)
        ON CONFLICT (user_id, stage)
        DO UPDATE SET pin = EXCLUDED.pin, is_set = TRUE, set_at = NOW(), from_notification = TRUE`,
		uid, string(stage), pin)
	if err != nil {
		c.Logger().Errorf("persist recovered pin: %v", err)
		return nil, err
	}
	return rec, nil
}
