package withdraw

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/omas1st/contestbk/internal/db"
	"github.com/omas1st/contestbk/internal/user"
)

// Proceed moves a previewed withdrawal to pending_activation. A stale client
// pointing at an old withdrawal id gets its actual in-progress withdrawal
// back instead.
func Proceed(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	ctx := c.Request().Context()

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

	latest, err := latestForUser(ctx, uid)
	if err != nil {
		c.Logger().Errorf("load latest withdrawal: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	if latest != nil && latest.ID != w.ID && Resumable(latest) {
		w = latest
	}

	if w.Status != StatusApproved && w.Status != StatusRejected {
		_, err = db.Conn.Exec(ctx, `
            UPDATE withdrawals SET status = 'pending_activation', updated_at = NOW()
            WHERE id = $1 AND status NOT IN ('approved', 'rejected', 'ready_for_payout')`, w.ID)
		if err != nil {
			c.Logger().Errorf("update withdrawal status: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update withdrawal"})
		}
		if w.Status != StatusReadyForPayout {
			w.Status = StatusPendingActivation
		}
	}

	resp := echo.Map{
		"withdrawal_id": w.ID,
		"stage":         w.Stage,
		"status":        w.Status,
	}

	// The tax step shows its fee up front, against the live balance
	if w.Stage == StageTax {
		if u, uerr := user.Get(ctx, uid); uerr == nil {
			resp["amount"] = StageFee(StageTax, u.Balance)
		}
	}

	return c.JSON(http.StatusOK, resp)
}
