package admin

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/omas1st/contestbk/internal/alerts"
	"github.com/omas1st/contestbk/internal/db"
)

// ListPendingWithdrawals returns all withdrawals that reached payout and wait
// for an admin decision.
func ListPendingWithdrawals(c echo.Context) error {
	rows, err := db.Conn.Query(c.Request().Context(), `
        SELECT id, user_id, amount, method, status, stage, created_at
        FROM withdrawals
        WHERE status = 'ready_for_payout'
        ORDER BY created_at ASC`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch withdrawals"})
	}
	defer rows.Close()

	var withdrawals []map[string]interface{}
	for rows.Next() {
		var id, userID, method, status, stage string
		var amount float64
		var createdAt time.Time

		if err := rows.Scan(&id, &userID, &amount, &method, &status, &stage, &createdAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to scan withdrawals"})
		}

		withdrawals = append(withdrawals, map[string]interface{}{
			"id":         id,
			"user_id":    userID,
			"amount":     amount,
			"method":     method,
			"status":     status,
			"stage":      stage,
			"created_at": createdAt,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"pending_withdrawals": withdrawals,
	})
}

// ApproveWithdrawal marks a withdrawal as approved
func ApproveWithdrawal(c echo.Context) error {
	return decideWithdrawal(c, "approved")
}

// RejectWithdrawal marks a withdrawal as rejected
func RejectWithdrawal(c echo.Context) error {
	return decideWithdrawal(c, "rejected")
}

func decideWithdrawal(c echo.Context, decision string) error {
	id := c.Param("id")
	adminID, _ := c.Get("user_id").(string)
	ctx := c.Request().Context()

	var userID string
	var amount float64
	err := db.Conn.QueryRow(ctx, `
        UPDATE withdrawals
        SET status = $1, approved_by = $2, approved_at = $3, updated_at = NOW()
        WHERE id = $4 AND status NOT IN ('approved', 'rejected')
        RETURNING user_id, amount`,
		decision, adminID, time.Now(), id).Scan(&userID, &amount)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "withdrawal not found or already decided"})
	}

	// Feed entry plus best-effort email; neither failure reverts the decision
	body := "Your withdrawal has been " + decision + "."
	if nerr := alerts.Notify(ctx, userID, "Withdrawal "+decision, body); nerr != nil {
		c.Logger().Warnf("decision notification failed: %v", nerr)
	}
	var email string
	if qerr := db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email); qerr == nil {
		if eerr := alerts.EnqueueWithdrawalDecision(id, userID, email, decision, amount); eerr != nil {
			c.Logger().Warnf("decision email enqueue failed: %v", eerr)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":       "withdrawal " + decision,
		"withdrawal_id": id,
		"status":        decision,
	})
}
