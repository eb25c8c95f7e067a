package admin

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/omas1st/contestbk/internal/db"
)

type PaymentRow struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	WithdrawalID string    `json:"withdrawal_id"`
	Stage        string    `json:"stage"`
	Amount       float64   `json:"amount"`
	Status       string    `json:"status"`
	Cards        int       `json:"cards"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListPayments returns submitted proof-of-payment batches for review. With
// ?user=<id> it narrows to one user; the per-user view is the same rows the
// withdrawal owns, not a separate copy.
func ListPayments(c echo.Context) error {
	query := `
        SELECT p.id, p.user_id, p.withdrawal_id, p.stage, p.amount, p.status,
               (SELECT COUNT(*) FROM payment_cards pc WHERE pc.payment_id = p.id),
               p.created_at
        FROM payments p`
	args := []interface{}{}
	if userID := c.QueryParam("user"); userID != "" {
		query += ` WHERE p.user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := db.Conn.Query(c.Request().Context(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch payments"})
	}
	defer rows.Close()

	var payments []PaymentRow
	for rows.Next() {
		var p PaymentRow
		if err := rows.Scan(&p.ID, &p.UserID, &p.WithdrawalID, &p.Stage, &p.Amount, &p.Status, &p.Cards, &p.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to scan payments"})
		}
		payments = append(payments, p)
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": payments})
}

type ReviewPaymentRequest struct {
	Status string `json:"status"`
}

// ReviewPayment advances a submission out of 'submitted' after the admin has
// checked the declared cards.
func ReviewPayment(c echo.Context) error {
	id := c.Param("id")
	var req ReviewPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Status != "processed" && req.Status != "rejected" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be processed or rejected"})
	}

	ct, err := db.Conn.Exec(c.Request().Context(), `
        UPDATE payments SET status = $1
        WHERE id = $2 AND status = 'submitted'`, req.Status, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update payment"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found or already reviewed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "payment " + req.Status,
		"payment_id": id,
		"status":     req.Status,
	})
}
