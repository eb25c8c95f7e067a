package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/omas1st/contestbk/internal/db"
)

type SetBalanceRequest struct {
	Balance float64 `json:"balance"`
}

// SetBalance overwrites a user's accrued balance. Fees quoted later always
// read this live value, so edits here shift pending stage fees.
func SetBalance(c echo.Context) error {
	userID := c.Param("id")
	var req SetBalanceRequest
	if err := c.Bind(&req); err != nil || req.Balance < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid balance"})
	}

	ct, err := db.Conn.Exec(context.Background(),
		`UPDATE users SET balance = $1 WHERE id = $2`, req.Balance, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update balance"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "balance updated",
		"user_id": userID,
		"balance": req.Balance,
	})
}

type SetTimerRequest struct {
	Active bool `json:"active"`
	Hours  int  `json:"hours"`
}

// SetTimer arms or disarms the withdrawal timer. While disarmed no withdrawal
// action is possible; when an armed timer runs out the balance is forfeited.
func SetTimer(c echo.Context) error {
	userID := c.Param("id")
	var req SetTimerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var ends *time.Time
	if req.Active {
		if req.Hours <= 0 {
			req.Hours = 72
		}
		t := time.Now().Add(time.Duration(req.Hours) * time.Hour)
		ends = &t
	}

	ct, err := db.Conn.Exec(context.Background(),
		`UPDATE users SET timer_active = $1, timer_ends = $2 WHERE id = $3`,
		req.Active, ends, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update timer"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "timer updated",
		"user_id":      userID,
		"timer_active": req.Active,
		"timer_ends":   ends,
	})
}
