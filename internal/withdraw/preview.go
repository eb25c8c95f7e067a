package withdraw

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"

	"github.com/omas1st/contestbk/internal/db"
	"github.com/omas1st/contestbk/internal/user"
)

var validate = validator.New()

type PreviewRequest struct {
	Method  string `json:"method" validate:"required,oneof=bank paypal crypto cashapp giftcard"`
	Details string `json:"details" validate:"required"`
}

// CreateOrResumePreview opens a withdrawal preview, or returns the caller's
// existing non-terminal withdrawal unchanged. The partial unique index on
// withdrawals backs this up under concurrent requests.
func CreateOrResumePreview(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(PreviewRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid withdrawal method or details"})
	}

	ctx := c.Request().Context()

	u, err := user.Get(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err := CanStart(u.Balance, u.TimerActive); err != nil {
		switch {
		case errors.Is(err, ErrInsufficientBalance):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient balance"})
		case errors.Is(err, ErrTimerInactive):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "withdrawal timer is not active"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	latest, err := latestForUser(ctx, uid)
	if err != nil {
		c.Logger().Errorf("load latest withdrawal: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	if Resumable(latest) {
		return c.JSON(http.StatusOK, previewResponse(latest, true))
	}

	var w Withdrawal
	err = db.Conn.QueryRow(ctx, `
        INSERT INTO withdrawals (user_id, amount, method, details, status, stage)
        VALUES ($1, $2, $3, $4, 'preview', 'activation')
        RETURNING id, user_id, amount, method, details, status, stage, created_at, updated_at`,
		uid, u.Balance, req.Method, req.Details).
		Scan(&w.ID, &w.UserID, &w.Amount, &w.Method, &w.Details, &w.Status, &w.Stage, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		// A concurrent request won the insert; resume its withdrawal
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if latest, lerr := latestForUser(ctx, uid); lerr == nil && Resumable(latest) {
				return c.JSON(http.StatusOK, previewResponse(latest, true))
			}
		}
		c.Logger().Errorf("create withdrawal: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create withdrawal"})
	}

	return c.JSON(http.StatusOK, previewResponse(&w, false))
}

func previewResponse(w *Withdrawal, resumed bool) echo.Map {
	return echo.Map{
		"withdrawal_id": w.ID,
		"stage":         w.Stage,
		"status":        w.Status,
		"amount":        w.Amount,
		"method":        w.Method,
		"preview":       true,
		"resumed":       resumed,
	}
}
