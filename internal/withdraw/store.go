package withdraw

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/omas1st/contestbk/internal/db"
)

func getByID(ctx context.Context, id string) (*Withdrawal, error) {
	var w Withdrawal
	err := db.Conn.QueryRow(ctx, `
        SELECT id, user_id, amount, method, details, status, stage, created_at, updated_at
        FROM withdrawals WHERE id = $1`, id).
		Scan(&w.ID, &w.UserID, &w.Amount, &w.Method, &w.Details, &w.Status, &w.Stage, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// latestForUser returns the user's most recent withdrawal, or nil when none exists.
func latestForUser(ctx context.Context, userID string) (*Withdrawal, error) {
	var w Withdrawal
	err := db.Conn.QueryRow(ctx, `
        SELECT id, user_id, amount, method, details, status, stage, created_at, updated_at
        FROM withdrawals WHERE user_id = $1
        ORDER BY created_at DESC LIMIT 1`, userID).
		Scan(&w.ID, &w.UserID, &w.Amount, &w.Method, &w.Details, &w.Status, &w.Stage, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func getPinRecord(ctx context.Context, userID string, stage Stage) (*PinRecord, error) {
	var rec PinRecord
	err := db.Conn.QueryRow(ctx, `
        SELECT pin, is_set, set_at, from_notification, confirmed
        FROM stage_pins WHERE user_id = $1 AND stage = $2`, userID, string(stage)).
		Scan(&rec.Pin, &rec.Set, &rec.SetAt, &rec.FromNotification, &rec.Confirmed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// recentNotificationBodies feeds the legacy pin recovery scan, newest first.
func recentNotificationBodies(ctx context.Context, userID string, limit int) ([]string, error) {
	rows, err := db.Conn.Query(ctx, `
        SELECT body FROM notifications
        WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bodies []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	return bodies, rows.Err()
}
