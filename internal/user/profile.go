package user

import (
	"context"
	"time"

	"github.com/omas1st/contestbk/internal/db"
)

// Get loads a user and applies timer expiry before returning it. An expired
// timer zeroes the balance and disarms the timer, matching what the caller
// would observe on the next read anyway.
func Get(ctx context.Context, id string) (*User, error) {
	u, err := load(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.TimerExpired(time.Now()) {
		_, err = db.Conn.Exec(ctx, `
            UPDATE users SET balance = 0, timer_active = FALSE
            WHERE id = $1 AND timer_active = TRUE AND timer_ends < NOW()`, id)
		if err != nil {
			return nil, err
		}
		u.Balance = 0
		u.TimerActive = false
	}

	return u, nil
}

func load(ctx context.Context, id string) (*User, error) {
	var u User
	err := db.Conn.QueryRow(ctx, `
        SELECT id, name, email, role, COALESCE(country, ''), balance,
               timer_active, timer_ends, COALESCE(is_active, TRUE), created_at
        FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Country, &u.Balance,
			&u.TimerActive, &u.TimerEnds, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
