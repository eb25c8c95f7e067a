package user

import "time"

type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Password    string     `json:"-"` // never return
	Role        string     `json:"role"`
	Country     string     `json:"country,omitempty"`
	Balance     float64    `json:"balance"`
	TimerActive bool       `json:"timer_active"`
	TimerEnds   *time.Time `json:"timer_ends,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TimerExpired reports whether the withdrawal timer was armed but has run out.
func (u *User) TimerExpired(now time.Time) bool {
	return u.TimerActive && u.TimerEnds != nil && now.After(*u.TimerEnds)
}
