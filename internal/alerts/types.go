package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail       = "email:welcome"
	TaskPinIssued          = "email:pin_issued"
	TaskWithdrawalDecision = "email:withdrawal_decision"
	TaskAdminAlert         = "email:admin_alert"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Welcome email payload
type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Pin issued payload (sent to the user after an admin sets a stage pin)
type PinIssuedPayload struct {
	UserID   string        `json:"user_id"`
	Stage    string        `json:"stage"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Withdrawal decision payload (approval or rejection)
type WithdrawalDecisionPayload struct {
	WithdrawalID string        `json:"withdrawal_id"`
	UserID       string        `json:"user_id"`
	Email        string        `json:"email"`
	Decision     string        `json:"decision"` // approved|rejected
	Amount       float64       `json:"amount"`
	Envelope     EmailEnvelope `json:"envelope"`
	SentAt       time.Time     `json:"sent_at"`
}

// Admin alert payload
type AdminAlertPayload struct {
	UserID   string        `json:"user_id"`
	Severity string        `json:"severity"` // info|warning|critical
	Message  string        `json:"message"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}
