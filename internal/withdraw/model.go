package withdraw

import "time"

// Stage is one step of the fixed release sequence a withdrawal passes through.
type Stage string

const (
	StageActivation   Stage = "activation"
	StageTax          Stage = "tax"
	StageInsurance    Stage = "insurance"
	StageVerification Stage = "verification"
	StageSecurity     Stage = "security"
	StageAccess       Stage = "access"
)

// Status of a withdrawal request.
const (
	StatusPreview           = "preview"
	StatusPendingActivation = "pending_activation"
	StatusApproved          = "approved"
	StatusRejected          = "rejected"
	StatusReadyForPayout    = "ready_for_payout"
)

// Payment submission statuses, advanced only by admin review.
const (
	PaymentSubmitted = "submitted"
	PaymentProcessed = "processed"
	PaymentRejected  = "rejected"
)

type Withdrawal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Details   string    `json:"details"`
	Status    string    `json:"status"`
	Stage     Stage     `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether no further stage transition is permitted.
func (w *Withdrawal) Terminal() bool {
	return w.Status == StatusApproved || w.Status == StatusRejected || w.Stage == StageAccess
}

// PinRecord is the issued secret gating one stage for one user.
type PinRecord struct {
	Pin              string
	Set              bool
	SetAt            time.Time
	FromNotification bool
	Confirmed        bool
}

type Card struct {
	GiftCard string  `json:"gift_card"`
	Pin      string  `json:"pin"`
	FileURL  *string `json:"file_url,omitempty"`
	FileID   *string `json:"file_id,omitempty"`
}

type PaymentSubmission struct {
	ID           string    `json:"id"`
	WithdrawalID string    `json:"withdrawal_id"`
	UserID       string    `json:"user_id"`
	Stage        Stage     `json:"stage"`
	Amount       float64   `json:"amount"`
	Status       string    `json:"status"`
	Cards        []Card    `json:"cards"`
	CreatedAt    time.Time `json:"created_at"`
}
