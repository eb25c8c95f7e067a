package alerts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

// ensureClient returns a usable client instance
func ensureClient() *asynq.Client {
	if client == nil {
		Init()
	}
	return client
}

// EnqueueWelcomeEmail schedules a welcome email to the user
func EnqueueWelcomeEmail(userID, email, name string) error {
	base := os.Getenv("APP_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	base = strings.TrimRight(base, "/")

	subject := fmt.Sprintf("Welcome to Contest Bank, %s!", name)
	body := fmt.Sprintf("Hi %s, your account is ready.\n\nSign in: %s\n\nYour balance and withdrawal status are shown on your dashboard.", name, base)

	env := EmailEnvelope{
		To:      email,
		Subject: subject,
		Body:    body,
	}
	payload := WelcomeEmailPayload{UserID: userID, Name: name, Email: email, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskWelcomeEmail, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueuePinIssued tells the user a confirmation pin is waiting in their
// notification feed. The pin itself is never put in the email.
func EnqueuePinIssued(userID, email, stage string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "A confirmation code has been issued",
		Body:    fmt.Sprintf("A confirmation code for your %s step is now available in your account notifications.", stage),
	}
	payload := PinIssuedPayload{UserID: userID, Stage: stage, Email: email, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskPinIssued, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueWithdrawalDecision notifies the user of an admin approval or rejection
func EnqueueWithdrawalDecision(withdrawalID, userID, email, decision string, amount float64) error {
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("Your withdrawal has been %s", decision),
		Body:    fmt.Sprintf("Withdrawal %s for %.2f has been %s.", withdrawalID, amount, decision),
	}
	payload := WithdrawalDecisionPayload{WithdrawalID: withdrawalID, UserID: userID, Email: email, Decision: decision, Amount: amount, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskWithdrawalDecision, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueAdminAlert sends an alert to the admin mailbox (payment submitted,
// withdrawal started, and similar events the admin reacts to out-of-band)
func EnqueueAdminAlert(userID, severity, message string) error {
	to := os.Getenv("ADMIN_EMAIL")
	if to == "" {
		to = "admin@contestbk.local"
	}
	env := EmailEnvelope{To: to, Subject: "Admin Alert", Body: message}
	payload := AdminAlertPayload{UserID: userID, Severity: severity, Message: message, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskAdminAlert, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("alerts"))
	return err
}
