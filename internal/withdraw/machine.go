package withdraw

import (
	"errors"
	"math"
	"regexp"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTimerInactive       = errors.New("withdrawal timer is not active")
	ErrNoPinSet            = errors.New("no pin set for this stage")
	ErrIncorrectPin        = errors.New("incorrect pin")
)

// stageOrder is the fixed release sequence. It never changes at runtime.
var stageOrder = []Stage{
	StageActivation,
	StageTax,
	StageInsurance,
	StageVerification,
	StageSecurity,
	StageAccess,
}

// ValidStage reports whether s names a known stage.
func ValidStage(s string) bool {
	for _, st := range stageOrder {
		if string(st) == s {
			return true
		}
	}
	return false
}

// NextStage returns the successor of s, or false when s is last (or unknown).
func NextStage(s Stage) (Stage, bool) {
	for i, st := range stageOrder {
		if st == s {
			if i+1 < len(stageOrder) {
				return stageOrder[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// StageFee is the fee owed to proceed past a stage, computed against the
// user's live balance at confirmation time (not the withdrawal snapshot).
func StageFee(stage Stage, balance float64) float64 {
	switch stage {
	case StageTax:
		return round2(balance * 0.01)
	case StageInsurance:
		return 500
	case StageVerification:
		return 1000
	case StageSecurity:
		return 2000
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CanStart checks the preconditions for opening a withdrawal preview.
func CanStart(balance float64, timerActive bool) error {
	if balance < 1 {
		return ErrInsufficientBalance
	}
	if !timerActive {
		return ErrTimerInactive
	}
	return nil
}

// Resumable reports whether latest must be returned as-is instead of creating
// a new withdrawal: at most one non-terminal withdrawal exists per user.
func Resumable(latest *Withdrawal) bool {
	return latest != nil && !latest.Terminal()
}

// RecoverPin scans notification bodies (newest first) for a stage pin that was
// delivered only as text: the stage name followed within a few words by
// "pin", "code" or "is" and a 4-digit number. Legacy path for records issued
// before stage_pins existed; the caller persists the recovered pin with
// from_notification set.
func RecoverPin(stage Stage, bodies []string) (string, bool) {
	re, err := regexp.Compile(`(?i)` + string(stage) + `\W+(?:\w+\W+){0,6}?(?:pin|code|is)\W*?(?:\w+\W+){0,2}?(\d{4})`)
	if err != nil {
		return "", false
	}
	for _, body := range bodies {
		if m := re.FindStringSubmatch(body); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ConfirmResult is what a successful pin confirmation reports back.
type ConfirmResult struct {
	Stage     Stage   `json:"stage"`
	Status    string  `json:"status"`
	NextStage *Stage  `json:"next_stage"`
	Amount    float64 `json:"amount"`
}

// Confirm runs one transition of the stage machine in memory. The caller
// loads the withdrawal and the stage's pin record, and persists both on
// success. On ErrIncorrectPin nothing has been mutated.
func Confirm(w *Withdrawal, stage Stage, rec *PinRecord, submittedPin string, balance float64) (*ConfirmResult, error) {
	if rec == nil || !rec.Set {
		return nil, ErrNoPinSet
	}
	// String compare, so leading zeros stay significant
	if rec.Pin != submittedPin {
		return nil, ErrIncorrectPin
	}

	rec.Confirmed = true

	succ, ok := NextStage(stage)
	if !ok {
		// Final stage: pin bookkeeping only, no further transition
		return &ConfirmResult{Stage: w.Stage, Status: w.Status, NextStage: nil, Amount: 0}, nil
	}

	// Only the withdrawal's current stage can move it; a stale retry against
	// an earlier stage keeps its pin bookkeeping but never regresses the stage.
	if stage == w.Stage {
		w.Stage = succ
		if succ == StageAccess {
			w.Status = StatusReadyForPayout
		}
	}

	return &ConfirmResult{
		Stage:     w.Stage,
		Status:    w.Status,
		NextStage: &succ,
		Amount:    StageFee(succ, balance),
	}, nil
}
