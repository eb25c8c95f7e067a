package withdraw

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func record(pin string) *PinRecord {
	return &PinRecord{Pin: pin, Set: true, SetAt: time.Now()}
}

func TestNextStageWalksFixedSequence(t *testing.T) {
	want := []Stage{StageTax, StageInsurance, StageVerification, StageSecurity, StageAccess}
	cur := StageActivation
	for _, expected := range want {
		next, ok := NextStage(cur)
		assert.True(t, ok, "stage %s should have a successor", cur)
		assert.Equal(t, expected, next)
		cur = next
	}

	_, ok := NextStage(StageAccess)
	assert.False(t, ok, "access is the last stage")
}

func TestNextStageUnknown(t *testing.T) {
	_, ok := NextStage(Stage("bogus"))
	assert.False(t, ok)
}

func TestConfirmAdvancesExactlyOneStage(t *testing.T) {
	stages := []Stage{StageActivation, StageTax, StageInsurance, StageVerification, StageSecurity}

	for _, stage := range stages {
		w := &Withdrawal{ID: "w1", UserID: "u1", Status: StatusPendingActivation, Stage: stage}

		res, err := Confirm(w, stage, record("1234"), "1234", 10000)
		assert.NoError(t, err)
		assert.NotNil(t, res.NextStage)

		expected, _ := NextStage(stage)
		assert.Equal(t, expected, w.Stage, "confirming %s must land on its successor", stage)
		assert.Equal(t, expected, *res.NextStage)
	}
}

func TestConfirmTaxFeeFromLiveBalance(t *testing.T) {
	w := &Withdrawal{Status: StatusPendingActivation, Stage: StageActivation}

	res, err := Confirm(w, StageActivation, record("4321"), "4321", 10000)
	assert.NoError(t, err)
	assert.Equal(t, StageTax, *res.NextStage)
	assert.Equal(t, 100.00, res.Amount)
}

func TestConfirmFixedFees(t *testing.T) {
	cases := []struct {
		stage  Stage
		next   Stage
		amount float64
	}{
		{StageTax, StageInsurance, 500},
		{StageInsurance, StageVerification, 1000},
		{StageVerification, StageSecurity, 2000},
	}

	for _, tc := range cases {
		w := &Withdrawal{Status: StatusPendingActivation, Stage: tc.stage}
		res, err := Confirm(w, tc.stage, record("9999"), "9999", 10000)
		assert.NoError(t, err)
		assert.Equal(t, tc.next, *res.NextStage)
		assert.Equal(t, tc.amount, res.Amount)
	}
}

func TestConfirmIncorrectPinChangesNothing(t *testing.T) {
	w := &Withdrawal{Status: StatusPendingActivation, Stage: StageTax}
	rec := record("1234")

	res, err := Confirm(w, StageTax, rec, "4321", 10000)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrIncorrectPin)
	assert.Equal(t, StageTax, w.Stage)
	assert.Equal(t, StatusPendingActivation, w.Status)
	assert.False(t, rec.Confirmed)
}

func TestConfirmPinCompareIsStringwise(t *testing.T) {
	w := &Withdrawal{Status: StatusPendingActivation, Stage: StageTax}

	// "123" must not match "0123": no numeric coercion
	_, err := Confirm(w, StageTax, record("0123"), "123", 10000)
	assert.ErrorIs(t, err, ErrIncorrectPin)

	res, err := Confirm(w, StageTax, record("0123"), "0123", 10000)
	assert.NoError(t, err)
	assert.Equal(t, StageInsurance, *res.NextStage)
}

func TestConfirmNoPinSet(t *testing.T) {
	w := &Withdrawal{Status: StatusPendingActivation, Stage: StageTax}

	_, err := Confirm(w, StageTax, nil, "1234", 10000)
	assert.ErrorIs(t, err, ErrNoPinSet)

	_, err = Confirm(w, StageTax, &PinRecord{Pin: "1234", Set: false}, "1234", 10000)
	assert.ErrorIs(t, err, ErrNoPinSet)
}

func TestConfirmSecurityReachesPayout(t *testing.T) {
	w := &Withdrawal{Status: StatusPendingActivation, Stage: StageSecurity}

	res, err := Confirm(w, StageSecurity, record("7777"), "7777", 10000)
	assert.NoError(t, err)
	assert.Equal(t, StageAccess, w.Stage)
	assert.Equal(t, StatusReadyForPayout, w.Status)
	assert.Equal(t, StageAccess, *res.NextStage)
	assert.Equal(t, float64(0), res.Amount)
}

func TestConfirmAtAccessIsTerminal(t *testing.T) {
	w := &Withdrawal{Status: StatusReadyForPayout, Stage: StageAccess}
	rec := record("5555")

	res, err := Confirm(w, StageAccess, rec, "5555", 10000)
	assert.NoError(t, err)
	assert.Nil(t, res.NextStage)
	assert.Equal(t, float64(0), res.Amount)
	assert.Equal(t, StageAccess, w.Stage)
	assert.Equal(t, StatusReadyForPayout, w.Status)
	// Pin bookkeeping still applies
	assert.True(t, rec.Confirmed)
}

func TestConfirmStaleStageNeverRegresses(t *testing.T) {
	// The withdrawal already sits on insurance; a retried activation confirm
	// with the (still correct) activation pin must not move the stage back.
	w := &Withdrawal{Status: StatusPendingActivation, Stage: StageInsurance}
	rec := record("1234")

	res, err := Confirm(w, StageActivation, rec, "1234", 10000)
	assert.NoError(t, err)
	assert.Equal(t, StageInsurance, w.Stage)
	assert.Equal(t, StageInsurance, res.Stage)
	assert.True(t, rec.Confirmed)
}

func TestStageFee(t *testing.T) {
	assert.Equal(t, 100.00, StageFee(StageTax, 10000))
	assert.Equal(t, 123.46, StageFee(StageTax, 12345.67))
	assert.Equal(t, float64(500), StageFee(StageInsurance, 1))
	assert.Equal(t, float64(1000), StageFee(StageVerification, 1))
	assert.Equal(t, float64(2000), StageFee(StageSecurity, 1))
	assert.Equal(t, float64(0), StageFee(StageActivation, 10000))
	assert.Equal(t, float64(0), StageFee(StageAccess, 10000))
}

func TestCanStart(t *testing.T) {
	assert.NoError(t, CanStart(1, true))
	assert.ErrorIs(t, CanStart(0.5, true), ErrInsufficientBalance)
	assert.ErrorIs(t, CanStart(100, false), ErrTimerInactive)
	// Balance is checked before the timer
	assert.ErrorIs(t, CanStart(0, false), ErrInsufficientBalance)
}

func TestResumable(t *testing.T) {
	assert.False(t, Resumable(nil))
	assert.True(t, Resumable(&Withdrawal{Status: StatusPreview, Stage: StageActivation}))
	assert.True(t, Resumable(&Withdrawal{Status: StatusPendingActivation, Stage: StageTax}))
	assert.False(t, Resumable(&Withdrawal{Status: StatusApproved, Stage: StageTax}))
	assert.False(t, Resumable(&Withdrawal{Status: StatusRejected, Stage: StageActivation}))
	assert.False(t, Resumable(&Withdrawal{Status: StatusReadyForPayout, Stage: StageAccess}))
}

func TestRecoverPinFromNotificationText(t *testing.T) {
	bodies := []string{
		"Your withdrawal has been approved.",
		"Your tax pin is: 1234",
		"Welcome to Contest Bank!",
	}

	pin, ok := RecoverPin(StageTax, bodies)
	assert.True(t, ok)
	assert.Equal(t, "1234", pin)
}

func TestRecoverPinCodeVariant(t *testing.T) {
	pin, ok := RecoverPin(StageInsurance, []string{"insurance code 0412 has been issued"})
	assert.True(t, ok)
	assert.Equal(t, "0412", pin)
}

func TestRecoverPinNewestWins(t *testing.T) {
	// Bodies arrive newest first; the first hit is the one kept
	bodies := []string{
		"Your security pin is: 9999",
		"Your security pin is: 1111",
	}
	pin, ok := RecoverPin(StageSecurity, bodies)
	assert.True(t, ok)
	assert.Equal(t, "9999", pin)
}

func TestRecoverPinNoMatch(t *testing.T) {
	_, ok := RecoverPin(StageTax, []string{"Your insurance pin is: 1234", "hello"})
	assert.False(t, ok)

	_, ok = RecoverPin(StageTax, nil)
	assert.False(t, ok)
}

func TestTerminal(t *testing.T) {
	assert.True(t, (&Withdrawal{Status: StatusApproved}).Terminal())
	assert.True(t, (&Withdrawal{Status: StatusRejected}).Terminal())
	assert.True(t, (&Withdrawal{Status: StatusReadyForPayout, Stage: StageAccess}).Terminal())
	assert.False(t, (&Withdrawal{Status: StatusPreview, Stage: StageActivation}).Terminal())
	assert.False(t, (&Withdrawal{Status: StatusPendingActivation, Stage: StageSecurity}).Terminal())
}
