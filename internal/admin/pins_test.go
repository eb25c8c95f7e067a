package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omas1st/contestbk/internal/withdraw"
)

func TestPinNotificationTemplate(t *testing.T) {
	assert.Equal(t, "Your tax pin is: 1234", PinNotification("tax", "1234"))
	assert.Equal(t, "Your activation pin is: 0007", PinNotification("activation", "0007"))
}

// The issued notification must stay parseable by the legacy recovery scan:
// a user whose pin row is missing can still confirm from the feed text.
func TestPinNotificationIsRecoverable(t *testing.T) {
	for _, stage := range []withdraw.Stage{
		withdraw.StageActivation,
		withdraw.StageTax,
		withdraw.StageInsurance,
		withdraw.StageVerification,
		withdraw.StageSecurity,
		withdraw.StageAccess,
	} {
		body := PinNotification(string(stage), "4812")
		pin, ok := withdraw.RecoverPin(stage, []string{body})
		assert.True(t, ok, "notification for %s should be recoverable", stage)
		assert.Equal(t, "4812", pin)
	}
}

func TestPinFormat(t *testing.T) {
	assert.True(t, pinFormat.MatchString("0000"))
	assert.True(t, pinFormat.MatchString("9876"))
	assert.False(t, pinFormat.MatchString("123"))
	assert.False(t, pinFormat.MatchString("12345"))
	assert.False(t, pinFormat.MatchString("12a4"))
	assert.False(t, pinFormat.MatchString(""))
}
