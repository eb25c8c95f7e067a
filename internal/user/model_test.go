package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&User{TimerActive: false, TimerEnds: &past}).TimerExpired(now),
		"disarmed timer never expires")
	assert.False(t, (&User{TimerActive: true, TimerEnds: nil}).TimerExpired(now),
		"armed timer without a deadline never expires")
	assert.False(t, (&User{TimerActive: true, TimerEnds: &future}).TimerExpired(now))
	assert.True(t, (&User{TimerActive: true, TimerEnds: &past}).TimerExpired(now))
}
