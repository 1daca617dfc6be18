package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInstantIsAlwaysReached(t *testing.T) {
	assert.True(t, INSTANT.IsReached())
}

func TestInstantIsNotEmpty(t *testing.T) {
	assert.False(t, INSTANT.IsEmpty(), "INSTANT is a deliberate zero-duration deadline, distinct from unset")
}

func TestZeroValueIsEmpty(t *testing.T) {
	var d Deadline
	assert.True(t, d.IsEmpty())
}

func TestNeverIsInfiniteAndNotReached(t *testing.T) {
	assert.True(t, NEVER.IsInfinite())
	assert.False(t, NEVER.IsReached())
}

func TestFromNowNotYetReached(t *testing.T) {
	d := FromNow(50 * time.Millisecond)
	assert.False(t, d.IsReached())
	time.Sleep(60 * time.Millisecond)
	assert.True(t, d.IsReached())
}

func TestCheckReturnsTimeoutAfterDeadline(t *testing.T) {
	d := FromNowMs(1)
	time.Sleep(5 * time.Millisecond)
	err := d.Check()
	assert.Error(t, err)
	var timeout *TimeoutError
	assert.ErrorAs(t, err, &timeout)
}

func TestRemainingClampsToZero(t *testing.T) {
	d := FromNowMs(1)
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, time.Duration(0), d.Remaining())
}
