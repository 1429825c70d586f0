package control

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadlineFlagZeroTimeoutIsNoop(t *testing.T) {
	d := &DeadlineFlag{}
	stop := d.ArmTimer(context.Background(), 0)
	defer stop()
	assert.False(t, d.IsSet())
}

func TestDeadlineFlagFiresAfterTimeout(t *testing.T) {
	d := &DeadlineFlag{}
	stop := d.ArmTimer(context.Background(), 20*time.Millisecond)
	defer stop()

	assert.Eventually(t, d.IsSet, time.Second, 5*time.Millisecond)
}

func TestDeadlineFlagCtxCancelDoesNotSetFlag(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := &DeadlineFlag{}
	stop := d.ArmTimer(ctx, time.Hour)
	defer stop()

	cancel()
	time.Sleep(20 * time.Millisecond)
	assert.False(t, d.IsSet(), "normal context cancellation must never report a deadline")
}

func TestDeadlineFlagStopPreventsLateFire(t *testing.T) {
	d := &DeadlineFlag{}
	stop := d.ArmTimer(context.Background(), 20*time.Millisecond)
	stop()
	time.Sleep(40 * time.Millisecond)
	assert.False(t, d.IsSet())
}
