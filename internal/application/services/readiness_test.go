package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kilometers.ai/loader/internal/core/testfixtures"
)

func TestAwaitHostReady_AlreadyReady(t *testing.T) {
	host := testfixtures.NewFakeHost()
	shim := NewReadinessShim(host, time.Millisecond, testfixtures.NewRecordingLogger())

	require.NoError(t, shim.AwaitHostReady(context.Background()))
}

func TestAwaitHostReady_WaitsForNavigator(t *testing.T) {
	host := testfixtures.NewFakeHost()
	host.SetReady(false)
	shim := NewReadinessShim(host, 5*time.Millisecond, testfixtures.NewRecordingLogger())

	go func() {
		time.Sleep(30 * time.Millisecond)
		host.SetReady(true)
	}()

	start := time.Now()
	require.NoError(t, shim.AwaitHostReady(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestAwaitHostReady_NeverTimesOutOnItsOwn(t *testing.T) {
	host := testfixtures.NewFakeHost()
	host.SetReady(false)
	shim := NewReadinessShim(host, time.Millisecond, testfixtures.NewRecordingLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	err := shim.AwaitHostReady(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "only the caller's context ends the wait")
}

func TestNewReadinessShim_DefaultInterval(t *testing.T) {
	shim := NewReadinessShim(testfixtures.NewFakeHost(), 0, testfixtures.NewRecordingLogger())
	assert.Equal(t, DefaultHostInterval, shim.interval)
}
