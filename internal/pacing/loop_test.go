package pacing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEndLoopWaitsApproximatelyOnePeriod(t *testing.T) {
	l := New(100) // 10ms period
	timer := l.Timer()
	start := timer.BeginLoop()
	timer.EndLoop(start)
	elapsed := time.Since(start)
	require.GreaterOrEqual(t, elapsed, 9*time.Millisecond)
	require.Less(t, elapsed, 100*time.Millisecond)
}

func TestWakeUpNowShortCircuits(t *testing.T) {
	l := New(1) // 1s period, would block for a full second without the override
	ctrl := l.Controller()
	timer := l.Timer()
	start := timer.BeginLoop()

	done := make(chan struct{})
	go func() {
		timer.EndLoop(start)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	ctrl.WakeUpNow()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("EndLoop did not return promptly after WakeUpNow")
	}
}

func TestSetFPSUpdatesRate(t *testing.T) {
	l := New(1000)
	ctrl := l.Controller()
	require.Equal(t, float64(1000), ctrl.FPS())
	ctrl.SetFPS(240)
	require.Equal(t, float64(240), ctrl.FPS())
}
