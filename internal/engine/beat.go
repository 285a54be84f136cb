package engine

import (
	"context"
	"time"

	"github.com/streamglitch/glitcher/internal/oscvar"
	"github.com/streamglitch/glitcher/utils"
)

// RunBeatConsumer polls the beat predictor and, once per beat_divider
// input beats, sends /beat_delayed and applies the active slot's
// beat-driven effects (auto_skip, auto_switch_n, loop_to_beat), per
// §4.10.3. It sleeps in chunks of at most 100ms so a predictor reset
// (a new input beat changing the period) is never missed by more than
// that, matching the source's beat_thread.
func (e *Engine) RunBeatConsumer(ctx context.Context) {
	var beatNum int32
	autoSwitchIdx := 0

	for {
		if utils.ContextDone(ctx) {
			return
		}

		e.mu.Lock()
		offset := time.Duration(float64(e.Params.BeatOffset.Get()) * float64(time.Second))
		dur, ok := e.predictor.DurationToNextBeat(time.Now(), offset)
		e.mu.Unlock()

		if !ok {
			if sleepOrDone(ctx, 100*time.Millisecond) {
				return
			}
			continue
		}
		if dur > 100*time.Millisecond {
			if sleepOrDone(ctx, 90*time.Millisecond) {
				return
			}
			continue
		}
		if sleepOrDone(ctx, dur) {
			return
		}

		beatNum++
		e.mu.Lock()
		if beatNum < e.Params.BeatDivider.Get() {
			e.mu.Unlock()
			continue
		}
		beatNum = 0
		e.onBeatLocked(&autoSwitchIdx)
		e.mu.Unlock()
	}
}

// onBeatLocked applies one effective beat's worth of beat-driven
// effects to the active slot. Called with e.mu held.
func (e *Engine) onBeatLocked(autoSwitchIdx *int) {
	if e.sender != nil && e.Params.ClientAddr != "" {
		_ = oscvar.SendTo(e.sender, "/beat_delayed", []interface{}{int32(1)})
	}

	st := e.Params.ActiveState()

	if st.AutoSkip.Get() {
		e.Params.SkipFrames = 20
		e.loop.Controller().WakeUpNow()
	}

	if n := int(st.AutoSwitchN.Get()); n > 0 && len(st.SwitchHistory) > 0 {
		*autoSwitchIdx++
		if *autoSwitchIdx >= len(st.SwitchHistory) || *autoSwitchIdx > n {
			*autoSwitchIdx = 0
		}
		st.SetVideoNum(st.SwitchHistory[*autoSwitchIdx])
		e.loop.Controller().WakeUpNow()
	}

	if st.LoopToBeat.Get() {
		e.Params.RestartLoop = true
	}
}

// sleepOrDone blocks for d or until ctx is cancelled, whichever comes
// first, reporting whether ctx was the reason it returned.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return true
	case <-t.C:
		return false
	}
}
