package engine

import (
	"context"
	"fmt"
	"time"

	osc "github.com/hypebeast/go-osc"
	"github.com/rs/zerolog/log"

	"github.com/streamglitch/glitcher/internal/control"
	"github.com/streamglitch/glitcher/internal/oscvar"
)

// SetSender installs the destination for outgoing OSC broadcasts,
// normally an *osc.Client pointed at --send-addr.
func (e *Engine) SetSender(s oscvar.Sender) {
	e.mu.Lock()
	e.sender = s
	e.mu.Unlock()
}

// handleMessage is the single entry point for every incoming OSC
// message, whether decoded by the real go-osc server or, in tests, a
// fake. Non-variable addresses are tried first since a couple of them
// (/active_slot, /edit_slot) need side effects the oscvar.Node
// delegation chain can't express.
func (e *Engine) handleMessage(addr string, args []interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handleDirective(addr, args) {
		e.broadcastChangedLocked()
		return
	}
	if !e.Params.HandleOSC(addr, args) {
		log.Debug().Str("addr", addr).Msg("unrecognised osc address")
		return
	}
	e.applySideEffects()
	e.broadcastChangedLocked()
}

// handleDirective dispatches the non-variable address surface: one-shot
// commands and slot selectors that act on Params/Engine state directly
// rather than through an oscvar.Var.
func (e *Engine) handleDirective(addr string, args []interface{}) bool {
	switch addr {
	case "/set_client_address":
		host, port, ok := twoArgsHostPort(args)
		if !ok {
			return true
		}
		e.Params.ClientAddr = fmt.Sprintf("%s:%d", host, port)
		e.sender = osc.NewClient(host, int(port))
		return true

	case "/active_slot":
		if n, ok := int32Arg(args); ok {
			e.Params.SetActiveSlot(int(n))
			e.syncActiveToSubsystems()
		}
		return true

	case "/edit_slot":
		if n, ok := int32Arg(args); ok {
			e.Params.SetEditSlot(int(n))
		}
		return true

	case "/copy_active":
		e.Params.CopyActiveToEdit()
		return true

	case "/skip_frames":
		if n, ok := int32Arg(args); ok {
			e.Params.SkipFrames = int(n)
		}
		return true

	case "/short_loop":
		if len(args) == 2 {
			first, ok1 := args[0].(int32)
			length, ok2 := args[1].(int32)
			if ok1 && ok2 {
				f := int(first)
				e.Params.ShortLoop = control.ShortLoop{FirstFrame: &f, Len: int(length)}
			}
		}
		return true

	case "/record_loop":
		if on, ok := boolArg(args); ok {
			e.recordLoop(on)
		}
		return true

	case "/cut_loop":
		if frac, ok := float32Arg(args); ok {
			e.cutLoop(frac)
		}
		return true

	case "/clear_loop":
		e.Params.EditState().LoopRange.Set(oscvar.LoopRange{Set: false})
		e.Params.ShortLoop = control.ShortLoop{}
		return true

	case "/manual_beat":
		e.predictor.PutInputBeat(time.Now())
		return true

	case "/traktor/beat":
		if e.Params.UseExternalBeat.Get() {
			e.predictor.PutInputBeat(time.Now())
		}
		return true

	case "/reset":
		e.Params.ShortLoop = control.ShortLoop{}
		e.Params.SkipFrames = 0
		if e.cur != nil {
			e.frameIdx = primingIndex(e.cur)
		}
		return true
	}
	return false
}

// recordLoop implements /record_loop bool: true latches the edit
// slot's loop_range.from to the current playhead, false latches
// loop_range.to, preserving whichever bound isn't being set (default
// full range 0..1 if none was recorded yet).
func (e *Engine) recordLoop(setStart bool) {
	if e.cur == nil || e.cur.totalFrames() == 0 {
		return
	}
	playhead := float32(e.frameIdx) / float32(e.cur.totalFrames())

	lr := e.Params.EditState().LoopRange.Get()
	if !lr.Set {
		lr = oscvar.LoopRange{Set: true, From: 0, To: 1}
	}
	if setStart {
		lr.From = playhead
	} else {
		lr.To = playhead
	}
	e.Params.EditState().LoopRange.Set(lr)
}

// cutLoop implements /cut_loop frac: shrinks the edit slot's
// loop_range to frac of its current width, anchored at its existing
// start, mirroring the source's loop-buffer truncation which always
// cuts from the end.
func (e *Engine) cutLoop(frac float32) {
	if frac <= 0 || frac > 1 {
		return
	}
	st := e.Params.EditState()
	lr := st.LoopRange.Get()
	if !lr.Set {
		return
	}
	lr.To = lr.From + (lr.To-lr.From)*frac
	st.LoopRange.Set(lr)
}

// applySideEffects reacts to incoming changes the generic Var
// dispatch can't express as directives: fps and beat_multiplier
// retune the pacing loop and predictor respectively. Both subsystems
// track a single global rate, so an edit only takes effect
// immediately when the edit slot is the one actually live; otherwise
// it's staged and picked up by syncActiveToSubsystems the next time
// this slot becomes active.
func (e *Engine) applySideEffects() {
	st := e.Params.EditState()
	live := e.Params.IsLive()
	if st.FPS.ChangedIncoming() {
		if live {
			e.loop.Controller().SetFPS(float64(st.FPS.Get()))
		}
		st.FPS.SetHandled()
	}
	if st.BeatMultiplier.ChangedIncoming() {
		if live {
			e.predictor.SetMultiplier(st.BeatMultiplierFactor())
		}
		st.BeatMultiplier.SetHandled()
	}
}

// syncActiveToSubsystems pushes the newly active slot's fps and
// beat_multiplier into the pacing loop and beat predictor, so
// switching /active_slot takes effect immediately rather than
// waiting for the next edit to that slot.
func (e *Engine) syncActiveToSubsystems() {
	st := e.Params.ActiveState()
	e.loop.Controller().SetFPS(float64(st.FPS.Get()))
	e.predictor.SetMultiplier(st.BeatMultiplierFactor())
}

func int32Arg(args []interface{}) (int32, bool) {
	if len(args) != 1 {
		return 0, false
	}
	v, ok := args[0].(int32)
	return v, ok
}

func boolArg(args []interface{}) (bool, bool) {
	if len(args) != 1 {
		return false, false
	}
	v, ok := args[0].(bool)
	return v, ok
}

func float32Arg(args []interface{}) (float32, bool) {
	if len(args) != 1 {
		return 0, false
	}
	v, ok := args[0].(float32)
	return v, ok
}

func twoArgsHostPort(args []interface{}) (string, int32, bool) {
	if len(args) != 2 {
		return "", 0, false
	}
	host, ok1 := args[0].(string)
	port, ok2 := args[1].(int32)
	return host, port, ok1 && ok2
}

// ListenOSC blocks serving incoming OSC messages on addr until ctx is
// cancelled.
func (e *Engine) ListenOSC(ctx context.Context, addr string) error {
	d := osc.NewStandardDispatcher()
	_ = d.AddMsgHandler("*", func(msg *osc.Message) {
		e.handleMessage(msg.Address, oscvar.ArgsFromMessage(msg))
	})
	server := &osc.Server{Addr: addr, Dispatcher: d}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
