package engine

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/streamglitch/glitcher/internal/oscvar"
	"github.com/streamglitch/glitcher/utils"
)

// Run starts the emit loop on the calling goroutine (the only writer
// of e.out, matching the one-thread-touches-stdout constraint) and
// blocks until ctx is cancelled. OSC listening and periodic
// broadcasting are the caller's responsibility to start alongside
// Run, typically via errgroup or a similar fan-out, since they have
// no dependency on the emit loop's goroutine identity.
func (e *Engine) Run(ctx context.Context) error {
	timer := e.loop.Timer()
	for {
		if utils.ContextDone(ctx) {
			return nil
		}
		start := timer.BeginLoop()
		paced, err := e.Tick()
		if err != nil {
			log.Error().Err(err).Msg("tick failed")
		}
		if paced {
			timer.EndLoop(start)
		}
	}
}

// BroadcastChanged sends every locally-changed variable to the
// current client address, a no-op if none has announced itself yet.
// Called by the periodic broadcaster; handleMessage does the same via
// broadcastChangedLocked after every message it handles.
func (e *Engine) BroadcastChanged() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.broadcastChangedLocked()
}

func (e *Engine) broadcastChangedLocked() {
	if e.sender == nil || e.Params.ClientAddr == "" {
		return
	}
	e.Params.SendChanged(func(addr string, args []interface{}) {
		if err := oscvar.SendTo(e.sender, addr, args); err != nil {
			log.Warn().Err(err).Str("addr", addr).Msg("failed to send osc message")
		}
	})
}
