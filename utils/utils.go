// Package utils holds small generic helpers shared across the
// command layer and the engine, kept separate from the domain
// packages under internal/ since none of them are specific to video
// playback or OSC control.
package utils

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
)

// ContextDone reports whether ctx has already been cancelled or timed
// out, without blocking.
func ContextDone(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// PanicRecover recovers from a panic in the calling goroutine,
// logging the stack trace. Deferred at the top of any goroutine that
// must not bring the whole process down.
func PanicRecover() {
	if r := recover(); r != nil {
		const size = 64 << 10
		buf := make([]byte, size)
		buf = buf[:runtime.Stack(buf, false)]
		log.Error().Str("stack", string(buf)).Any("error", r).Msg("panic recover")
	}
}

// PanicRecoverWithInfo is PanicRecover with an extra label identifying
// which goroutine recovered, for processes running several of them.
func PanicRecoverWithInfo(info string) {
	if r := recover(); r != nil {
		const size = 64 << 10
		buf := make([]byte, size)
		buf = buf[:runtime.Stack(buf, false)]
		log.Error().Str("info", info).Str("stack", string(buf)).Any("error", r).Msg("panic recover")
	}
}

// TimeNowMillisecond returns the current Unix time in milliseconds.
func TimeNowMillisecond() uint64 {
	return uint64(time.Now().UnixNano() / int64(time.Millisecond))
}

// FileExists reports whether path exists on disk (regardless of type).
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
