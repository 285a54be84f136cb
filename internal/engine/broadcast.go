package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/streamglitch/glitcher/internal/oscvar"
	"github.com/streamglitch/glitcher/internal/thumbnailserver"
)

// palette cycles a small set of distinct colors across video labels so
// a controller UI can tell adjacent entries apart at a glance; each
// triple is sent over OSC as an 8-digit RGBA hex string (matching the
// source's "EF476FFF"-style palette), not as separate int args.
var palette = [][3]int32{
	{230, 25, 75}, {60, 180, 75}, {255, 225, 25},
	{0, 130, 200}, {245, 130, 48}, {145, 30, 180},
	{70, 240, 240}, {240, 50, 230},
}

func hexColor(c [3]int32) string {
	return fmt.Sprintf("%02X%02X%02XFF", c[0], c[1], c[2])
}

// RunPeriodicBroadcast sends the full entry catalogue (label, color,
// thumbnail URL per video_num) once, then the changed-variable
// envelope every interval, until ctx is cancelled. The catalogue is
// static for the process lifetime so it only needs sending once per
// new client address.
func (e *Engine) RunPeriodicBroadcast(ctx context.Context, interval time.Duration, thumbnailBaseURL string) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastClientAddr := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.mu.Lock()
			if e.Params.ClientAddr != "" && e.Params.ClientAddr != lastClientAddr {
				e.sendCatalogueLocked(thumbnailBaseURL)
				lastClientAddr = e.Params.ClientAddr
			}
			e.broadcastChangedLocked()
			e.mu.Unlock()
		}
	}
}

func (e *Engine) sendCatalogueLocked(thumbnailBaseURL string) {
	if e.sender == nil {
		return
	}
	for i, entry := range e.entries {
		_ = oscvar.SendTo(e.sender, fmt.Sprintf("/label_%d", i), []interface{}{entry.Label})
		color := hexColor(palette[i%len(palette)])
		_ = oscvar.SendTo(e.sender, fmt.Sprintf("/label_%d/color", i), []interface{}{color})

		if entry.ThumbnailPath != "" {
			url := thumbnailserver.URLFor(thumbnailBaseURL, filepath.Base(entry.ThumbnailPath))
			_ = oscvar.SendTo(e.sender, fmt.Sprintf("/thumbnail_%d", i), []interface{}{url})
		}
	}
}
