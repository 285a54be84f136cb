// Package thumbnailserver exposes a directory of thumbnail images
// over HTTP so an OSC controller UI can render them by URL rather
// than receiving image bytes over OSC.
package thumbnailserver

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Serve starts an HTTP file server rooted at dir, listening on addr,
// and blocks until ctx is cancelled, at which point it shuts the
// server down gracefully. Runs as its own goroutine, outside the
// single-mutex lock domain shared by the rest of the engine, since it
// touches no mutable playback state.
func Serve(ctx context.Context, addr, dir string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: http.FileServer(http.Dir(dir)),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("dir", dir).Msg("thumbnail server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// URLFor joins baseURL and the thumbnail's file name, the scheme
// expected by the periodic broadcaster when it sends a /thumbnail_<i>
// message to the controller.
func URLFor(baseURL, fileName string) string {
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		return baseURL + fileName
	}
	return baseURL + "/" + fileName
}
