// Package videocache loads Annex-B .h264 files into memory as decoded
// NAL sequences and keeps the set currently held by the engine, so a
// video switch does not re-read from disk on the hot path.
package videocache

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/streamglitch/glitcher/internal/h264"
)

// Video is one fully-decoded source file: every NAL unit in file
// order, plus the index of each IDR NAL (used to prime playback and
// to clamp loop ranges to GOP boundaries if ever needed).
type Video struct {
	Path  string
	NALs  []h264.NalUnit
	IDRAt []int
}

// FirstIDR returns the index of the first IDR NAL, or -1 if the video
// contains none (e.g. a malformed or purely intra-refresh file this
// parser couldn't classify).
func (v *Video) FirstIDR() int {
	if len(v.IDRAt) == 0 {
		return -1
	}
	return v.IDRAt[0]
}

// Load reads and fully decodes path, skipping (and logging) any NAL
// this package's parser rejects rather than failing the whole load:
// a single malformed NAL should not make an otherwise-playable file
// unusable.
func Load(path string) (*Video, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	v := &Video{Path: path}
	scanner := h264.NewNALScanner(f)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		nal, err := h264.DecodeNAL(raw)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("dropping unparseable nal unit")
			continue
		}
		if nal.NalUnitType.IsIDR() {
			v.IDRAt = append(v.IDRAt, len(v.NALs))
		}
		v.NALs = append(v.NALs, nal)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return v, nil
}

// Cache holds decoded Video instances keyed by path, reference
// counting so a video still assigned to some State slot's video_num
// is never evicted out from under the engine. Safe for concurrent
// use.
type Cache struct {
	mu     sync.Mutex
	byPath map[string]*entry
}

type entry struct {
	video    *Video
	refCount int
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{byPath: make(map[string]*entry)}
}

// Acquire returns the decoded Video for path, loading and caching it
// on first use, and incrementing its reference count. Pair with a
// matching Release when the caller no longer needs this handle.
func (c *Cache) Acquire(path string) (*Video, error) {
	c.mu.Lock()
	if e, ok := c.byPath[path]; ok {
		e.refCount++
		c.mu.Unlock()
		return e.video, nil
	}
	c.mu.Unlock()

	v, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.byPath[path]; ok {
		// Lost a race with a concurrent Acquire; keep the winner's
		// decode, discard ours.
		e.refCount++
		return e.video, nil
	}
	c.byPath[path] = &entry{video: v, refCount: 1}
	return v, nil
}

// Release drops one reference to path's cached Video, evicting it
// once the count reaches zero.
func (c *Cache) Release(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byPath[path]
	if !ok {
		return
	}
	e.refCount--
	if e.refCount <= 0 {
		delete(c.byPath, path)
	}
}

// PrefetchAll loads every path up front with a single standing
// reference each, for --prefetch mode where startup latency is traded
// for glitch-free first access to any video_num.
func (c *Cache) PrefetchAll(paths []string) error {
	for _, p := range paths {
		if _, err := c.Acquire(p); err != nil {
			return err
		}
	}
	return nil
}
