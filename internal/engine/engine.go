// Package engine is the glitcher's core: the emit loop that walks a
// decoded video's NAL units according to the active control state,
// rewriting frame_num and corrupting bytes on the way out, plus the
// OSC listen, beat-consumer, and periodic-broadcast goroutines that
// drive it.
package engine

import (
	"io"
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/streamglitch/glitcher/internal/beat"
	"github.com/streamglitch/glitcher/internal/control"
	"github.com/streamglitch/glitcher/internal/discovery"
	"github.com/streamglitch/glitcher/internal/h264"
	"github.com/streamglitch/glitcher/internal/oscvar"
	"github.com/streamglitch/glitcher/internal/pacing"
	"github.com/streamglitch/glitcher/internal/sigmadelta"
	"github.com/streamglitch/glitcher/internal/videocache"
)

// Engine owns the single mutex guarding Params and the playback
// cursor, per the system's lock-ordering rule: params, then
// predictor, then pacing.
type Engine struct {
	mu sync.Mutex

	Params  *control.Params
	cache   *videocache.Cache
	entries []discovery.Entry

	predictor        *beat.Predictor
	quantizer        *sigmadelta.Quantizer
	loop             *pacing.Loop
	rewriteFrameNums bool
	out              io.Writer
	rng              *rand.Rand
	sender           oscvar.Sender

	cur         *parsedVideo
	frameIdx    int // index into cur.video.NALs
	outFrameNum uint32
	primed      bool // whether the one-time initial priming walk has run
}

// New builds an Engine against the given video directory entries. fps
// is the initial pacing rate; New also stores it in
// Params.ActiveState().FPS.
func New(entries []discovery.Entry, cache *videocache.Cache, fps float64, rewriteFrameNums bool, out io.Writer) *Engine {
	params := control.NewParams()
	params.ActiveState().FPS.Set(float32(fps))

	return &Engine{
		Params:           params,
		cache:            cache,
		entries:          entries,
		predictor:        beat.NewPredictor(),
		quantizer:        sigmadelta.New(),
		loop:             pacing.New(fps),
		rewriteFrameNums: rewriteFrameNums,
		out:              out,
		rng:              rand.New(rand.NewSource(1)),
	}
}

// loadActive ensures cur refers to the active slot's currently
// selected video, (re)loading from cache on a video_num change. The
// very first video ever loaded is primed per §4.10's "Initial
// priming": walked and written NAL by NAL up to and including the
// first IDR, guaranteeing a keyframe on the output before anything
// else happens. Subsequent switches just reset current_frame to 0,
// per the per-tick algorithm's step 1 (no re-priming on every
// switch).
func (e *Engine) loadActive() error {
	videoNum := e.Params.ActiveState().VideoNum.Get()
	if videoNum < 0 || videoNum >= len(e.entries) {
		return nil
	}
	entry := e.entries[videoNum]
	if e.cur != nil && e.cur.video.Path == entry.Path {
		return nil
	}
	v, err := e.cache.Acquire(entry.Path)
	if err != nil {
		return err
	}
	pv, err := parseVideo(v)
	if err != nil {
		return err
	}
	e.cur = pv
	e.outFrameNum = 0
	if !e.primed {
		e.primed = true
		return e.primeVideo()
	}
	e.frameIdx = 0
	return nil
}

// primeVideo implements the one-time initial priming walk: every NAL
// up to and including the first IDR is written unconditionally
// (bypassing the usual non-IDR/pass_iframe emission gate), then
// frameIdx is left positioned on that IDR so steady-state ticking
// resumes right after it.
func (e *Engine) primeVideo() error {
	idr := primingIndex(e.cur)
	for i := 0; i <= idr; i++ {
		if err := e.writeFrame(i); err != nil {
			return err
		}
	}
	e.frameIdx = idr
	return nil
}

// primingIndex returns the index of the video's first IDR NAL, or 0
// if it has none.
func primingIndex(pv *parsedVideo) int {
	first := pv.video.FirstIDR()
	if first < 0 {
		return 0
	}
	return first
}

// Tick runs one pacing period: advance the playhead, emit the
// resulting NAL (possibly repeated per the sigma-delta quantizer) and
// report whether the emit thread should pace (wait out the rest of
// the frame period) or loop immediately, per §4.10 steps 6-7.
func (e *Engine) Tick() (paced bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.loadActive(); err != nil {
		log.Warn().Err(err).Msg("failed to load active video")
		return false, nil
	}
	if e.cur == nil || e.cur.totalFrames() == 0 {
		return false, nil
	}

	if e.Params.RestartLoop {
		e.frameIdx = 0
		e.Params.RestartLoop = false
	}

	if n := e.Params.SkipFrames; n != 0 {
		e.Params.SkipFrames = 0
		if n > 0 {
			for i := 0; i < n; i++ {
				e.frameIdx = advanceFrame(e.Params, e.cur.totalFrames(), e.frameIdx)
			}
		}
	}

	st := e.Params.ActiveState()
	repeats := e.quantizer.Put(float64(st.FrameRepeat.Get()))
	if repeats < 0 {
		repeats = 0
	}

	e.frameIdx = advanceFrame(e.Params, e.cur.totalFrames(), e.frameIdx)
	nal := e.cur.video.NALs[e.frameIdx]
	shouldEmit := nal.NalUnitType != h264.NALCodedSliceIDR || st.PassIframe.Get()
	wrote := false
	if shouldEmit {
		for i := 0; i < repeats; i++ {
			if err := e.writeFrame(e.frameIdx); err != nil {
				return false, err
			}
			wrote = true
		}
	}

	st.Playhead.Set(float32(e.frameIdx) / float32(e.cur.totalFrames()))

	return wrote && nal.NalUnitType.IsPictureData(), nil
}

// writeFrame unconditionally writes the NAL at frameIdx to out,
// rewriting frame_num on slice NALs when enabled and corrupting the
// bytes of picture-data NALs per byte_errors, then advances
// outFrameNum. Callers decide whether
// the emission gate in §4.10 step 6 (non-IDR slice, or pass_iframe)
// permits calling this at all; the initial priming walk calls it
// unconditionally since every NAL up to the first IDR must reach the
// output regardless of pass_iframe.
func (e *Engine) writeFrame(frameIdx int) error {
	st := e.Params.ActiveState()
	nal := e.cur.video.NALs[frameIdx]

	payload := nal.RBSP
	if e.rewriteFrameNums && e.cur.canRewrite() {
		if sh, err := h264.ParseSliceHeader(nal.RBSP, e.cur.sps, e.cur.pps, nal.NalUnitType); err == nil {
			payload = sh.ToBytes(e.outFrameNum % (uint32(1) << uint(sh.FrameNumBits)))
		}
	}

	skipCorrupt := !nal.NalUnitType.IsPictureData() || (st.PassIframe.Get() && nal.NalUnitType.IsIDR())
	if !skipCorrupt {
		payload = corruptBytes(payload, float64(st.ByteErrors.Get()), e.rng)
	}

	out := h264.NalUnit{NalRefIdc: nal.NalRefIdc, NalUnitType: nal.NalUnitType, RBSP: payload}
	if _, err := e.out.Write(startCode); err != nil {
		return err
	}
	if _, err := e.out.Write(out.EncodeNAL()); err != nil {
		return err
	}
	e.outFrameNum++
	return nil
}

var startCode = []byte{0x00, 0x00, 0x00, 0x01}

// corruptBytes returns a copy of data with each byte independently
// flipped to a random value with probability p.
func corruptBytes(data []byte, p float64, rng *rand.Rand) []byte {
	if p <= 0 {
		return data
	}
	out := append([]byte(nil), data...)
	for i := range out {
		if rng.Float64() < p {
			out[i] = byte(rng.Intn(256))
		}
	}
	return out
}

// clampFrame wraps idx into [0, total) with a non-negative modulus.
func clampFrame(idx, total int) int {
	if total <= 0 {
		return 0
	}
	idx %= total
	if idx < 0 {
		idx += total
	}
	return idx
}

// advanceFrame implements the advance-frame priority order: a pending
// short_loop overrides everything; otherwise the active slot's
// loop_range is honored if set; otherwise playback wraps over the
// full video.
func advanceFrame(p *control.Params, total, cur int) int {
	if p.ShortLoop.FirstFrame != nil {
		first := clampFrame(*p.ShortLoop.FirstFrame, total)
		length := p.ShortLoop.Len
		if length <= 0 {
			length = 1
		}
		next := cur + 1
		if next >= first+length || next >= total {
			next = first
		}
		return clampFrame(next, total)
	}

	lr := p.ActiveState().LoopRange.Get()
	if lr.Set {
		from := clampFrame(int(lr.From*float32(total)), total)
		to := int(lr.To * float32(total))
		if to <= from {
			to = from + 1
		}
		next := cur + 1
		if next >= to || next < from {
			next = from
		}
		return clampFrame(next, total)
	}

	next := cur + 1
	if next >= total {
		next = 0
	}
	return next
}
