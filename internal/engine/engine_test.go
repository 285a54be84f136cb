package engine

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/streamglitch/glitcher/internal/control"
	"github.com/streamglitch/glitcher/internal/discovery"
	"github.com/streamglitch/glitcher/internal/oscvar"
	"github.com/streamglitch/glitcher/internal/oscvar/mocks"
	"github.com/streamglitch/glitcher/internal/videocache"
)

// writeFixtureVideo writes numFrames picture NALs (first one IDR, the
// rest non-IDR), optionally preceded by an SPS/PPS pair so tests can
// exercise the fact that current_video.frames is the full NAL
// sequence, not just its picture-data subsequence.
func writeFixtureVideo(t *testing.T, dir, name string, numFrames int, withParamSets bool) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var buf bytes.Buffer
	if withParamSets {
		buf.Write([]byte{0x00, 0x00, 0x00, 0x01})
		buf.WriteByte(0x67) // SPS
		buf.WriteByte(0xBB)
		buf.Write([]byte{0x00, 0x00, 0x00, 0x01})
		buf.WriteByte(0x68) // PPS
		buf.WriteByte(0xCC)
	}
	for i := 0; i < numFrames; i++ {
		buf.Write([]byte{0x00, 0x00, 0x00, 0x01})
		if i == 0 {
			buf.WriteByte(0x65) // IDR
		} else {
			buf.WriteByte(0x41) // non-IDR slice
		}
		buf.WriteByte(0xAA)
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func newTestEngine(t *testing.T, numFrames int) *Engine {
	t.Helper()
	return newTestEngineWithParamSets(t, numFrames, false)
}

func newTestEngineWithParamSets(t *testing.T, numFrames int, withParamSets bool) *Engine {
	t.Helper()
	dir := t.TempDir()
	path := writeFixtureVideo(t, dir, "v0.h264", numFrames, withParamSets)
	cache := videocache.New()
	entries := []discovery.Entry{{Path: path, Label: "v0"}}
	e := New(entries, cache, 24, false, &bytes.Buffer{})
	return e
}

func TestAdvanceFrameFullRangeWraps(t *testing.T) {
	p := control.NewParams()
	require.Equal(t, 0, advanceFrame(p, 5, 4))
	require.Equal(t, 3, advanceFrame(p, 5, 2))
}

func TestAdvanceFrameHonorsLoopRange(t *testing.T) {
	p := control.NewParams()
	p.ActiveState().LoopRange.Set(oscvar.LoopRange{Set: true, From: 0.2, To: 0.6})
	// total=10 -> from=2, to=6
	require.Equal(t, 3, advanceFrame(p, 10, 2))
	require.Equal(t, 2, advanceFrame(p, 10, 5)) // wraps back to from
}

func TestAdvanceFrameShortLoopTakesPriorityOverLoopRange(t *testing.T) {
	p := control.NewParams()
	p.ActiveState().LoopRange.Set(oscvar.LoopRange{Set: true, From: 0.2, To: 0.6})
	first := 0
	p.ShortLoop.FirstFrame = &first
	p.ShortLoop.Len = 2
	require.Equal(t, 1, advanceFrame(p, 10, 0))
	require.Equal(t, 0, advanceFrame(p, 10, 1)) // wraps at short loop boundary
}

func TestCorruptBytesNoOpAtZeroProbability(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	out := corruptBytes(data, 0, rand.New(rand.NewSource(1)))
	require.Equal(t, data, out)
}

func TestCorruptBytesAtFullProbabilityChangesData(t *testing.T) {
	data := make([]byte, 32)
	out := corruptBytes(data, 1.0, rand.New(rand.NewSource(2)))
	require.NotEqual(t, data, out)
}

func TestClampFrameWrapsNegative(t *testing.T) {
	require.Equal(t, 4, clampFrame(-1, 5))
	require.Equal(t, 0, clampFrame(5, 5))
	require.Equal(t, 0, clampFrame(0, 0))
}

func TestTickPrimesToFirstIDRAndAdvances(t *testing.T) {
	e := newTestEngine(t, 4)
	_, err := e.Tick()
	require.NoError(t, err)
	require.NotNil(t, e.cur)
	// After one tick the playhead has moved off the priming frame.
	require.Greater(t, e.frameIdx, 0)
}

// TestTickWritesSPSAndPPSDuringPriming guards against the fatal bug
// where SPS/PPS NALs, sitting outside frameAt's old picture-data-only
// index, could never reach the output: the priming walk writes every
// NAL up to and including the first IDR unconditionally, so SPS/PPS
// must appear in the output stream ahead of the first IDR.
func TestTickWritesSPSAndPPSDuringPriming(t *testing.T) {
	e := newTestEngineWithParamSets(t, 3, true)
	buf := &bytes.Buffer{}
	e.out = buf

	_, err := e.Tick()
	require.NoError(t, err)

	out := buf.Bytes()
	require.True(t, bytes.Contains(out, []byte{0x67, 0xBB})) // SPS payload
	require.True(t, bytes.Contains(out, []byte{0x68, 0xCC})) // PPS payload
	require.True(t, bytes.Contains(out, []byte{0x65, 0xAA})) // first IDR payload

	// current_video.frames indexes the full NAL sequence (sps, pps, idr,
	// non-idr, non-idr), so totalFrames must be 5, not 3.
	require.Equal(t, 5, e.cur.totalFrames())
}

func TestHandleDirectiveSetClientAddress(t *testing.T) {
	e := newTestEngine(t, 4)
	e.handleMessage("/set_client_address", []interface{}{"127.0.0.1", int32(9000)})
	require.Equal(t, "127.0.0.1:9000", e.Params.ClientAddr)
}

// TestHandleDirectiveRecordAndCutLoop exercises the documented
// /record_loop bool / /cut_loop frac protocol (§4.11, scenario §8.9(d)):
// record_loop true latches loop_range.from to the current playhead,
// record_loop false latches loop_range.to, and cut_loop frac shrinks
// the resulting window from its end.
func TestHandleDirectiveRecordAndCutLoop(t *testing.T) {
	e := newTestEngine(t, 10)
	_, err := e.Tick() // load video
	require.NoError(t, err)

	e.frameIdx = 3 // 3/10 = 0.3
	e.handleMessage("/record_loop", []interface{}{true})
	e.frameIdx = 5 // 5/10 = 0.5
	e.handleMessage("/record_loop", []interface{}{false})

	lr := e.Params.EditState().LoopRange.Get()
	require.True(t, lr.Set)
	require.InDelta(t, 0.3, lr.From, 1e-6)
	require.InDelta(t, 0.5, lr.To, 1e-6)

	e.handleMessage("/cut_loop", []interface{}{float32(0.5)})
	lr = e.Params.EditState().LoopRange.Get()
	require.InDelta(t, 0.3, lr.From, 1e-6)
	require.InDelta(t, 0.4, lr.To, 1e-6)
}

func TestCutLoopIgnoresOutOfRangeFraction(t *testing.T) {
	e := newTestEngine(t, 10)
	e.Params.EditState().LoopRange.Set(oscvar.LoopRange{Set: true, From: 0.2, To: 0.8})
	e.handleMessage("/cut_loop", []interface{}{float32(0)})
	e.handleMessage("/cut_loop", []interface{}{float32(1.5)})

	lr := e.Params.EditState().LoopRange.Get()
	require.InDelta(t, 0.2, lr.From, 1e-6)
	require.InDelta(t, 0.8, lr.To, 1e-6)
}

func TestHandleDirectiveClearLoopResetsShortLoopToo(t *testing.T) {
	e := newTestEngine(t, 10)
	f := 1
	e.Params.ShortLoop = control.ShortLoop{FirstFrame: &f, Len: 3}
	e.handleMessage("/clear_loop", nil)
	require.Nil(t, e.Params.ShortLoop.FirstFrame)
}

// TestSkipFramesAdvancesOneStepAtATime confirms skip_frames steps
// through advanceFrame n times rather than jumping the index directly,
// so an active loop_range constrains where skip_frames can land.
func TestSkipFramesAdvancesOneStepAtATime(t *testing.T) {
	e := newTestEngine(t, 10)
	_, err := e.Tick() // prime, lands on first IDR (index 0)
	require.NoError(t, err)

	e.Params.ActiveState().LoopRange.Set(oscvar.LoopRange{Set: true, From: 0.1, To: 0.4})
	e.frameIdx = 1
	e.Params.SkipFrames = 10 // far more than the loop window holds

	_, err = e.Tick()
	require.NoError(t, err)

	require.GreaterOrEqual(t, e.frameIdx, 1)
	require.Less(t, e.frameIdx, 4)
}

// TestOnBeatAppliesAutoSkip confirms a beat with auto_skip set queues
// a 20-frame skip_frames directive, per §4.10.3.
func TestOnBeatAppliesAutoSkip(t *testing.T) {
	e := newTestEngine(t, 10)
	e.Params.ActiveState().AutoSkip.Set(true)

	idx := 0
	e.onBeatLocked(&idx)

	require.Equal(t, 20, e.Params.SkipFrames)
}

// TestOnBeatAppliesLoopToBeat confirms a beat with loop_to_beat set
// requests a loop restart on the next tick, per §4.10.3.
func TestOnBeatAppliesLoopToBeat(t *testing.T) {
	e := newTestEngine(t, 10)
	e.Params.ActiveState().LoopToBeat.Set(true)

	idx := 0
	e.onBeatLocked(&idx)

	require.True(t, e.Params.RestartLoop)
}

// TestOnBeatAppliesAutoSwitchN rotates the active slot to a different
// entry in its recorded switch_history on an effective beat while
// auto_switch_n is set, per §4.10.3.
func TestOnBeatAppliesAutoSwitchN(t *testing.T) {
	e := newTestEngine(t, 10)
	st := e.Params.ActiveState()
	st.SetVideoNum(1)
	st.SetVideoNum(2)
	st.AutoSwitchN.Set(int32(len(st.SwitchHistory) - 1))
	preBeat := st.VideoNum.Get()

	idx := 0
	e.onBeatLocked(&idx)

	require.NotEqual(t, preBeat, st.VideoNum.Get())
	require.Contains(t, st.SwitchHistory, st.VideoNum.Get())
}

func TestBroadcastChangedSendsNothingWithoutClientAddr(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEngine(t, 4)
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any()).Times(0)
	e.SetSender(sender)
	e.BroadcastChanged()
}

func TestBroadcastChangedSendsAfterClientAddrSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEngine(t, 4)
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any()).MinTimes(1).Return(nil)
	e.SetSender(sender)
	e.Params.ClientAddr = "127.0.0.1:9000"
	e.BroadcastChanged()
}
