// Package control holds the shared mutable state of the glitcher: the
// six parallel State slots and the StreamingParams envelope around
// them, all guarded by a single mutex per the system's concurrency
// model.
package control

import (
	"github.com/streamglitch/glitcher/internal/oscvar"
)

// MaxSwitchHistory bounds the ring of recently selected video numbers
// used by the beat-driven auto-switch effect.
const MaxSwitchHistory = 5

// State is one of the six parallel playback-control slots. Every
// field is a change-tracked oscvar.Var so the composite can be
// dispatched and broadcast uniformly via the oscvar.Node capability.
type State struct {
	VideoNum       *oscvar.Var[int]
	BeatMultiplier *oscvar.Var[int32]
	PassIframe     *oscvar.Var[bool]
	Playhead       *oscvar.Var[float32] // output-only, written by the engine
	LoopRange      *oscvar.Var[oscvar.LoopRange]
	AutoSkip       *oscvar.Var[bool]
	FrameRepeat    *oscvar.Var[float32]
	LoopToBeat     *oscvar.Var[bool]
	FPS            *oscvar.Var[float32]
	AutoSwitchN    *oscvar.Var[int32]
	ByteErrors     *oscvar.Var[float32]

	// SwitchHistory holds the last MaxSwitchHistory distinct video
	// selections, most recent first (index 0 is always the current
	// VideoNum). It is not independently OSC-addressable; it is
	// maintained as a side effect of VideoNum changes and consumed by
	// the auto-switch beat effect.
	SwitchHistory []int
}

// NewState returns a State with default values and every variable
// flagged changed-outgoing, matching oscvar.Var's construction
// default so a freshly-connected controller converges on first
// broadcast.
func NewState() *State {
	return &State{
		VideoNum:       oscvar.NewVar("/video_num", 0, oscvar.Size),
		BeatMultiplier: oscvar.NewVar("/beat_multiplier", int32(0), oscvar.Int32),
		PassIframe:     oscvar.NewVar("/pass_iframe", false, oscvar.Bool),
		Playhead:       oscvar.NewVar("/playhead", float32(0), oscvar.Float32),
		LoopRange:      oscvar.NewVar("/loop_range", oscvar.LoopRange{}, oscvar.LoopRangeCodec),
		AutoSkip:       oscvar.NewVar("/auto_skip", false, oscvar.Bool),
		FrameRepeat:    oscvar.NewVar("/frame_repeat", float32(1), oscvar.Float32),
		LoopToBeat:     oscvar.NewVar("/loop_to_beat", false, oscvar.Bool),
		FPS:            oscvar.NewVar("/fps", float32(24), oscvar.Float32),
		AutoSwitchN:    oscvar.NewVar("/auto_switch_n", int32(0), oscvar.Int32),
		ByteErrors:     oscvar.NewVar("/byte_errors", float32(0), oscvar.Float32),
	}
}

// nodes lists the members in delegation order: HandleOSC tries each
// in turn and stops at the first match, SendChanged/SetChanged visit
// all of them.
func (s *State) nodes() []oscvar.Node {
	return []oscvar.Node{
		s.VideoNum, s.BeatMultiplier, s.PassIframe, s.Playhead,
		s.LoopRange, s.AutoSkip, s.FrameRepeat, s.LoopToBeat,
		s.FPS, s.AutoSwitchN, s.ByteErrors,
	}
}

// HandleOSC implements oscvar.Node for the composite State, with one
// addition over a plain delegating loop: a successful change to
// VideoNum pushes the new value into SwitchHistory, matching the
// source behavior of tracking recent selections for auto-switch.
func (s *State) HandleOSC(addr string, args []interface{}) bool {
	for _, n := range s.nodes() {
		if n.HandleOSC(addr, args) {
			if n == oscvar.Node(s.VideoNum) && s.VideoNum.ChangedIncoming() {
				s.pushSwitchHistory(s.VideoNum.Get())
			}
			return true
		}
	}
	return false
}

// pushSwitchHistory moves v to the front of the capped
// most-recent-first history: an earlier occurrence of v is removed
// first, so every entry is distinct.
func (s *State) pushSwitchHistory(v int) {
	for i, h := range s.SwitchHistory {
		if h == v {
			s.SwitchHistory = append(s.SwitchHistory[:i], s.SwitchHistory[i+1:]...)
			break
		}
	}
	if len(s.SwitchHistory) >= MaxSwitchHistory {
		s.SwitchHistory = s.SwitchHistory[:MaxSwitchHistory-1]
	}
	s.SwitchHistory = append([]int{v}, s.SwitchHistory...)
}

// SendChanged implements oscvar.Node.
func (s *State) SendChanged(send func(addr string, args []interface{})) {
	for _, n := range s.nodes() {
		n.SendChanged(send)
	}
}

// SetChanged implements oscvar.Node.
func (s *State) SetChanged() {
	for _, n := range s.nodes() {
		n.SetChanged()
	}
}

// SetVideoNum directly sets VideoNum (used when the engine itself
// rotates slots, bypassing OSC), also maintaining switch history.
func (s *State) SetVideoNum(v int) {
	if v != s.VideoNum.Get() {
		s.VideoNum.Set(v)
		s.pushSwitchHistory(v)
	}
}

// BeatMultiplierFactor returns 0.5^BeatMultiplier, the factor applied
// to the beat predictor's period.
func (s *State) BeatMultiplierFactor() float64 {
	m := s.BeatMultiplier.Get()
	factor := 1.0
	if m >= 0 {
		for i := int32(0); i < m; i++ {
			factor /= 2
		}
	} else {
		for i := int32(0); i < -m; i++ {
			factor *= 2
		}
	}
	return factor
}
