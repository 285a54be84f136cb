package control

import "github.com/streamglitch/glitcher/internal/oscvar"

// NumSlots is the number of parallel State slots held by Params.
const NumSlots = 6

// ShortLoop is a transient loop override: the Len frames starting at
// FirstFrame repeat, taking priority over the owning slot's LoopRange,
// until the override is cleared. A nil FirstFrame means no short loop
// is pending.
type ShortLoop struct {
	FirstFrame *int
	Len        int
}

// Params is the StreamingParams envelope: the six State slots plus
// the cross-slot fields that are not per-slot (active/edit selection,
// external-beat configuration, and transient one-shot directives).
type Params struct {
	slots      [NumSlots]*State
	activeSlot int
	editSlot   int

	UseExternalBeat *oscvar.Var[bool]
	BeatOffset      *oscvar.Var[float32]
	BeatDivider     *oscvar.Var[int32]

	// isLive mirrors activeSlot == editSlot as its own change-tracked
	// variable (updated by SetActiveSlot/SetEditSlot), so a controller
	// can observe the live/editing split over /is_live without polling
	// active_slot/edit_slot itself.
	isLive *oscvar.Var[bool]

	// ClientAddr is the most recently announced controller address,
	// set via /set_client_address and used as the destination for all
	// outgoing broadcasts. Empty means no client has announced itself
	// yet, so SendChanged is a no-op.
	ClientAddr string

	// Transient directives, consumed and cleared by the engine each
	// tick; never broadcast.
	SkipFrames  int
	RestartLoop bool
	ShortLoop   ShortLoop
}

// NewParams returns a Params with all six slots initialized, slot 0
// active and being edited.
func NewParams() *Params {
	p := &Params{
		UseExternalBeat: oscvar.NewVar("/use_external_beat", false, oscvar.Bool),
		BeatOffset:      oscvar.NewVar("/beat_offset", float32(0), oscvar.Float32),
		BeatDivider:     oscvar.NewVar("/beat_divider", int32(1), oscvar.Int32),
		isLive:          oscvar.NewVar("/is_live", true, oscvar.Bool),
	}
	for i := range p.slots {
		p.slots[i] = NewState()
	}
	return p
}

// ActiveSlot and EditSlot report the currently selected slot indices.
func (p *Params) ActiveSlot() int { return p.activeSlot }
func (p *Params) EditSlot() int   { return p.editSlot }

// ActiveState returns the State currently driving output.
func (p *Params) ActiveState() *State { return p.slots[p.activeSlot] }

// EditState returns the State currently receiving OSC edits.
func (p *Params) EditState() *State { return p.slots[p.editSlot] }

// Slot returns the State at index i, for the periodic broadcaster's
// full-envelope dump and the /copy_active handler.
func (p *Params) Slot(i int) *State { return p.slots[i] }

// IsLive reports whether the edit slot is the one currently live
// (driving output), derived rather than stored per the source design.
func (p *Params) IsLive() bool { return p.activeSlot == p.editSlot }

// SetActiveSlot switches which slot drives output, clamping to the
// valid range and forcing a full resync of the newly active slot so
// a controller that was displaying a different slot catches up.
func (p *Params) SetActiveSlot(i int) {
	i = clampSlot(i)
	if i == p.activeSlot {
		return
	}
	p.activeSlot = i
	p.slots[i].SetChanged()
	p.isLive.Set(p.IsLive())
}

// SetEditSlot switches which slot receives OSC edits, forcing a full
// resync of the newly editable slot.
func (p *Params) SetEditSlot(i int) {
	i = clampSlot(i)
	if i == p.editSlot {
		return
	}
	p.editSlot = i
	p.slots[i].SetChanged()
	p.isLive.Set(p.IsLive())
}

// CopyActiveToEdit overwrites the edit slot's values with the active
// slot's, implementing the /copy_active directive. No-op when they
// are already the same slot.
func (p *Params) CopyActiveToEdit() {
	if p.IsLive() {
		return
	}
	src, dst := p.slots[p.activeSlot], p.slots[p.editSlot]
	dst.VideoNum.Set(src.VideoNum.Get())
	dst.BeatMultiplier.Set(src.BeatMultiplier.Get())
	dst.PassIframe.Set(src.PassIframe.Get())
	dst.LoopRange.Set(src.LoopRange.Get())
	dst.AutoSkip.Set(src.AutoSkip.Get())
	dst.FrameRepeat.Set(src.FrameRepeat.Get())
	dst.LoopToBeat.Set(src.LoopToBeat.Get())
	dst.FPS.Set(src.FPS.Get())
	dst.AutoSwitchN.Set(src.AutoSwitchN.Get())
}

func clampSlot(i int) int {
	if i < 0 {
		return 0
	}
	if i >= NumSlots {
		return NumSlots - 1
	}
	return i
}

// nodes lists the envelope-level variables delegated in HandleOSC,
// ahead of the edit slot so a generic address never shadows them.
func (p *Params) nodes() []oscvar.Node {
	return []oscvar.Node{p.UseExternalBeat, p.BeatOffset, p.BeatDivider, p.isLive}
}

// HandleOSC implements oscvar.Node for the top-level envelope:
// envelope-level variables first, then the edit slot's variables
// (edits always target the slot currently selected for editing).
func (p *Params) HandleOSC(addr string, args []interface{}) bool {
	for _, n := range p.nodes() {
		if n.HandleOSC(addr, args) {
			return true
		}
	}
	return p.EditState().HandleOSC(addr, args)
}

// SendChanged implements oscvar.Node: envelope-level variables, then
// the active slot (it drives /playhead and mirrors output state),
// then the edit slot if it differs from active (so a controller
// editing a non-live slot still sees its own changes echoed back).
func (p *Params) SendChanged(send func(addr string, args []interface{})) {
	for _, n := range p.nodes() {
		n.SendChanged(send)
	}
	p.ActiveState().SendChanged(send)
	if !p.IsLive() {
		p.EditState().SendChanged(send)
	}
}

// SetChanged implements oscvar.Node, forcing a full resync of the
// envelope and every slot.
func (p *Params) SetChanged() {
	for _, n := range p.nodes() {
		n.SetChanged()
	}
	for _, s := range p.slots {
		s.SetChanged()
	}
}
