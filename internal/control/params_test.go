package control

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsLiveDerivedFromSlotEquality(t *testing.T) {
	p := NewParams()
	require.True(t, p.IsLive())

	p.SetEditSlot(2)
	require.False(t, p.IsLive())

	p.SetActiveSlot(2)
	require.True(t, p.IsLive())
}

func TestSetActiveSlotClampsAndForcesResync(t *testing.T) {
	p := NewParams()
	p.SetActiveSlot(99)
	require.Equal(t, NumSlots-1, p.ActiveSlot())

	p.SetActiveSlot(-5)
	require.Equal(t, 0, p.ActiveSlot())
}

func TestHandleOSCTargetsEditSlotOnly(t *testing.T) {
	p := NewParams()
	p.SetEditSlot(1)
	p.SetActiveSlot(0)

	matched := p.HandleOSC("/video_num", []interface{}{int32(7)})
	require.True(t, matched)
	require.Equal(t, 7, p.Slot(1).VideoNum.Get())
	require.Equal(t, 0, p.Slot(0).VideoNum.Get())
}

func TestEnvelopeVariablesHandledBeforeEditSlot(t *testing.T) {
	p := NewParams()
	matched := p.HandleOSC("/use_external_beat", []interface{}{true})
	require.True(t, matched)
	require.True(t, p.UseExternalBeat.Get())
}

func TestCopyActiveToEditCopiesValuesWhenNotLive(t *testing.T) {
	p := NewParams()
	p.ActiveState().VideoNum.Set(4)
	p.ActiveState().FPS.Set(float32(30))
	p.SetEditSlot(3)

	p.CopyActiveToEdit()
	require.Equal(t, 4, p.EditState().VideoNum.Get())
	require.Equal(t, float32(30), p.EditState().FPS.Get())
}

func TestCopyActiveToEditNoopWhenLive(t *testing.T) {
	p := NewParams()
	p.EditState().VideoNum.Set(2)
	p.CopyActiveToEdit() // active == edit, no-op
	require.Equal(t, 2, p.EditState().VideoNum.Get())
}

func TestSendChangedIncludesEditSlotWhenNotLive(t *testing.T) {
	p := NewParams()
	p.SetEditSlot(1)
	p.ActiveState().SetChanged()
	p.EditState().SetChanged()
	p.UseExternalBeat.SetChanged()

	var addrs []string
	p.SendChanged(func(addr string, args []interface{}) { addrs = append(addrs, addr) })
	require.Contains(t, addrs, "/use_external_beat")
	// Both active (slot 0) and edit (slot 1) variables get mirrored
	// out when they differ.
	require.GreaterOrEqual(t, len(addrs), 1+2*len(p.ActiveState().nodes()))
}
