package control

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateHandleOSCDispatchesToMatchingVar(t *testing.T) {
	s := NewState()

	matched := s.HandleOSC("/video_num", []interface{}{int32(3)})
	require.True(t, matched)
	require.Equal(t, 3, s.VideoNum.Get())

	matched = s.HandleOSC("/nonexistent", []interface{}{int32(1)})
	require.False(t, matched)
}

func TestStateVideoNumChangePushesSwitchHistory(t *testing.T) {
	s := NewState()
	s.HandleOSC("/video_num", []interface{}{int32(1)})
	s.HandleOSC("/video_num", []interface{}{int32(2)})
	s.HandleOSC("/video_num", []interface{}{int32(3)})
	require.Equal(t, []int{3, 2, 1}, s.SwitchHistory)

	// Re-selecting an existing entry moves it to the front instead of
	// duplicating it.
	s.HandleOSC("/video_num", []interface{}{int32(1)})
	require.Equal(t, []int{1, 3, 2}, s.SwitchHistory)
}

func TestStateSwitchHistoryBounded(t *testing.T) {
	s := NewState()
	for i := 1; i <= MaxSwitchHistory+3; i++ {
		s.SetVideoNum(i)
	}
	require.Len(t, s.SwitchHistory, MaxSwitchHistory)
	require.Equal(t, MaxSwitchHistory+3, s.SwitchHistory[0])
}

func TestStateSendChangedThenClearsFlags(t *testing.T) {
	s := NewState()
	var addrs []string
	send := func(addr string, args []interface{}) { addrs = append(addrs, addr) }

	s.SendChanged(send) // initial full resync
	require.NotEmpty(t, addrs)

	addrs = nil
	s.SendChanged(send)
	require.Empty(t, addrs, "nothing changed since last send")

	s.VideoNum.Set(9)
	s.SendChanged(send)
	require.Equal(t, []string{"/video_num"}, addrs)
}

func TestBeatMultiplierFactor(t *testing.T) {
	s := NewState()
	s.BeatMultiplier.Set(int32(0))
	require.InDelta(t, 1.0, s.BeatMultiplierFactor(), 1e-9)

	s.BeatMultiplier.Set(int32(2))
	require.InDelta(t, 0.25, s.BeatMultiplierFactor(), 1e-9)

	s.BeatMultiplier.Set(int32(-1))
	require.InDelta(t, 2.0, s.BeatMultiplierFactor(), 1e-9)
}
