package h264

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPPSRoundTrip(t *testing.T) {
	p := &PPS{
		PicParameterSetID:                  0,
		SeqParameterSetID:                  0,
		EntropyCodingModeFlag:              true,
		NumRefIdxL0DefaultActiveMinus1:     0,
		NumRefIdxL1DefaultActiveMinus1:     0,
		PicInitQpMinus26:                   -3,
		PicInitQsMinus26:                   0,
		ChromaQpIndexOffset:                2,
		DeblockingFilterControlPresentFlag: true,
		ConstrainedIntraPredFlag:           false,
		RedundantPicCntPresentFlag:         false,
	}
	rbsp := p.WritePPS()
	got, err := ReadPPS(rbsp)
	require.NoError(t, err)
	require.Equal(t, p, got)
	require.Equal(t, rbsp, got.WritePPS())
}

func TestPPSRejectsSliceGroups(t *testing.T) {
	w := NewBitWriter()
	w.WriteUE(0) // pic_parameter_set_id
	w.WriteUE(0) // seq_parameter_set_id
	w.WriteFlag(false)
	w.WriteFlag(false)
	w.WriteUE(1) // num_slice_groups_minus1 != 0
	w.WriteRBSPTrailingBits()
	_, err := ReadPPS(w.Bytes())
	require.Error(t, err)
	require.True(t, IsKind(err, KindUnimplemented))
}

func TestPPSWithMoreData(t *testing.T) {
	p := &PPS{
		PicParameterSetID: 1,
		SeqParameterSetID: 1,
		MoreData: &PPSMoreData{
			Transform8x8ModeFlag:      true,
			SecondChromaQpIndexOffset: -1,
		},
	}
	rbsp := p.WritePPS()
	got, err := ReadPPS(rbsp)
	require.NoError(t, err)
	require.Equal(t, p, got)
}
