package h264

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func simpleSPS() *SPS {
	return &SPS{
		ProfileIdc:            66,
		Log2MaxFrameNumMinus4: 0, // 4-bit frame_num
		PicOrderCntType:       PicOrderCntType{Type: 2},
		FrameMbsOnlyFlag:      true,
	}
}

func simplePPS() *PPS {
	return &PPS{
		PicParameterSetID: 0,
		SeqParameterSetID: 0,
	}
}

func buildSliceRBSP(firstMb, sliceType, ppsID, frameNum uint32, tailBits func(w *BitWriter)) []byte {
	w := NewBitWriter()
	w.WriteUE(firstMb)
	w.WriteUE(sliceType)
	w.WriteUE(ppsID)
	w.WriteBits(frameNum, 4)
	if tailBits != nil {
		tailBits(w)
	}
	w.WriteRBSPTrailingBits()
	return w.Bytes()
}

func TestSliceHeaderRoundTripPreservesTail(t *testing.T) {
	sps := simpleSPS()
	pps := simplePPS()
	rbsp := buildSliceRBSP(0, 2, 0, 5, func(w *BitWriter) {
		w.WriteSE(3) // stand-in slice_qp_delta-ish tail content
		w.WriteBits(0xABCD, 16)
	})

	hdr, err := ParseSliceHeader(rbsp, sps, pps, NALCodedSliceNonIDR)
	require.NoError(t, err)
	require.Equal(t, uint32(5), hdr.FrameNum)
	require.Equal(t, 4, hdr.FrameNumBits)

	// Re-serializing with the same frame_num must reproduce the input
	// exactly.
	require.Equal(t, rbsp, hdr.ToBytes(5))

	// Re-serializing with a different frame_num must change only the
	// frame_num field's bits, leaving the tail untouched.
	rewritten := hdr.ToBytes(9)
	hdr2, err := ParseSliceHeader(rewritten, sps, pps, NALCodedSliceNonIDR)
	require.NoError(t, err)
	require.Equal(t, uint32(9), hdr2.FrameNum)
}

func TestSliceHeaderMismatchedPPSID(t *testing.T) {
	sps := simpleSPS()
	pps := simplePPS()
	rbsp := buildSliceRBSP(0, 2, 7, 0, nil)
	_, err := ParseSliceHeader(rbsp, sps, pps, NALCodedSliceNonIDR)
	require.Error(t, err)
	require.True(t, IsKind(err, KindInvalidData))
}

func TestSliceHeaderIDRCapturesIdrPicID(t *testing.T) {
	sps := simpleSPS()
	pps := simplePPS()
	rbsp := buildSliceRBSP(0, 7, 0, 0, func(w *BitWriter) {
		w.WriteUE(12) // idr_pic_id
	})
	hdr, err := ParseSliceHeader(rbsp, sps, pps, NALCodedSliceIDR)
	require.NoError(t, err)
	require.NotNil(t, hdr.IdrPicID)
	require.Equal(t, uint32(12), *hdr.IdrPicID)
}

func TestSliceHeaderUnsupportedPicOrderCntType(t *testing.T) {
	sps := simpleSPS()
	sps.PicOrderCntType = PicOrderCntType{Type: 0}
	pps := simplePPS()
	rbsp := buildSliceRBSP(0, 2, 0, 0, nil)
	_, err := ParseSliceHeader(rbsp, sps, pps, NALCodedSliceNonIDR)
	require.Error(t, err)
	require.True(t, IsKind(err, KindUnimplemented))
}
