package h264

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmulationPreventionFixedVectors(t *testing.T) {
	in := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x01}
	want := []byte{0x00, 0x01, 0x00, 0x00, 0x03, 0x00, 0x01}
	require.Equal(t, want, EncodeRBSP(in))

	in2 := make([]byte, 6)
	want2 := []byte{0, 0, 0x03, 0, 0, 0x03, 0, 0}
	require.Equal(t, want2, EncodeRBSP(in2))
}

func TestEmulationPreventionRoundTrip(t *testing.T) {
	corpus := [][]byte{
		{},
		{0x00},
		{0x00, 0x00},
		{0x00, 0x00, 0x00},
		{0x00, 0x00, 0x01, 0x02, 0x03},
		bytes.Repeat([]byte{0x00}, 20),
		{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0xaa},
	}
	for _, b := range corpus {
		encoded := EncodeRBSP(b)
		decoded := DecodeRBSP(encoded)
		require.Equal(t, b, decoded)
	}
}

func TestDecodeNALRejectsForbiddenBit(t *testing.T) {
	_, err := DecodeNAL([]byte{0x80})
	require.Error(t, err)
	require.True(t, IsKind(err, KindInvalidData))
}

func TestDecodeEncodeNALRoundTrip(t *testing.T) {
	u := NalUnit{NalRefIdc: 3, NalUnitType: NALCodedSliceIDR, RBSP: []byte{0x01, 0x00, 0x00, 0x03, 0x02}}
	raw := u.EncodeNAL()
	got, err := DecodeNAL(raw)
	require.NoError(t, err)
	require.Equal(t, u, got)
}

func TestNALUnitTypeIsPictureData(t *testing.T) {
	require.True(t, NALCodedSliceIDR.IsPictureData())
	require.True(t, NALCodedSliceNonIDR.IsPictureData())
	require.False(t, NALSPS.IsPictureData())
	require.False(t, NALSEI.IsPictureData())
}
