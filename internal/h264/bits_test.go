package h264

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpGolombUnsignedRoundTrip(t *testing.T) {
	for v := uint32(0); v < 1<<20; v += 37 {
		w := NewBitWriter()
		w.WriteUE(v)
		w.WriteRBSPTrailingBits()
		r := NewBitReader(w.Bytes())
		got, err := r.ReadUE()
		require.NoError(t, err)
		require.Equal(t, v, got, "v=%d", v)
	}
}

func TestExpGolombSignedRoundTrip(t *testing.T) {
	for v := int32(-1 << 19); v < 1<<19; v += 41 {
		w := NewBitWriter()
		w.WriteSE(v)
		w.WriteRBSPTrailingBits()
		r := NewBitReader(w.Bytes())
		got, err := r.ReadSE()
		require.NoError(t, err)
		require.Equal(t, v, got, "v=%d", v)
	}
}

func TestReadUEOverflowPrefix(t *testing.T) {
	w := NewBitWriter()
	// 33 leading zero bits before the terminating 1 bit: a unary
	// prefix longer than ReadUE supports.
	for i := 0; i < 33; i++ {
		w.WriteBit(0)
	}
	w.WriteBit(1)
	r := NewBitReader(w.Bytes())
	_, err := r.ReadUE()
	require.Error(t, err)
	require.True(t, IsKind(err, KindUnimplemented))
}

func TestRBSPTrailingBitsRejectsNonZeroPadding(t *testing.T) {
	// stop bit followed by a 1 bit before the byte boundary.
	data := []byte{0b1100_0000}
	r := NewBitReader(data)
	err := r.ReadRBSPTrailingBits()
	require.Error(t, err)
	require.True(t, IsKind(err, KindInvalidData))
}

func TestRBSPTrailingBitsAccepts(t *testing.T) {
	data := []byte{0b1000_0000}
	r := NewBitReader(data)
	require.NoError(t, r.ReadRBSPTrailingBits())
}
