package videocache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFixture writes a minimal Annex-B stream with one SPS-ish NAL
// (type arbitrary, not actually parsed by the scanner/decoder beyond
// header validation) followed by one IDR NAL.
func writeFixture(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	// NAL header 0x67 = nal_ref_idc 3, type 7 (SPS); payload is
	// arbitrary since Load only needs DecodeNAL to succeed.
	data := []byte{
		0x00, 0x00, 0x00, 0x01, 0x67, 0xAA, 0xBB,
		0x00, 0x00, 0x00, 0x01, 0x65, 0xCC, 0xDD, // type 5 = IDR slice
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadDecodesNALsAndTracksIDRIndices(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "a.h264")

	v, err := Load(path)
	require.NoError(t, err)
	require.Len(t, v.NALs, 2)
	require.Equal(t, []int{1}, v.IDRAt)
	require.Equal(t, 1, v.FirstIDR())
}

func TestLoadSkipsForbiddenZeroBitNAL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.h264")
	data := []byte{
		0x00, 0x00, 0x00, 0x01, 0x80, 0xAA, // forbidden_zero_bit set, dropped
		0x00, 0x00, 0x00, 0x01, 0x65, 0xCC,
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))

	v, err := Load(path)
	require.NoError(t, err)
	require.Len(t, v.NALs, 1)
}

func TestFirstIDRReturnsMinusOneWhenNone(t *testing.T) {
	v := &Video{}
	require.Equal(t, -1, v.FirstIDR())
}

func TestCacheAcquireReleaseRefCounting(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "b.h264")
	c := New()

	v1, err := c.Acquire(path)
	require.NoError(t, err)
	v2, err := c.Acquire(path)
	require.NoError(t, err)
	require.Same(t, v1, v2, "second acquire should return the cached instance")

	c.Release(path)
	_, stillCached := c.byPath[path]
	require.True(t, stillCached, "one reference remains")

	c.Release(path)
	_, stillCached = c.byPath[path]
	require.False(t, stillCached, "last reference released, entry evicted")
}

func TestPrefetchAllLoadsEveryPath(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFixture(t, dir, "c.h264")
	p2 := writeFixture(t, dir, "d.h264")
	c := New()

	require.NoError(t, c.PrefetchAll([]string{p1, p2}))
	require.Len(t, c.byPath, 2)
}
