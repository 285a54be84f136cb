package beat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDurationToNextBeatRequiresTwoSamples(t *testing.T) {
	p := NewPredictor()
	_, ok := p.DurationToNextBeat(time.Now(), 0)
	require.False(t, ok)

	p.PutInputBeat(time.Now())
	_, ok = p.DurationToNextBeat(time.Now(), 0)
	require.False(t, ok)
}

func TestDurationToNextBeatExactOffsets(t *testing.T) {
	t0 := time.Unix(0, 0)
	t1 := t0.Add(500 * time.Millisecond)

	p := NewPredictor()
	p.PutInputBeat(t0)
	p.PutInputBeat(t1)

	d, ok := p.DurationToNextBeat(t1, 0)
	require.True(t, ok)
	require.Equal(t, 500*time.Millisecond, d)

	d, ok = p.DurationToNextBeat(t1.Add(250*time.Millisecond), 0)
	require.True(t, ok)
	require.Equal(t, 250*time.Millisecond, d)

	d, ok = p.DurationToNextBeat(t1.Add(750*time.Millisecond), 0)
	require.True(t, ok)
	require.Equal(t, 250*time.Millisecond, d)
}

func TestDurationToNextBeatWithMultiplier(t *testing.T) {
	t0 := time.Unix(0, 0)
	t1 := t0.Add(500 * time.Millisecond)

	p := NewPredictor()
	p.SetMultiplier(2)
	p.PutInputBeat(t0)
	p.PutInputBeat(t1)

	d, ok := p.DurationToNextBeat(t1, 0)
	require.True(t, ok)
	require.Equal(t, 250*time.Millisecond, d)
}

func TestPutInputBeatKeepsOnlyTwo(t *testing.T) {
	p := NewPredictor()
	base := time.Unix(0, 0)
	p.PutInputBeat(base)
	p.PutInputBeat(base.Add(400 * time.Millisecond))
	p.PutInputBeat(base.Add(900 * time.Millisecond))
	require.Len(t, p.instants, 2)
	require.Equal(t, base.Add(400*time.Millisecond), p.instants[0])
	require.Equal(t, base.Add(900*time.Millisecond), p.instants[1])
}
