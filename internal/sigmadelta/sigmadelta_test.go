package sigmadelta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOnes(t *testing.T) {
	q := New()
	for i := 0; i < 10; i++ {
		require.Equal(t, 1, q.Put(1))
	}
}

func TestWholeNumbers(t *testing.T) {
	q := New()
	for i := 0; i < 10; i++ {
		require.Equal(t, 3, q.Put(3))
	}
}

func TestHalf(t *testing.T) {
	q := New()
	sum := 0
	const n = 1000
	for i := 0; i < n; i++ {
		out := q.Put(0.5)
		require.True(t, out == 0 || out == 1)
		sum += out
	}
	avg := float64(sum) / float64(n)
	require.InDelta(t, 0.5, avg, 0.01)
}

func TestConstantInputConverges(t *testing.T) {
	for _, x := range []float64{0, 0.25, 0.5, 0.75, 1.3, 2.9} {
		q := New()
		sum := 0
		const n = 5000
		for i := 0; i < n; i++ {
			sum += q.Put(x)
		}
		diff := float64(sum) - x*float64(n)
		require.Less(t, diff, 1.0)
		require.Greater(t, diff, -1.0)
	}
}
