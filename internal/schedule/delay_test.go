package schedule

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDelayWithinBounds samples the generator 10,000 times and requires every
// draw to land inside the inclusive configured range.
func TestDelayWithinBounds(t *testing.T) {
	t.Parallel()

	gen, err := NewDelayGenerator(rand.NewPCG(1, 2), DefaultDelayBounds())
	require.NoError(t, err)

	for range 10_000 {
		d := gen.Next()
		require.GreaterOrEqual(t, d, DefaultMinBatchDelay)
		require.LessOrEqual(t, d, DefaultMaxBatchDelay)
	}
}

func TestDelayDegenerateBounds(t *testing.T) {
	t.Parallel()

	gen, err := NewDelayGenerator(rand.NewPCG(1, 2), DelayBounds{Min: 5 * time.Second, Max: 5 * time.Second})
	require.NoError(t, err)
	for range 100 {
		require.Equal(t, 5*time.Second, gen.Next())
	}
}

func TestDelaySeededSequenceIsReproducible(t *testing.T) {
	t.Parallel()

	bounds := DelayBounds{Min: time.Second, Max: 10 * time.Second}
	a, err := NewDelayGenerator(rand.NewPCG(7, 7), bounds)
	require.NoError(t, err)
	b, err := NewDelayGenerator(rand.NewPCG(7, 7), bounds)
	require.NoError(t, err)

	for range 1000 {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestDelayBoundsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		bounds  DelayBounds
		wantErr bool
	}{
		{name: "defaults", bounds: DefaultDelayBounds()},
		{name: "zero min", bounds: DelayBounds{Min: 0, Max: time.Second}},
		{name: "negative min", bounds: DelayBounds{Min: -time.Second, Max: time.Second}, wantErr: true},
		{name: "inverted", bounds: DelayBounds{Min: time.Minute, Max: time.Second}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.bounds.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewDelayGeneratorRejectsBadBounds(t *testing.T) {
	t.Parallel()

	_, err := NewDelayGenerator(rand.NewPCG(1, 1), DelayBounds{Min: time.Minute, Max: time.Second})
	require.Error(t, err)
}
