package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReduceTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		signals []Signal
		want    Status
	}{
		{name: "empty log", signals: nil, want: NotStarted},
		{name: "started", signals: []Signal{SignalStarted}, want: Active},
		{name: "completed", signals: []Signal{SignalStarted, SignalCompleted}, want: Completed},
		{name: "failed", signals: []Signal{SignalStarted, SignalFailed}, want: Failed},
		{name: "cancelled", signals: []Signal{SignalStarted, SignalCancelled}, want: Cancelled},
		{name: "none is inert", signals: []Signal{SignalStarted, SignalNone, SignalNone}, want: Active},
		{
			name:    "first terminal wins",
			signals: []Signal{SignalStarted, SignalCompleted, SignalCancelled},
			want:    Completed,
		},
		{
			name:    "cancel then complete keeps cancel",
			signals: []Signal{SignalStarted, SignalCancelled, SignalCompleted},
			want:    Cancelled,
		},
		{
			name:    "terminal without start is terminal",
			signals: []Signal{SignalFailed},
			want:    Failed,
		},
		{
			name:    "duplicate start is inert",
			signals: []Signal{SignalStarted, SignalStarted},
			want:    Active,
		},
		{
			name:    "start after terminal cannot resurrect",
			signals: []Signal{SignalStarted, SignalCancelled, SignalStarted},
			want:    Cancelled,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Fold(tc.signals))
		})
	}
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	require.False(t, NotStarted.Terminal())
	require.False(t, Active.Terminal())
	require.True(t, Completed.Terminal())
	require.True(t, Failed.Terminal())
	require.True(t, Cancelled.Terminal())
}

// TestFoldDeterminism replays the same sequence twice and expects identical
// results, the core replay guarantee.
func TestFoldDeterminism(t *testing.T) {
	t.Parallel()

	signals := []Signal{SignalStarted, SignalNone, SignalFailed, SignalCompleted}
	require.Equal(t, Fold(signals), Fold(signals))
}
