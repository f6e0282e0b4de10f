package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestComputeScheduleExample pins the documented example: two steps of 30s
// and 10s with a 15s safety net stop 55s after start.
func TestComputeScheduleExample(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	delays := map[StepKind]time.Duration{
		StepActivateSekView: 30 * time.Second,
		StepSelectOneMonth:  10 * time.Second,
	}

	sched, err := ComputeSchedule(
		"155458",
		start,
		[]StepKind{StepActivateSekView, StepSelectOneMonth},
		delays,
		15*time.Second,
	)
	require.NoError(t, err)

	require.Len(t, sched.Steps, 2)
	require.Equal(t, StepActivateSekView, sched.Steps[0].Kind)
	require.Equal(t, start, sched.Steps[0].FireAt)
	require.Equal(t, StepSelectOneMonth, sched.Steps[1].Kind)
	require.Equal(t, start.Add(30*time.Second), sched.Steps[1].FireAt)
	require.Equal(t, start.Add(55*time.Second), sched.StopTime)
}

func TestComputeScheduleDefaultSequence(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 10, 19, 30, 0, 0, time.UTC)
	sched, err := ComputeSchedule("42", start, DefaultStepSequence(), nil, DefaultSafetyNetBuffer)
	require.NoError(t, err)

	kinds := DefaultStepSequence()
	require.Len(t, sched.Steps, len(kinds))
	require.Equal(t, start, sched.Steps[0].FireAt)

	// Activation takes 30s, then six 10s period selections.
	require.Equal(t, start.Add(DefaultActivationDelay), sched.Steps[1].FireAt)
	for i := 2; i < len(kinds); i++ {
		require.Equal(t, sched.Steps[i-1].FireAt.Add(DefaultPeriodDelay), sched.Steps[i].FireAt)
	}
	wantStop := sched.Steps[len(kinds)-1].FireAt.Add(DefaultPeriodDelay).Add(DefaultSafetyNetBuffer)
	require.Equal(t, wantStop, sched.StopTime)
	require.Equal(t, "42", string(sched.OrderBook))
}

func TestComputeScheduleDeterministic(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	a, err := ComputeSchedule("1", start, DefaultStepSequence(), nil, DefaultSafetyNetBuffer)
	require.NoError(t, err)
	b, err := ComputeSchedule("1", start, DefaultStepSequence(), nil, DefaultSafetyNetBuffer)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestComputeScheduleErrors(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := ComputeSchedule("1", start, nil, nil, DefaultSafetyNetBuffer)
	require.Error(t, err)

	_, err = ComputeSchedule("1", start, []StepKind{"unknown_step"}, nil, DefaultSafetyNetBuffer)
	require.Error(t, err)

	_, err = ComputeSchedule("1", start, DefaultStepSequence(), nil, -time.Second)
	require.Error(t, err)

	_, err = ComputeSchedule("1", start, []StepKind{StepSelectMax}, map[StepKind]time.Duration{StepSelectMax: -time.Second}, 0)
	require.Error(t, err)
}
