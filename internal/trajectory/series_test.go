package trajectory_test

import (
	"testing"

	"github.com/rpggio/cannonplot/internal/trajectory"
	"github.com/stretchr/testify/require"
)

func TestDeriveSeries_DuplicateRangeKeepsMaximum(t *testing.T) {
	points := trajectory.DeriveSeries([]trajectory.RangeSample{
		{Range: 100, Low: 12, Medium: 25, High: 18},
		{Range: 100, Low: 0, Medium: 0, High: 30},
	})
	require.Equal(t, []trajectory.PlotPoint{{X: 100, Y: 30}}, points)
}

func TestDeriveSeries_AllBandsEmpty(t *testing.T) {
	points := trajectory.DeriveSeries([]trajectory.RangeSample{
		{Range: 200, Low: 0, Medium: 0, High: 0},
	})
	require.NotNil(t, points)
	require.Empty(t, points)
}

func TestDeriveSeries_NegativeCountsContributeNothing(t *testing.T) {
	points := trajectory.DeriveSeries([]trajectory.RangeSample{
		{Range: 300, Low: -4, Medium: -1, High: 0},
		{Range: 400, Low: -4, Medium: 9, High: 0},
	})
	require.Equal(t, []trajectory.PlotPoint{{X: 400, Y: 9}}, points)
}

func TestDeriveSeries_NilInput(t *testing.T) {
	require.Empty(t, trajectory.DeriveSeries(nil))
}

func TestDeriveSeries_SortedAndUnique(t *testing.T) {
	samples := []trajectory.RangeSample{
		{Range: 900, Low: 58, Medium: 116, High: 76},
		{Range: 100, Low: 12, Medium: 25, High: 18},
		{Range: 500, Low: 48, Medium: 96, High: 64},
		{Range: 100, Low: 40, Medium: 1, High: 2},
		{Range: 500, Low: 0, Medium: 0, High: 0},
		{Range: -10, Low: 99, Medium: 99, High: 99},
	}

	points := trajectory.DeriveSeries(samples)
	require.Equal(t, []trajectory.PlotPoint{
		{X: 100, Y: 40},
		{X: 500, Y: 96},
		{X: 900, Y: 116},
	}, points)

	seen := map[int]bool{}
	for i, p := range points {
		require.False(t, seen[p.X], "duplicate x %d", p.X)
		seen[p.X] = true
		if i > 0 {
			require.Less(t, points[i-1].X, p.X)
		}
	}
}

func TestDeriveSeries_SmallerCandidatesAbsent(t *testing.T) {
	points := trajectory.DeriveSeries([]trajectory.RangeSample{
		{Range: 250, Low: 5, Medium: 7, High: 3},
		{Range: 250, Low: 6, Medium: 2, High: 1},
	})
	require.Len(t, points, 1)
	require.Equal(t, 7, points[0].Y)
}

func TestWithTotals(t *testing.T) {
	samples := []trajectory.RangeSample{{Range: 100, Low: 1, Medium: 2, High: 3, Total: 99}}
	out := trajectory.WithTotals(samples)
	require.Equal(t, 6, out[0].Total)
	require.Equal(t, 99, samples[0].Total, "input must not be modified")
}

func TestSortByRange(t *testing.T) {
	out := trajectory.SortByRange([]trajectory.RangeSample{{Range: 300}, {Range: 100}, {Range: 200}})
	require.Equal(t, 100, out[0].Range)
	require.Equal(t, 200, out[1].Range)
	require.Equal(t, 300, out[2].Range)
}
