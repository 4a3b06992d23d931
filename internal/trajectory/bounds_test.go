package trajectory_test

import (
	"testing"

	"github.com/rpggio/cannonplot/internal/trajectory"
	"github.com/stretchr/testify/require"
)

func TestComputeAxisBounds_FloorsWithoutSeries(t *testing.T) {
	cfg := trajectory.DefaultAxisConfig()

	bounds := trajectory.ComputeAxisBounds(cfg, trajectory.AxisBounds{})
	require.Equal(t, trajectory.AxisBounds{
		RangeMax:  1450,
		RangeStep: 200,
		CountMax:  400,
		CountStep: 50,
	}, bounds)

	bounds = trajectory.ComputeAxisBounds(cfg, trajectory.AxisBounds{}, nil, []trajectory.PlotPoint{})
	require.Equal(t, 1450, bounds.RangeMax)
	require.Equal(t, 400, bounds.CountMax)
}

func TestComputeAxisBounds_HeadroomOverLargestSeries(t *testing.T) {
	cfg := trajectory.DefaultAxisConfig()
	small := []trajectory.PlotPoint{{X: 100, Y: 25}, {X: 1000, Y: 120}}
	large := []trajectory.PlotPoint{{X: 150, Y: 35}, {X: 2000, Y: 560}}

	bounds := trajectory.ComputeAxisBounds(cfg, trajectory.AxisBounds{}, small, large)
	require.Equal(t, 2200, bounds.RangeMax)
	require.Equal(t, 220, bounds.RangeStep)
	require.Equal(t, 660, bounds.CountMax)
	require.Equal(t, 66, bounds.CountStep)
	require.Zero(t, bounds.RangeMin)
	require.Zero(t, bounds.CountMin)
}

func TestComputeAxisBounds_StepRoundsHalfUp(t *testing.T) {
	cfg := trajectory.DefaultAxisConfig()
	bounds := trajectory.ComputeAxisBounds(cfg, trajectory.AxisBounds{},
		[]trajectory.PlotPoint{{X: 2745, Y: 545}})
	require.Equal(t, 2945, bounds.RangeMax)
	require.Equal(t, 295, bounds.RangeStep)
	require.Equal(t, 645, bounds.CountMax)
	require.Equal(t, 65, bounds.CountStep)
}

func TestComputeAxisBounds_PriorIsRunningMaximum(t *testing.T) {
	cfg := trajectory.DefaultAxisConfig()
	first := trajectory.ComputeAxisBounds(cfg, trajectory.AxisBounds{},
		[]trajectory.PlotPoint{{X: 3000, Y: 10}})
	second := trajectory.ComputeAxisBounds(cfg, first,
		[]trajectory.PlotPoint{{X: 100, Y: 900}})

	require.Equal(t, 3200, second.RangeMax)
	require.Equal(t, 1000, second.CountMax)
}

func TestComputeAxisBounds_CustomConfig(t *testing.T) {
	cfg := trajectory.AxisConfig{
		RangeFloor: 10, RangeHeadroom: 1, RangeStepFloor: 1,
		CountFloor: 10, CountHeadroom: 1, CountStepFloor: 1,
	}
	bounds := trajectory.ComputeAxisBounds(cfg, trajectory.AxisBounds{})
	require.Equal(t, 10, bounds.RangeMax)
	require.Equal(t, 1, bounds.RangeStep)
}
