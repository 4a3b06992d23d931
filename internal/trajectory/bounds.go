package trajectory

// AxisConfig holds the floors and headroom used when sizing chart axes.
// The range axis runs on a larger scale than the count axis.
type AxisConfig struct {
	RangeFloor     int `yaml:"range_floor" json:"range_floor"`
	RangeHeadroom  int `yaml:"range_headroom" json:"range_headroom"`
	RangeStepFloor int `yaml:"range_step_floor" json:"range_step_floor"`
	CountFloor     int `yaml:"count_floor" json:"count_floor"`
	CountHeadroom  int `yaml:"count_headroom" json:"count_headroom"`
	CountStepFloor int `yaml:"count_step_floor" json:"count_step_floor"`
}

// DefaultAxisConfig returns the stock axis constants.
func DefaultAxisConfig() AxisConfig {
	return AxisConfig{
		RangeFloor:     1450,
		RangeHeadroom:  200,
		RangeStepFloor: 200,
		CountFloor:     400,
		CountHeadroom:  100,
		CountStepFloor: 50,
	}
}

// AxisBounds describes both chart axes. Minimums are always zero.
type AxisBounds struct {
	RangeMin  int `json:"range_min"`
	RangeMax  int `json:"range_max"`
	RangeStep int `json:"range_step"`
	CountMin  int `json:"count_min"`
	CountMax  int `json:"count_max"`
	CountStep int `json:"count_step"`
}

// ComputeAxisBounds sizes the axes for the given series. prior carries a
// running maximum from an earlier call; pass the zero value to start from
// the configured floors. Empty series do not move the bounds.
func ComputeAxisBounds(cfg AxisConfig, prior AxisBounds, series ...[]PlotPoint) AxisBounds {
	rangeMax := max(cfg.RangeFloor, prior.RangeMax)
	countMax := max(cfg.CountFloor, prior.CountMax)

	for _, points := range series {
		if len(points) == 0 {
			continue
		}
		maxX, maxY := points[0].X, points[0].Y
		for _, p := range points[1:] {
			maxX = max(maxX, p.X)
			maxY = max(maxY, p.Y)
		}
		rangeMax = max(rangeMax, maxX+cfg.RangeHeadroom)
		countMax = max(countMax, maxY+cfg.CountHeadroom)
	}

	return AxisBounds{
		RangeMax:  rangeMax,
		RangeStep: max(cfg.RangeStepFloor, roundTenth(rangeMax)),
		CountMax:  countMax,
		CountStep: max(cfg.CountStepFloor, roundTenth(countMax)),
	}
}

// roundTenth rounds v/10 half away from zero.
func roundTenth(v int) int {
	if v < 0 {
		return -((-v + 5) / 10)
	}
	return (v + 5) / 10
}
