// Package trajectory derives chart series and axis bounds from cannon
// trajectory measurements. Everything here is a pure function of its
// inputs and safe for concurrent use.
package trajectory

import "sort"

// RangeSample holds trajectory counts for the three elevation bands at one
// horizontal range bucket.
type RangeSample struct {
	Range  int `json:"range"`
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
	Total  int `json:"total"`
}

// Sum returns low+medium+high.
func (s RangeSample) Sum() int {
	return s.Low + s.Medium + s.High
}

// PlotPoint is a single (range, count) point of a series.
type PlotPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// WithTotals returns a copy of samples with Total recomputed from the bands.
func WithTotals(samples []RangeSample) []RangeSample {
	out := make([]RangeSample, len(samples))
	for i, s := range samples {
		s.Total = s.Sum()
		out[i] = s
	}
	return out
}

// SortByRange returns a copy of samples ordered by ascending range.
func SortByRange(samples []RangeSample) []RangeSample {
	out := append([]RangeSample(nil), samples...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Range < out[j].Range })
	return out
}

func sortedPoints(values map[int]int) []PlotPoint {
	points := make([]PlotPoint, 0, len(values))
	for x, y := range values {
		points = append(points, PlotPoint{X: x, Y: y})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].X < points[j].X })
	return points
}
