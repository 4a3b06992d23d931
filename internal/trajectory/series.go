package trajectory

// DeriveSeries turns range samples into a plot series. Every positive band
// count at a range is a candidate point; candidates sharing a range, whether
// from different bands or repeated samples, collapse to the largest count.
// The result is sorted by range and never contains a duplicate x.
func DeriveSeries(samples []RangeSample) []PlotPoint {
	best := make(map[int]int, len(samples))
	for _, s := range samples {
		if s.Range < 0 {
			continue
		}
		for _, y := range [...]int{s.Low, s.Medium, s.High} {
			if y <= 0 {
				continue
			}
			if cur, ok := best[s.Range]; !ok || y > cur {
				best[s.Range] = y
			}
		}
	}
	return sortedPoints(best)
}
