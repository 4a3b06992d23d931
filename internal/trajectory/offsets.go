package trajectory

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// OffsetRange is an inclusive [Min, Max] window over offset buckets.
type OffsetRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether v lies inside the window, bounds included.
func (r OffsetRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Valid reports whether Min does not exceed Max.
func (r OffsetRange) Valid() bool {
	return r.Min <= r.Max
}

// DistanceOffsets holds trajectory counts per horizontal and vertical offset
// bucket at one distance. Offset keys are decimal integers.
type DistanceOffsets struct {
	Horizontal map[string]int `json:"horizontal,omitempty"`
	Vertical   map[string]int `json:"vertical,omitempty"`
}

// Catalog files published by the original tool name the two axes in Chinese.
var (
	horizontalKeys = []string{"horizontal", "水平偏移"}
	verticalKeys   = []string{"vertical", "垂直偏移"}
)

// UnmarshalJSON accepts both English and catalog axis names. Counts that are
// not numbers decode as zero.
func (d *DistanceOffsets) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	d.Horizontal = decodeCounts(fields, horizontalKeys)
	d.Vertical = decodeCounts(fields, verticalKeys)
	return nil
}

func decodeCounts(fields map[string]json.RawMessage, keys []string) map[string]int {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var values map[string]json.RawMessage
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil
		}
		counts := make(map[string]int, len(values))
		for offset, v := range values {
			n, _ := parseNumber(v)
			counts[offset] = int(n)
		}
		return counts
	}
	return nil
}

// OffsetHistogram maps a distance key to the offset counts recorded there.
type OffsetHistogram map[string]DistanceOffsets

// UnmarshalJSON skips distances whose value is not an object instead of
// failing the whole histogram. A value that is not an object decodes as nil.
func (h *OffsetHistogram) UnmarshalJSON(data []byte) error {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil || entries == nil {
		*h = nil
		return nil
	}
	out := make(OffsetHistogram, len(entries))
	for key, raw := range entries {
		var offsets DistanceOffsets
		if err := json.Unmarshal(raw, &offsets); err != nil {
			continue
		}
		out[key] = offsets
	}
	*h = out
	return nil
}

// FilterByOffsetRange collapses the histogram to one point per distance.
// The y value is the sum of horizontal counts whose offset falls inside
// horizontal plus vertical counts whose offset falls inside vertical.
// Distances and offsets that are not integers are ignored, and only
// distances with a positive total are emitted, sorted by distance.
func FilterByOffsetRange(hist OffsetHistogram, horizontal, vertical OffsetRange) []PlotPoint {
	totals := make(map[int]int, len(hist))
	for key, offsets := range hist {
		distance, ok := parseKey(key)
		if !ok {
			continue
		}
		totals[distance] += sumWithin(offsets.Horizontal, horizontal) + sumWithin(offsets.Vertical, vertical)
	}
	return positivePoints(totals)
}

// TotalByDistance sums every offset count at each distance, with no window
// applied.
func TotalByDistance(hist OffsetHistogram) []PlotPoint {
	totals := make(map[int]int, len(hist))
	for key, offsets := range hist {
		distance, ok := parseKey(key)
		if !ok {
			continue
		}
		for _, n := range offsets.Horizontal {
			totals[distance] += n
		}
		for _, n := range offsets.Vertical {
			totals[distance] += n
		}
	}
	return positivePoints(totals)
}

func sumWithin(counts map[string]int, window OffsetRange) int {
	total := 0
	for key, n := range counts {
		offset, ok := parseKey(key)
		if ok && window.Contains(offset) {
			total += n
		}
	}
	return total
}

func positivePoints(totals map[int]int) []PlotPoint {
	for distance, total := range totals {
		if total <= 0 {
			delete(totals, distance)
		}
	}
	return sortedPoints(totals)
}

func parseKey(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return 0, false
	}
	return n, true
}
