package trajectory

import (
	"bytes"
	"encoding/json"
	"math"
)

// Samples is a list of range samples that decodes leniently from JSON:
// a value that is not an array decodes as empty, and entries without a
// usable range are dropped one by one.
type Samples []RangeSample

// UnmarshalJSON implements json.Unmarshaler.
func (s *Samples) UnmarshalJSON(data []byte) error {
	*s = DecodeSamples(data)
	return nil
}

// DecodeSamples parses raw trajectory data. Entries whose range is missing,
// non-numeric, fractional or negative are skipped. Non-numeric band counts
// decode as zero, and a missing total is backfilled as low+medium+high.
func DecodeSamples(raw json.RawMessage) Samples {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return Samples{}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Samples{}
	}

	out := make(Samples, 0, len(entries))
	for _, entry := range entries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
			continue
		}

		rng, ok := numberField(fields, "range")
		if !ok || rng < 0 || rng != math.Trunc(rng) {
			continue
		}

		sample := RangeSample{
			Range:  int(rng),
			Low:    countField(fields, "low"),
			Medium: countField(fields, "medium"),
			High:   countField(fields, "high"),
		}
		if total, ok := numberField(fields, "total"); ok {
			sample.Total = int(total)
		} else {
			sample.Total = sample.Sum()
		}
		out = append(out, sample)
	}
	return out
}

func numberField(fields map[string]json.RawMessage, key string) (float64, bool) {
	raw, ok := fields[key]
	if !ok {
		return 0, false
	}
	return parseNumber(raw)
}

func countField(fields map[string]json.RawMessage, key string) int {
	v, ok := numberField(fields, key)
	if !ok {
		return 0
	}
	return int(v)
}

func parseNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
