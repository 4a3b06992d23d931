package trajectory

import "fmt"

// Preset is a named pair of offset windows for the histogram chart mode.
type Preset struct {
	Name       string      `json:"name"`
	Title      string      `json:"title"`
	Horizontal OffsetRange `json:"horizontal"`
	Vertical   OffsetRange `json:"vertical"`
}

// DefaultPreset is applied when no windows are requested.
const DefaultPreset = "comprehensive"

var presets = []Preset{
	{
		Name:       "comprehensive",
		Title:      "Comprehensive firepower - range vs trajectories",
		Horizontal: OffsetRange{Min: -200, Max: 200},
		Vertical:   OffsetRange{Min: -40, Max: 170},
	},
	{
		Name:       "flat",
		Title:      "Flat fire - range vs trajectories",
		Horizontal: OffsetRange{Min: -200, Max: 200},
		Vertical:   OffsetRange{Min: 0, Max: 40},
	},
	{
		Name:       "high",
		Title:      "High-angle fire - range vs trajectories",
		Horizontal: OffsetRange{Min: -200, Max: 200},
		Vertical:   OffsetRange{Min: 40, Max: 80},
	},
	{
		Name:       "antiair",
		Title:      "Anti-air fire - range vs trajectories",
		Horizontal: OffsetRange{Min: -200, Max: 200},
		Vertical:   OffsetRange{Min: 80, Max: 170},
	},
	{
		Name:       "halfaxis",
		Title:      "Half-axis fire - range vs trajectories",
		Horizontal: OffsetRange{Min: 0, Max: 40},
		Vertical:   OffsetRange{Min: -40, Max: 170},
	},
}

// Presets returns the built-in windows in display order.
func Presets() []Preset {
	return append([]Preset(nil), presets...)
}

// LookupPreset finds a preset by name.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// CustomPreset builds an ad-hoc preset whose title names both windows.
func CustomPreset(horizontal, vertical OffsetRange) Preset {
	return Preset{
		Name: "custom",
		Title: fmt.Sprintf("Custom firepower - horizontal [%d,%d] vertical [%d,%d]",
			horizontal.Min, horizontal.Max, vertical.Min, vertical.Max),
		Horizontal: horizontal,
		Vertical:   vertical,
	}
}
