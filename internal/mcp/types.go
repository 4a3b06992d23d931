package mcp

import (
	"github.com/rpggio/cannonplot/internal/chart"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/trajectory"
)

// SampleParams is one range bucket as supplied by a tool caller. Total is
// always recomputed from the bands.
type SampleParams struct {
	Range  int `json:"range" jsonschema:"range bucket in blocks"`
	Low    int `json:"low,omitempty" jsonschema:"low-angle trajectory count"`
	Medium int `json:"medium,omitempty" jsonschema:"medium-angle trajectory count"`
	High   int `json:"high,omitempty" jsonschema:"high-angle trajectory count"`
}

func toSamples(params []SampleParams) []trajectory.RangeSample {
	out := make([]trajectory.RangeSample, len(params))
	for i, p := range params {
		out[i] = trajectory.RangeSample{Range: p.Range, Low: p.Low, Medium: p.Medium, High: p.High}
	}
	return trajectory.WithTotals(out)
}

// ListCannonsParams for list_cannons tool
type ListCannonsParams struct {
	Author string `json:"author,omitempty" jsonschema:"only cannons by this author"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of cannons to return"`
	Offset int    `json:"offset,omitempty" jsonschema:"number of cannons to skip"`
}

// ListCannonsResult for list_cannons tool
type ListCannonsResult struct {
	Cannons []cannon.Record `json:"cannons"`
}

// CannonIDParams for get_cannon and delete_cannon tools
type CannonIDParams struct {
	ID string `json:"id" jsonschema:"cannon id"`
}

// CannonResult wraps a single cannon.
type CannonResult struct {
	Cannon cannon.Record `json:"cannon"`
}

// AddCannonParams for add_cannon tool
type AddCannonParams struct {
	Author         string                     `json:"author" jsonschema:"cannon author"`
	Name           string                     `json:"name" jsonschema:"cannon name"`
	Params         string                     `json:"params,omitempty" jsonschema:"free-form build parameters"`
	Color          string                     `json:"color,omitempty" jsonschema:"series color as #RRGGBB"`
	Filename       string                     `json:"filename,omitempty" jsonschema:"catalog filename, unique when set"`
	TrajectoryData []SampleParams             `json:"trajectoryData,omitempty" jsonschema:"per-range band counts"`
	OffsetData     trajectory.OffsetHistogram `json:"offsetData,omitempty" jsonschema:"offset histogram keyed by distance"`
}

// DeleteCannonResult for delete_cannon tool
type DeleteCannonResult struct {
	Deleted string `json:"deleted"`
}

// DeriveSeriesParams for derive_series tool
type DeriveSeriesParams struct {
	ID      string         `json:"id,omitempty" jsonschema:"stored cannon whose samples to use"`
	Samples []SampleParams `json:"samples,omitempty" jsonschema:"inline samples, used when id is empty"`
}

// SeriesResult is a plotted series with the axes sized for it.
type SeriesResult struct {
	Points []trajectory.PlotPoint `json:"points"`
	Bounds trajectory.AxisBounds  `json:"bounds"`
}

// FilterOffsetsParams for filter_offsets tool
type FilterOffsetsParams struct {
	ID         string                     `json:"id,omitempty" jsonschema:"stored cannon whose offset data to use"`
	OffsetData trajectory.OffsetHistogram `json:"offsetData,omitempty" jsonschema:"inline histogram, used when id is empty"`
	Preset     string                     `json:"preset,omitempty" jsonschema:"built-in window pair name"`
	Horizontal *trajectory.OffsetRange    `json:"horizontal,omitempty" jsonschema:"custom horizontal window"`
	Vertical   *trajectory.OffsetRange    `json:"vertical,omitempty" jsonschema:"custom vertical window"`
}

// FilterOffsetsResult for filter_offsets tool
type FilterOffsetsResult struct {
	Preset trajectory.Preset      `json:"preset"`
	Points []trajectory.PlotPoint `json:"points"`
	Bounds trajectory.AxisBounds  `json:"bounds"`
}

// RenderChartParams for render_chart tool
type RenderChartParams struct {
	IDs        []string                `json:"ids,omitempty" jsonschema:"cannons to plot; empty plots all"`
	Author     string                  `json:"author,omitempty" jsonschema:"only plot this author"`
	Mode       string                  `json:"mode,omitempty" jsonschema:"bands or offsets"`
	Preset     string                  `json:"preset,omitempty" jsonschema:"offset window preset for offsets mode"`
	Horizontal *trajectory.OffsetRange `json:"horizontal,omitempty" jsonschema:"custom horizontal window"`
	Vertical   *trajectory.OffsetRange `json:"vertical,omitempty" jsonschema:"custom vertical window"`
	Title      string                  `json:"title,omitempty" jsonschema:"chart title override"`
}

func (p RenderChartParams) request() chart.Request {
	return chart.Request{
		IDs:        p.IDs,
		Author:     p.Author,
		Mode:       chart.Mode(p.Mode),
		Preset:     p.Preset,
		Horizontal: p.Horizontal,
		Vertical:   p.Vertical,
		Title:      p.Title,
	}
}

// RenderChartImageParams for render_chart_image tool
type RenderChartImageParams struct {
	IDs        []string                `json:"ids,omitempty" jsonschema:"cannons to plot; empty plots all"`
	Author     string                  `json:"author,omitempty" jsonschema:"only plot this author"`
	Mode       string                  `json:"mode,omitempty" jsonschema:"bands or offsets"`
	Preset     string                  `json:"preset,omitempty" jsonschema:"offset window preset for offsets mode"`
	Horizontal *trajectory.OffsetRange `json:"horizontal,omitempty" jsonschema:"custom horizontal window"`
	Vertical   *trajectory.OffsetRange `json:"vertical,omitempty" jsonschema:"custom vertical window"`
	Title      string                  `json:"title,omitempty" jsonschema:"chart title override"`
	Width      int                     `json:"width,omitempty" jsonschema:"image width in pixels"`
	Height     int                     `json:"height,omitempty" jsonschema:"image height in pixels"`
}

func (p RenderChartImageParams) request() chart.Request {
	return RenderChartParams{
		IDs:        p.IDs,
		Author:     p.Author,
		Mode:       p.Mode,
		Preset:     p.Preset,
		Horizontal: p.Horizontal,
		Vertical:   p.Vertical,
		Title:      p.Title,
	}.request()
}

// NoParams is the input of tools that take no arguments.
type NoParams struct{}

// ListAuthorsResult for list_authors tool
type ListAuthorsResult struct {
	Authors []cannon.AuthorGroup `json:"authors"`
}

// ListPresetsResult for list_presets tool
type ListPresetsResult struct {
	Presets []trajectory.Preset `json:"presets"`
}
