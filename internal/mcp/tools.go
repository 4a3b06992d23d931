package mcp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/cannonplot/internal/chart"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/trajectory"
)

type toolset struct {
	cannons CannonService
	charts  ChartService
	axis    trajectory.AxisConfig
	logger  *slog.Logger
}

func registerTools(server *sdkmcp.Server, t *toolset) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_cannons",
		Description: "List stored cannons in insertion order, optionally filtered by author.",
	}, t.listCannons)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_cannon",
		Description: "Get one cannon with its trajectory and offset data.",
	}, t.getCannon)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_cannon",
		Description: "Store a new cannon. Sample totals are recomputed from the band counts.",
	}, t.addCannon)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_cannon",
		Description: "Delete a cannon by id.",
	}, t.deleteCannon)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "derive_series",
		Description: "Derive the bands-mode plot series for a stored cannon or inline samples.",
	}, t.deriveSeries)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "filter_offsets",
		Description: "Collapse an offset histogram to trajectories per distance inside a window pair.",
	}, t.filterOffsets)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "render_chart",
		Description: "Render a full chart view: titled, colored series and axis bounds.",
	}, t.renderChart)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "render_chart_image",
		Description: "Render the chart as a PNG image.",
	}, t.renderChartImage)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_authors",
		Description: "List authors in sorted order with their cannons.",
	}, t.listAuthors)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_presets",
		Description: "List the built-in offset window presets.",
	}, t.listPresets)
}

func (t *toolset) listCannons(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListCannonsParams) (*sdkmcp.CallToolResult, ListCannonsResult, error) {
	recs, err := t.cannons.List(ctx, cannon.ListOptions{Author: in.Author, Limit: in.Limit, Offset: in.Offset})
	if err != nil {
		return nil, ListCannonsResult{}, toolError(err)
	}
	if recs == nil {
		recs = []cannon.Record{}
	}
	return nil, ListCannonsResult{Cannons: recs}, nil
}

func (t *toolset) getCannon(ctx context.Context, _ *sdkmcp.CallToolRequest, in CannonIDParams) (*sdkmcp.CallToolResult, CannonResult, error) {
	rec, err := t.cannons.Get(ctx, in.ID)
	if err != nil {
		return nil, CannonResult{}, toolError(err)
	}
	return nil, CannonResult{Cannon: *rec}, nil
}

func (t *toolset) addCannon(ctx context.Context, _ *sdkmcp.CallToolRequest, in AddCannonParams) (*sdkmcp.CallToolResult, CannonResult, error) {
	rec, err := t.cannons.Add(ctx, cannon.CreateRequest{
		Author:         in.Author,
		Name:           in.Name,
		Params:         in.Params,
		Color:          in.Color,
		Filename:       in.Filename,
		TrajectoryData: toSamples(in.TrajectoryData),
		OffsetData:     in.OffsetData,
	})
	if err != nil {
		return nil, CannonResult{}, toolError(err)
	}
	t.logger.Info("cannon added via mcp", "id", rec.ID, "session_id", getSessionID(ctx))
	return nil, CannonResult{Cannon: *rec}, nil
}

func (t *toolset) deleteCannon(ctx context.Context, _ *sdkmcp.CallToolRequest, in CannonIDParams) (*sdkmcp.CallToolResult, DeleteCannonResult, error) {
	if err := t.cannons.Delete(ctx, in.ID); err != nil {
		return nil, DeleteCannonResult{}, toolError(err)
	}
	return nil, DeleteCannonResult{Deleted: in.ID}, nil
}

func (t *toolset) deriveSeries(ctx context.Context, _ *sdkmcp.CallToolRequest, in DeriveSeriesParams) (*sdkmcp.CallToolResult, SeriesResult, error) {
	samples := toSamples(in.Samples)
	if in.ID != "" {
		rec, err := t.cannons.Get(ctx, in.ID)
		if err != nil {
			return nil, SeriesResult{}, toolError(err)
		}
		samples = rec.TrajectoryData
	}

	points := trajectory.DeriveSeries(samples)
	return nil, SeriesResult{
		Points: points,
		Bounds: trajectory.ComputeAxisBounds(t.axis, trajectory.AxisBounds{}, points),
	}, nil
}

func (t *toolset) filterOffsets(ctx context.Context, _ *sdkmcp.CallToolRequest, in FilterOffsetsParams) (*sdkmcp.CallToolResult, FilterOffsetsResult, error) {
	if (in.Horizontal == nil) != (in.Vertical == nil) {
		return nil, FilterOffsetsResult{}, toolError(fmt.Errorf("%w: horizontal and vertical windows must be given together", chart.ErrInvalidRequest))
	}
	preset, err := chart.ResolvePreset(in.Preset, in.Horizontal, in.Vertical)
	if err != nil {
		return nil, FilterOffsetsResult{}, toolError(err)
	}

	hist := in.OffsetData
	if in.ID != "" {
		rec, err := t.cannons.Get(ctx, in.ID)
		if err != nil {
			return nil, FilterOffsetsResult{}, toolError(err)
		}
		hist = rec.OffsetData
	}

	points := trajectory.FilterByOffsetRange(hist, preset.Horizontal, preset.Vertical)
	return nil, FilterOffsetsResult{
		Preset: preset,
		Points: points,
		Bounds: trajectory.ComputeAxisBounds(t.axis, trajectory.AxisBounds{}, points),
	}, nil
}

func (t *toolset) renderChart(ctx context.Context, _ *sdkmcp.CallToolRequest, in RenderChartParams) (*sdkmcp.CallToolResult, chart.View, error) {
	view, err := t.charts.Render(ctx, in.request())
	if err != nil {
		return nil, chart.View{}, toolError(err)
	}
	return nil, view, nil
}

func (t *toolset) renderChartImage(ctx context.Context, _ *sdkmcp.CallToolRequest, in RenderChartImageParams) (*sdkmcp.CallToolResult, any, error) {
	view, err := t.charts.Render(ctx, in.request())
	if err != nil {
		return nil, nil, toolError(err)
	}

	var buf bytes.Buffer
	if err := chart.WriteImage(&buf, view, chart.FormatPNG, in.Width, in.Height); err != nil {
		return nil, nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.ImageContent{
			Data:     buf.Bytes(),
			MIMEType: chart.FormatPNG.ContentType(),
		}},
	}, nil, nil
}

func (t *toolset) listAuthors(ctx context.Context, _ *sdkmcp.CallToolRequest, _ NoParams) (*sdkmcp.CallToolResult, ListAuthorsResult, error) {
	groups, err := t.cannons.Groups(ctx)
	if err != nil {
		return nil, ListAuthorsResult{}, toolError(err)
	}
	if groups == nil {
		groups = []cannon.AuthorGroup{}
	}
	return nil, ListAuthorsResult{Authors: groups}, nil
}

func (t *toolset) listPresets(_ context.Context, _ *sdkmcp.CallToolRequest, _ NoParams) (*sdkmcp.CallToolResult, ListPresetsResult, error) {
	return nil, ListPresetsResult{Presets: trajectory.Presets()}, nil
}
