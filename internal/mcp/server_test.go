package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/cannonplot/internal/chart"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/memstore"
	"github.com/rpggio/cannonplot/internal/trajectory"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	session *sdkmcp.ClientSession
	cannons *cannon.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store := memstore.New()
	cannons := cannon.NewService(store.Cannons(), store.Activities(), nil)
	server := NewServer(Config{
		Services: Services{
			Cannons: cannons,
			Charts:  chart.NewService(cannons, trajectory.DefaultAxisConfig(), nil),
		},
		Axis: trajectory.DefaultAxisConfig(),
	})

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return &testEnv{session: session, cannons: cannons}
}

func (e *testEnv) call(t *testing.T, name string, args any, out any) *sdkmcp.CallToolResult {
	t.Helper()
	res, err := e.session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if out != nil {
		require.False(t, res.IsError, "%s failed: %s", name, toolText(res))
		require.NoError(t, json.Unmarshal([]byte(toolText(res)), out))
	}
	return res
}

func toolText(res *sdkmcp.CallToolResult) string {
	for _, c := range res.Content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func TestServer_ListTools(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"list_cannons", "get_cannon", "add_cannon", "delete_cannon",
		"derive_series", "filter_offsets", "render_chart", "render_chart_image", "list_authors", "list_presets",
	} {
		require.True(t, names[want], "missing tool %s", want)
	}
}

func TestServer_CannonLifecycle(t *testing.T) {
	env := newTestEnv(t)

	var added CannonResult
	env.call(t, "add_cannon", map[string]any{
		"author": "Steve",
		"name":   "MK1",
		"color":  "#112233",
		"trajectoryData": []map[string]any{
			{"range": 200, "low": 3},
			{"range": 100, "low": 12, "medium": 25, "high": 18},
		},
	}, &added)
	require.NotEmpty(t, added.Cannon.ID)
	require.Equal(t, 100, added.Cannon.TrajectoryData[0].Range)
	require.Equal(t, 55, added.Cannon.TrajectoryData[0].Total)

	var listed ListCannonsResult
	env.call(t, "list_cannons", map[string]any{"author": "Steve"}, &listed)
	require.Len(t, listed.Cannons, 1)

	var got CannonResult
	env.call(t, "get_cannon", map[string]any{"id": added.Cannon.ID}, &got)
	require.Equal(t, "MK1", got.Cannon.Name)

	var series SeriesResult
	env.call(t, "derive_series", map[string]any{"id": added.Cannon.ID}, &series)
	require.Equal(t, []trajectory.PlotPoint{{X: 100, Y: 25}, {X: 200, Y: 3}}, series.Points)
	require.Equal(t, 1450, series.Bounds.RangeMax)

	var authors ListAuthorsResult
	env.call(t, "list_authors", map[string]any{}, &authors)
	require.Len(t, authors.Authors, 1)
	require.Equal(t, "Steve", authors.Authors[0].Author)

	var deleted DeleteCannonResult
	env.call(t, "delete_cannon", map[string]any{"id": added.Cannon.ID}, &deleted)
	require.Equal(t, added.Cannon.ID, deleted.Deleted)

	res := env.call(t, "get_cannon", map[string]any{"id": added.Cannon.ID}, nil)
	require.True(t, res.IsError)
	require.Contains(t, toolText(res), "CANNON_NOT_FOUND")
}

func TestServer_DeriveSeriesInline(t *testing.T) {
	env := newTestEnv(t)

	var series SeriesResult
	env.call(t, "derive_series", map[string]any{
		"samples": []map[string]any{{"range": 1500, "high": 450}},
	}, &series)
	require.Equal(t, []trajectory.PlotPoint{{X: 1500, Y: 450}}, series.Points)
	require.Equal(t, 1700, series.Bounds.RangeMax)
	require.Equal(t, 200, series.Bounds.RangeStep)
	require.Equal(t, 550, series.Bounds.CountMax)
}

func TestServer_FilterOffsets(t *testing.T) {
	env := newTestEnv(t)
	hist := map[string]any{
		"300": map[string]any{
			"horizontal": map[string]int{"-50": 10, "500": 7},
			"vertical":   map[string]int{"20": 4, "100": 8},
		},
	}

	var result FilterOffsetsResult
	env.call(t, "filter_offsets", map[string]any{"offsetData": hist}, &result)
	require.Equal(t, "comprehensive", result.Preset.Name)
	require.Equal(t, []trajectory.PlotPoint{{X: 300, Y: 22}}, result.Points)

	env.call(t, "filter_offsets", map[string]any{"offsetData": hist, "preset": "flat"}, &result)
	require.Equal(t, []trajectory.PlotPoint{{X: 300, Y: 14}}, result.Points)

	env.call(t, "filter_offsets", map[string]any{
		"offsetData": hist,
		"horizontal": map[string]int{"min": 0, "max": 0},
		"vertical":   map[string]int{"min": 0, "max": 30},
	}, &result)
	require.Equal(t, "custom", result.Preset.Name)
	require.Equal(t, []trajectory.PlotPoint{{X: 300, Y: 4}}, result.Points)

	res := env.call(t, "filter_offsets", map[string]any{"offsetData": hist, "preset": "nope"}, nil)
	require.True(t, res.IsError)
	require.Contains(t, toolText(res), "INVALID_CHART_REQUEST")

	res = env.call(t, "filter_offsets", map[string]any{
		"offsetData": hist,
		"horizontal": map[string]int{"min": 0, "max": 10},
	}, nil)
	require.True(t, res.IsError)
}

func TestServer_RenderChart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.cannons.SeedIfEmpty(ctx)
	require.NoError(t, err)

	var view chart.View
	env.call(t, "render_chart", map[string]any{}, &view)
	require.Equal(t, chart.ModeBands, view.Mode)
	require.Equal(t, chart.DefaultTitle, view.Title)
	require.Len(t, view.Series, len(cannon.SampleCannons()))

	res := env.call(t, "render_chart", map[string]any{"mode": "pie"}, nil)
	require.True(t, res.IsError)
	require.Contains(t, toolText(res), "INVALID_CHART_REQUEST")
}

func TestServer_RenderChartImage(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.cannons.SeedIfEmpty(context.Background())
	require.NoError(t, err)

	res := env.call(t, "render_chart_image", map[string]any{"width": 320, "height": 200}, nil)
	require.False(t, res.IsError, toolText(res))
	require.Len(t, res.Content, 1)
	img, ok := res.Content[0].(*sdkmcp.ImageContent)
	require.True(t, ok)
	require.Equal(t, "image/png", img.MIMEType)
	require.True(t, bytes.HasPrefix(img.Data, []byte("\x89PNG")))
}

func TestServer_AddValidation(t *testing.T) {
	env := newTestEnv(t)

	res := env.call(t, "add_cannon", map[string]any{"author": "a", "name": "n", "color": "red"}, nil)
	require.True(t, res.IsError)
	require.Contains(t, toolText(res), "INVALID_INPUT")

	var added CannonResult
	env.call(t, "add_cannon", map[string]any{"author": "a", "name": "n", "filename": "a.json"}, &added)
	res = env.call(t, "add_cannon", map[string]any{"author": "b", "name": "m", "filename": "a.json"}, nil)
	require.True(t, res.IsError)
	require.Contains(t, toolText(res), "DUPLICATE_FILENAME")
}

func TestServer_ListPresets(t *testing.T) {
	env := newTestEnv(t)

	var result ListPresetsResult
	env.call(t, "list_presets", map[string]any{}, &result)
	require.Len(t, result.Presets, len(trajectory.Presets()))
	require.Equal(t, trajectory.DefaultPreset, result.Presets[0].Name)
}

func TestServer_DocResources(t *testing.T) {
	env := newTestEnv(t)

	for _, doc := range docResources {
		res, err := env.session.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: doc.URI})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		require.Equal(t, "text/markdown", res.Contents[0].MIMEType)
		require.Equal(t, doc.Content, res.Contents[0].Text)
	}
}

func TestMapError(t *testing.T) {
	cases := map[error]string{
		cannon.ErrCannonNotFound:                                "CANNON_NOT_FOUND",
		fmt.Errorf("%w: bad color", cannon.ErrInvalidInput):     "INVALID_INPUT",
		cannon.ErrDuplicateFilename:                             "DUPLICATE_FILENAME",
		fmt.Errorf("%w: unknown mode", chart.ErrInvalidRequest): "INVALID_CHART_REQUEST",
	}
	for err, code := range cases {
		apiErr := MapError(err)
		require.NotNil(t, apiErr)
		require.Equal(t, code, apiErr.Code)
		require.ErrorIs(t, apiErr, err)
	}

	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(errors.New("boom")))

	plain := errors.New("boom")
	require.Same(t, plain, toolError(plain))
}
