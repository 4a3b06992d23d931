package chart

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ImageFormat selects the encoding used by WriteImage.
type ImageFormat string

const (
	FormatPNG ImageFormat = "png"
	FormatSVG ImageFormat = "svg"
)

const (
	DefaultImageWidth  = 1024
	DefaultImageHeight = 576
	MaxImageSize       = 4096
)

// ContentType returns the MIME type for the format.
func (f ImageFormat) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ParseImageFormat maps a query value to a format. Empty means PNG.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch ImageFormat(strings.ToLower(s)) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("%w: unknown image format %q", ErrInvalidRequest, s)
	}
}

// WriteImage draws view as a line chart with the view's own axis bounds.
// A view with no plottable points still renders its empty axes.
func WriteImage(w io.Writer, view View, format ImageFormat, width, height int) error {
	if width <= 0 {
		width = DefaultImageWidth
	}
	if height <= 0 {
		height = DefaultImageHeight
	}
	width, height = min(width, MaxImageSize), min(height, MaxImageSize)

	series := make([]gochart.Series, 0, len(view.Series))
	for _, s := range view.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			xs[i] = float64(p.X)
			ys[i] = float64(p.Y)
		}
		col := hexColor(s.Color)
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Label,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    3,
			},
		})
	}
	hasData := len(series) > 0
	if !hasData {
		// go-chart refuses to draw without a visible series.
		series = append(series, gochart.ContinuousSeries{
			XValues: []float64{0, float64(view.Bounds.RangeMax)},
			YValues: []float64{0, 0},
			Style:   gochart.Style{StrokeColor: drawing.ColorFromHex("cccccc"), StrokeWidth: 1},
		})
	}

	ch := gochart.Chart{
		Title:      view.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 28}},
		XAxis: gochart.XAxis{
			Name:  "Range",
			Range: &gochart.ContinuousRange{Min: float64(view.Bounds.RangeMin), Max: float64(view.Bounds.RangeMax)},
			Ticks: axisTicks(view.Bounds.RangeMin, view.Bounds.RangeMax, view.Bounds.RangeStep),
		},
		YAxis: gochart.YAxis{
			Name:  "Trajectories",
			Range: &gochart.ContinuousRange{Min: float64(view.Bounds.CountMin), Max: float64(view.Bounds.CountMax)},
			Ticks: axisTicks(view.Bounds.CountMin, view.Bounds.CountMax, view.Bounds.CountStep),
		},
		Series: series,
	}
	if hasData {
		ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	}

	renderer := gochart.PNG
	if format == FormatSVG {
		renderer = gochart.SVG
	}
	if err := ch.Render(renderer, w); err != nil {
		return fmt.Errorf("render chart image: %w", err)
	}
	return nil
}

// axisTicks labels every step from min up to max; max itself is always a tick.
func axisTicks(min, max, step int) []gochart.Tick {
	if step <= 0 || max <= min {
		return nil
	}
	ticks := make([]gochart.Tick, 0, (max-min)/step+2)
	for v := min; v < max; v += step {
		ticks = append(ticks, gochart.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return append(ticks, gochart.Tick{Value: float64(max), Label: strconv.Itoa(max)})
}

func hexColor(c string) drawing.Color {
	c = strings.TrimPrefix(c, "#")
	if len(c) != 6 {
		return drawing.ColorFromHex(strings.TrimPrefix(Palette[0], "#"))
	}
	return drawing.ColorFromHex(c)
}
