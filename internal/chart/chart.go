// Package chart turns stored cannons into chart payloads: one labeled series
// per visible cannon plus axis bounds sized to the visible union.
package chart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/trajectory"
)

// Mode selects how a cannon's measurements become a series.
type Mode string

const (
	// ModeBands plots the elevation-band counts per range.
	ModeBands Mode = "bands"
	// ModeOffsets plots offset-histogram totals inside a pair of windows.
	ModeOffsets Mode = "offsets"
)

// DefaultTitle labels band-mode charts without an explicit title.
const DefaultTitle = "Firepower curve - range vs trajectories"

// ErrInvalidRequest reports a request that names an unknown mode or preset,
// or an inverted window.
var ErrInvalidRequest = errors.New("invalid chart request")

// Palette colors cannons that carry no color of their own, indexed by the
// cannon's position in the full store listing.
var Palette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#FFA07A", "#98D8C8", "#F7DC6F", "#BB8FCE",
	"#85C1E9", "#F8C471", "#82E0AA", "#F1948A", "#AED6F1",
}

// Lister is the slice of the cannon service a chart needs.
type Lister interface {
	List(ctx context.Context, opts cannon.ListOptions) ([]cannon.Record, error)
}

// Request describes which cannons to plot and how.
type Request struct {
	// IDs limits the chart to these cannons. Empty means every cannon.
	IDs    []string
	Author string
	Mode   Mode
	// Preset names a built-in offset window pair. Ignored when Horizontal
	// and Vertical are both set.
	Preset     string
	Horizontal *trajectory.OffsetRange
	Vertical   *trajectory.OffsetRange
	Title      string
}

// Series is one plotted cannon.
type Series struct {
	ID     string                 `json:"id"`
	Label  string                 `json:"label"`
	Author string                 `json:"author"`
	Color  string                 `json:"color"`
	Points []trajectory.PlotPoint `json:"points"`
}

// View is a complete chart payload.
type View struct {
	Title  string                `json:"title"`
	Mode   Mode                  `json:"mode"`
	Preset *trajectory.Preset    `json:"preset,omitempty"`
	Series []Series              `json:"series"`
	Bounds trajectory.AxisBounds `json:"bounds"`
}

// Service renders chart views.
type Service struct {
	cannons Lister
	axis    trajectory.AxisConfig
	logger  *slog.Logger
}

// NewService creates a chart service. logger may be nil.
func NewService(cannons Lister, axis trajectory.AxisConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{cannons: cannons, axis: axis, logger: logger}
}

// Render builds the view for req. A store failure yields an empty view
// rather than an error; only a malformed request is rejected.
func (s *Service) Render(ctx context.Context, req Request) (View, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeBands
	}

	view := View{Mode: mode, Series: []Series{}}
	switch mode {
	case ModeBands:
		view.Title = DefaultTitle
	case ModeOffsets:
		preset, err := ResolvePreset(req.Preset, req.Horizontal, req.Vertical)
		if err != nil {
			return View{}, err
		}
		view.Preset = &preset
		view.Title = preset.Title
	default:
		return View{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, mode)
	}
	if req.Title != "" {
		view.Title = req.Title
	}

	recs, err := s.cannons.List(ctx, cannon.ListOptions{})
	if err != nil {
		s.logger.Error("chart store unavailable, rendering empty view", "error", err)
		view.Bounds = trajectory.ComputeAxisBounds(s.axis, trajectory.AxisBounds{})
		return view, nil
	}

	visible := visibleSet(req.IDs)
	points := make([][]trajectory.PlotPoint, 0, len(recs))
	for i, rec := range recs {
		if visible != nil && !visible[rec.ID] {
			continue
		}
		if req.Author != "" && rec.Author != req.Author {
			continue
		}

		var series []trajectory.PlotPoint
		if mode == ModeBands {
			series = trajectory.DeriveSeries(rec.TrajectoryData)
		} else {
			if len(rec.OffsetData) == 0 {
				continue
			}
			series = trajectory.FilterByOffsetRange(rec.OffsetData, view.Preset.Horizontal, view.Preset.Vertical)
		}

		view.Series = append(view.Series, Series{
			ID:     rec.ID,
			Label:  rec.Name,
			Author: rec.Author,
			Color:  colorFor(rec, i),
			Points: series,
		})
		points = append(points, series)
	}

	view.Bounds = trajectory.ComputeAxisBounds(s.axis, trajectory.AxisBounds{}, points...)
	return view, nil
}

// ResolvePreset picks the offset windows for a request: a custom pair when
// both windows are given, otherwise the named preset or the default.
func ResolvePreset(name string, horizontal, vertical *trajectory.OffsetRange) (trajectory.Preset, error) {
	if horizontal != nil && vertical != nil {
		if !horizontal.Valid() || !vertical.Valid() {
			return trajectory.Preset{}, fmt.Errorf("%w: window minimum exceeds maximum", ErrInvalidRequest)
		}
		return trajectory.CustomPreset(*horizontal, *vertical), nil
	}

	if name == "" {
		name = trajectory.DefaultPreset
	}
	preset, ok := trajectory.LookupPreset(name)
	if !ok {
		return trajectory.Preset{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidRequest, name)
	}
	return preset, nil
}

func visibleSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func colorFor(rec cannon.Record, index int) string {
	if rec.Color != "" {
		return rec.Color
	}
	return Palette[index%len(Palette)]
}
