package transport

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rpggio/cannonplot/internal/chart"
	"github.com/rpggio/cannonplot/internal/domain/activity"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/trajectory"
	"github.com/rpggio/cannonplot/pkg/response"
)

type listQuery struct {
	Author string `form:"author"`
	Limit  int    `form:"limit" binding:"min=0"`
	Offset int    `form:"offset" binding:"min=0"`
}

// listCannons handles GET /api/v1/cannons
func (s *Server) listCannons(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	recs, err := s.svc.Cannons.List(c.Request.Context(), cannon.ListOptions{
		Author: q.Author,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	response.Success(c, recs)
}

type addCannonBody struct {
	Author         string                     `json:"author"`
	Name           string                     `json:"name"`
	Params         string                     `json:"params"`
	Color          string                     `json:"color"`
	Filename       string                     `json:"filename"`
	TrajectoryData trajectory.Samples         `json:"trajectoryData"`
	OffsetData     trajectory.OffsetHistogram `json:"offsetData"`
}

// addCannon handles POST /api/v1/cannons
func (s *Server) addCannon(c *gin.Context) {
	var body addCannonBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	rec, err := s.svc.Cannons.Add(c.Request.Context(), cannon.CreateRequest{
		Author:         body.Author,
		Name:           body.Name,
		Params:         body.Params,
		Color:          body.Color,
		Filename:       body.Filename,
		TrajectoryData: body.TrajectoryData,
		OffsetData:     body.OffsetData,
	})
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	response.Created(c, rec)
}

// getCannon handles GET /api/v1/cannons/:id
func (s *Server) getCannon(c *gin.Context) {
	rec, err := s.svc.Cannons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	response.Success(c, rec)
}

// cannonSeries handles GET /api/v1/cannons/:id/series
func (s *Server) cannonSeries(c *gin.Context) {
	rec, err := s.svc.Cannons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	response.Success(c, gin.H{
		"id":     rec.ID,
		"name":   rec.Name,
		"points": trajectory.DeriveSeries(rec.TrajectoryData),
	})
}

// deleteCannon handles DELETE /api/v1/cannons/:id
func (s *Server) deleteCannon(c *gin.Context) {
	id := c.Param("id")
	if err := s.svc.Cannons.Delete(c.Request.Context(), id); err != nil {
		writeError(c, s.logger, err)
		return
	}
	response.Success(c, gin.H{"deleted": id})
}

// deleteAllCannons handles DELETE /api/v1/cannons
func (s *Server) deleteAllCannons(c *gin.Context) {
	if err := s.svc.Cannons.DeleteAll(c.Request.Context()); err != nil {
		writeError(c, s.logger, err)
		return
	}
	response.Success(c, gin.H{"deleted": "all"})
}

// importCannons handles POST /api/v1/import. The body replaces the store.
func (s *Server) importCannons(c *gin.Context) {
	recs, err := cannon.ParseImport(c.Request.Body)
	if err != nil {
		writeError(c, s.logger, err)
		return
	}

	result, err := s.svc.Cannons.Import(c.Request.Context(), recs)
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	response.Success(c, result)
}

// exportCannons handles GET /api/v1/export. The body is the bare record
// array, so it can be posted back to /import unchanged.
func (s *Server) exportCannons(c *gin.Context) {
	recs, err := s.svc.Cannons.Export(c.Request.Context())
	if err != nil {
		writeError(c, s.logger, err)
		return
	}

	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cannon.ExportFilename(time.Now())))
	c.Status(http.StatusOK)
	if err := cannon.WriteExport(c.Writer, recs); err != nil {
		s.logger.Error("failed to write export", "error", err)
	}
}

// listAuthors handles GET /api/v1/authors
func (s *Server) listAuthors(c *gin.Context) {
	groups, err := s.svc.Cannons.Groups(c.Request.Context())
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	if groups == nil {
		groups = []cannon.AuthorGroup{}
	}
	response.Success(c, groups)
}

// stats handles GET /api/v1/stats
func (s *Server) stats(c *gin.Context) {
	stats, err := s.svc.Cannons.Stats(c.Request.Context())
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	response.Success(c, stats)
}

// renderChart handles GET /api/v1/chart
func (s *Server) renderChart(c *gin.Context) {
	req, err := chartRequest(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := s.svc.Charts.Render(c.Request.Context(), req)
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	response.Success(c, view)
}

type imageQuery struct {
	Format string `form:"format"`
	Width  int    `form:"width" binding:"min=0,max=4096"`
	Height int    `form:"height" binding:"min=0,max=4096"`
}

// renderChartImage handles GET /api/v1/chart/image
func (s *Server) renderChartImage(c *gin.Context) {
	var q imageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	format, err := chart.ParseImageFormat(q.Format)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req, err := chartRequest(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := s.svc.Charts.Render(c.Request.Context(), req)
	if err != nil {
		writeError(c, s.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := chart.WriteImage(&buf, view, format, q.Width, q.Height); err != nil {
		writeError(c, s.logger, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func chartRequest(c *gin.Context) (chart.Request, error) {
	req := chart.Request{
		Author: c.Query("author"),
		Mode:   chart.Mode(c.Query("mode")),
		Preset: c.Query("preset"),
		Title:  c.Query("title"),
	}
	for _, id := range strings.Split(c.Query("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			req.IDs = append(req.IDs, id)
		}
	}

	bounds := make([]int, 0, 4)
	for _, key := range []string{"hmin", "hmax", "vmin", "vmax"} {
		raw, ok := c.GetQuery(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return chart.Request{}, fmt.Errorf("%s must be an integer", key)
		}
		bounds = append(bounds, n)
	}
	switch len(bounds) {
	case 0:
	case 4:
		req.Horizontal = &trajectory.OffsetRange{Min: bounds[0], Max: bounds[1]}
		req.Vertical = &trajectory.OffsetRange{Min: bounds[2], Max: bounds[3]}
	default:
		return chart.Request{}, fmt.Errorf("hmin, hmax, vmin and vmax must be given together")
	}
	return req, nil
}

// listPresets handles GET /api/v1/presets
func (s *Server) listPresets(c *gin.Context) {
	response.Success(c, trajectory.Presets())
}

type activityQuery struct {
	CannonID string `form:"cannon_id"`
	Type     string `form:"type"`
	Limit    int    `form:"limit" binding:"min=0"`
	Offset   int    `form:"offset" binding:"min=0"`
}

// listActivity handles GET /api/v1/activity
func (s *Server) listActivity(c *gin.Context) {
	var q activityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	opts := activity.ListActivityOptions{Limit: q.Limit, Offset: q.Offset}
	if q.CannonID != "" {
		opts.CannonID = &q.CannonID
	}
	if q.Type != "" {
		kind := activity.ActivityType(q.Type)
		opts.ActivityType = &kind
	}

	entries, err := s.svc.Activity.GetRecentActivity(c.Request.Context(), opts)
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	response.Success(c, entries)
}

// syncCatalog handles POST /api/v1/sync
func (s *Server) syncCatalog(c *gin.Context) {
	if s.svc.Syncer == nil {
		response.Error(c, http.StatusServiceUnavailable, "remote catalog not configured")
		return
	}

	result, err := s.svc.Syncer.Sync(c.Request.Context())
	if err != nil {
		s.logger.Warn("catalog sync failed", "error", err)
		response.Error(c, http.StatusBadGateway, "catalog sync failed")
		return
	}
	response.Success(c, result)
}
