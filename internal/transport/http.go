package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rpggio/cannonplot/internal/chart"
	"github.com/rpggio/cannonplot/internal/domain/activity"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/remote"
)

// Syncer runs a catalog sync.
type Syncer interface {
	Sync(ctx context.Context) (remote.SyncResult, error)
}

// Services are the domain services the API exposes. Syncer may be nil when
// no catalog is configured.
type Services struct {
	Cannons  *cannon.Service
	Charts   *chart.Service
	Activity *activity.Service
	Syncer   Syncer
}

// Options configures the router.
type Options struct {
	// AuthToken guards mutating routes and /mcp when set.
	AuthToken string
	Logger    *slog.Logger
	// MCP is mounted at /mcp when non-nil.
	MCP http.Handler
	// SyncInterval limits catalog syncs per client. Zero disables the limit.
	SyncInterval time.Duration
	SyncBurst    int
}

// Server holds the handlers behind the REST API.
type Server struct {
	svc    Services
	logger *slog.Logger
}

// NewServer creates the gin engine serving the REST API.
func NewServer(svc Services, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(CORS())

	srv := &Server{svc: svc, logger: logger}
	guard := BearerAuth(opts.AuthToken)

	r.GET("/health", srv.handleHealth)

	api := r.Group("/api/v1")
	{
		cannons := api.Group("/cannons")
		{
			cannons.GET("", srv.listCannons)
			cannons.POST("", guard, srv.addCannon)
			cannons.DELETE("", guard, srv.deleteAllCannons)
			cannons.GET("/:id", srv.getCannon)
			cannons.GET("/:id/series", srv.cannonSeries)
			cannons.DELETE("/:id", guard, srv.deleteCannon)
		}

		api.POST("/import", guard, srv.importCannons)
		api.GET("/export", srv.exportCannons)
		api.GET("/authors", srv.listAuthors)
		api.GET("/stats", srv.stats)
		api.GET("/chart", srv.renderChart)
		api.GET("/chart/image", srv.renderChartImage)
		api.GET("/presets", srv.listPresets)
		api.GET("/activity", srv.listActivity)
		api.POST("/sync", guard, RateLimit(opts.SyncInterval, opts.SyncBurst), srv.syncCatalog)
	}

	if opts.MCP != nil {
		r.Any("/mcp", guard, gin.WrapH(opts.MCP))
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "cannonplot is running",
	})
}
