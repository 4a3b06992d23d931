package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/cannonplot/internal/chart"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/trajectory"
)

// CannonService defines cannon operations needed by MCP.
type CannonService interface {
	Add(ctx context.Context, req cannon.CreateRequest) (*cannon.Record, error)
	Get(ctx context.Context, id string) (*cannon.Record, error)
	List(ctx context.Context, opts cannon.ListOptions) ([]cannon.Record, error)
	Delete(ctx context.Context, id string) error
	Groups(ctx context.Context) ([]cannon.AuthorGroup, error)
}

// ChartService defines chart rendering needed by MCP.
type ChartService interface {
	Render(ctx context.Context, req chart.Request) (chart.View, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Cannons CannonService
	Charts  ChartService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Axis     trajectory.AxisConfig
	Version  string
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "cannonplot",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, &toolset{
		cannons: cfg.Services.Cannons,
		charts:  cfg.Services.Charts,
		axis:    cfg.Axis,
		logger:  logger,
	})

	return server
}
