package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/cannonplot/internal/chart"
	"github.com/rpggio/cannonplot/internal/config"
	"github.com/rpggio/cannonplot/internal/domain/activity"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/mcp"
	"github.com/rpggio/cannonplot/internal/memstore"
	"github.com/rpggio/cannonplot/internal/remote"
	"github.com/rpggio/cannonplot/internal/sqlite"
	"github.com/rpggio/cannonplot/internal/transport"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == config.ModeStdio {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	store, closeStore := openStore(cfg.DB, logger)
	defer closeStore()

	cannonSvc := cannon.NewService(store.cannons, store.activities, logger)
	activitySvc := activity.NewService(store.activities, logger)
	chartSvc := chart.NewService(cannonSvc, cfg.Chart.Axis, logger)

	ctx := context.Background()
	if cfg.Seed.Samples {
		if _, err := cannonSvc.SeedIfEmpty(ctx); err != nil {
			logger.Warn("failed to seed sample cannons", "error", err)
		}
	}

	var syncer transport.Syncer
	if cfg.Remote.BaseURL != "" {
		client := remote.NewClient(remote.Options{
			BaseURL:  cfg.Remote.BaseURL,
			CacheTTL: cfg.Remote.CacheTTL,
			Timeout:  cfg.Remote.Timeout,
			Logger:   logger,
		})
		s := remote.NewSyncer(client, cannonSvc, activitySvc, logger)
		syncer = s
		go syncOnStart(ctx, logger, s)
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Cannons: cannonSvc,
			Charts:  chartSvc,
		},
		Axis:    cfg.Chart.Axis,
		Version: version,
		Logger:  logger,
	})

	if cfg.Transport.Mode == config.ModeStdio {
		runStdioMode(logger, mcpServer)
		return
	}

	services := transport.Services{
		Cannons:  cannonSvc,
		Charts:   chartSvc,
		Activity: activitySvc,
		Syncer:   syncer,
	}
	runHTTPMode(logger, mcpServer, services, cfg)
}

type repositories struct {
	cannons    cannon.Repository
	activities activity.Repository
}

// openStore opens the configured store. A sqlite store that cannot be opened
// falls back to memory so the dashboard stays usable.
func openStore(cfg config.DBConfig, logger *slog.Logger) (repositories, func()) {
	if cfg.Driver == config.DriverSQLite {
		db, err := openSQLite(cfg.Path)
		if err == nil {
			logger.Info("using sqlite store", "path", cfg.Path)
			return repositories{
				cannons:    sqlite.NewCannonRepository(db),
				activities: sqlite.NewActivityRepository(db),
			}, func() { _ = db.Close() }
		}
		logger.Warn("sqlite store unavailable, falling back to memory", "path", cfg.Path, "error", err)
	}

	mem := memstore.New()
	logger.Info("using in-memory store")
	return repositories{cannons: mem.Cannons(), activities: mem.Activities()}, func() {}
}

func openSQLite(path string) (*sqlite.DB, error) {
	if err := ensureDBDir(path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func syncOnStart(ctx context.Context, logger *slog.Logger, s *remote.Syncer) {
	result, err := s.Sync(ctx)
	if err != nil {
		logger.Warn("catalog sync failed", "error", err)
		return
	}
	logger.Info("catalog sync finished", "remote", result.Remote, "added", result.Added, "failed", result.Failed)
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, services transport.Services, cfg config.Config) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transport.NewServer(services, transport.Options{
		AuthToken: cfg.Auth.Token,
		Logger:    logger,
		MCP:       mcpHandler,

		SyncInterval: cfg.Remote.SyncInterval,
		SyncBurst:    cfg.Remote.SyncBurst,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Token != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

type logFileWriter struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, *os.File, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	writer := &logFileWriter{path: path, file: file}
	if err := writer.truncateIfNeeded(); err != nil {
		return nil, nil, err
	}
	return writer, file, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogSizeBytes {
		return nil
	}
	if size <= keepLogSizeBytes {
		return nil
	}

	buf := make([]byte, keepLogSizeBytes)
	if _, err := w.file.Seek(size-keepLogSizeBytes, io.SeekStart); err != nil {
		return err
	}
	n, err := w.file.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.file.Write(buf); err != nil {
		return err
	}
	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}
