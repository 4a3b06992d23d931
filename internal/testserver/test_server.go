package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/cannonplot/internal/chart"
	"github.com/rpggio/cannonplot/internal/domain/activity"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/mcp"
	"github.com/rpggio/cannonplot/internal/sqlite"
	"github.com/rpggio/cannonplot/internal/transport"
	"github.com/rpggio/cannonplot/internal/trajectory"
	"github.com/stretchr/testify/require"
)

// TestServer runs the full HTTP stack, REST and MCP, over a private sqlite
// database.
type TestServer struct {
	Server  *httptest.Server
	DB      *sqlite.DB
	Token   string
	Cannons *cannon.Service
}

// New starts a server guarded by token. Pass an empty token to disable auth.
func New(t *testing.T, token string, syncer transport.Syncer) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	activityRepo := sqlite.NewActivityRepository(db)
	cannonSvc := cannon.NewService(sqlite.NewCannonRepository(db), activityRepo, nil)
	activitySvc := activity.NewService(activityRepo, nil)
	chartSvc := chart.NewService(cannonSvc, trajectory.DefaultAxisConfig(), nil)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{Cannons: cannonSvc, Charts: chartSvc},
		Axis:     trajectory.DefaultAxisConfig(),
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 5 * time.Minute},
	)

	router := transport.NewServer(transport.Services{
		Cannons:  cannonSvc,
		Charts:   chartSvc,
		Activity: activitySvc,
		Syncer:   syncer,
	}, transport.Options{AuthToken: token, MCP: mcpHandler})

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{Server: server, DB: db, Token: token, Cannons: cannonSvc}
}

// URL joins path onto the server base URL.
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

// AuthClient returns an HTTP client that sends the bearer token on every
// request.
func (ts *TestServer) AuthClient() *http.Client {
	return &http.Client{Transport: &bearerTransport{token: ts.Token, base: http.DefaultTransport}}
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if b.token == "" {
		return b.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(req)
}
