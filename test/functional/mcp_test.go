package functional_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/cannonplot/internal/testserver"
	"github.com/stretchr/testify/require"
)

func connectHTTP(t *testing.T, ts *testserver.TestServer) *sdkmcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.URL("/mcp"),
		HTTPClient: ts.AuthClient(),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

// callTool makes a tools/call request and unwraps the text result
func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) *sdkmcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if out == nil {
		return result
	}
	require.False(t, result.IsError, "tool %s returned error", name)
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			require.NoError(t, json.Unmarshal([]byte(text.Text), out))
			return result
		}
	}
	t.Fatalf("tool %s returned no text content", name)
	return nil
}

func TestHTTPFunctional_RequiresToken(t *testing.T) {
	ts := testserver.New(t, "secret", nil)

	resp, err := http.Post(ts.URL("/mcp"), "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTPFunctional_MCPAndRESTShareStore(t *testing.T) {
	ts := testserver.New(t, "secret", nil)
	session := connectHTTP(t, ts)

	var added struct {
		Cannon struct {
			ID string `json:"id"`
		} `json:"cannon"`
	}
	callTool(t, session, "add_cannon", map[string]any{
		"author":   "Steve",
		"name":     "MK1",
		"filename": "steve-mk1.json",
		"trajectoryData": []map[string]any{
			{"range": 100, "low": 12, "medium": 25, "high": 18},
		},
		"offsetData": map[string]any{
			"300": map[string]any{"horizontal": map[string]int{"-50": 10}, "vertical": map[string]int{"20": 4}},
		},
	}, &added)
	require.NotEmpty(t, added.Cannon.ID)

	resp, err := http.Get(ts.URL("/api/v1/cannons/" + added.Cannon.ID + "/series"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Data struct {
			Points []struct {
				X int `json:"x"`
				Y int `json:"y"`
			} `json:"points"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.Len(t, env.Data.Points, 1)
	require.Equal(t, 25, env.Data.Points[0].Y)

	var view struct {
		Mode   string `json:"mode"`
		Series []struct {
			Points []struct {
				Y int `json:"y"`
			} `json:"points"`
		} `json:"series"`
	}
	callTool(t, session, "render_chart", map[string]any{"mode": "offsets"}, &view)
	require.Equal(t, "offsets", view.Mode)
	require.Len(t, view.Series, 1)
	require.Equal(t, 14, view.Series[0].Points[0].Y)

	dup := callTool(t, session, "add_cannon", map[string]any{
		"author": "Alex", "name": "V2", "filename": "steve-mk1.json",
	}, nil)
	require.True(t, dup.IsError)
}

func TestHTTPFunctional_Resources(t *testing.T) {
	ts := testserver.New(t, "", nil)
	session := connectHTTP(t, ts)

	res, err := session.ListResources(context.Background(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.Resources)

	read, err := session.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: res.Resources[0].URI})
	require.NoError(t, err)
	require.NotEmpty(t, read.Contents[0].Text)
}
