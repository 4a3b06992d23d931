package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const entryJSON = `{
	"filename": "%s",
	"火炮作者": "Steve",
	"火炮名称": "Pearl Cannon",
	"火炮参数": "TNT x12",
	"颜色": "#FF6B6B",
	"火炮数据json": {"300": {"水平偏移": {"-50": 10}, "垂直偏移": {"20": 7}}}
}`

func newCatalog(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_HealthAndList(t *testing.T) {
	var listCalls atomic.Int32
	srv := newCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			fmt.Fprint(w, `{"status":"healthy"}`)
		case "/cannons/list":
			listCalls.Add(1)
			fmt.Fprint(w, `{"files":["a.json","b.json"]}`)
		default:
			http.NotFound(w, r)
		}
	})

	client := NewClient(Options{BaseURL: srv.URL + "/", CacheTTL: time.Minute})
	ctx := context.Background()

	healthy, err := client.Health(ctx)
	require.NoError(t, err)
	require.True(t, healthy)

	files, err := client.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a.json", "b.json"}, files)

	_, err = client.List(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, listCalls.Load(), "second list should be served from cache")

	client.ClearCache()
	_, err = client.List(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, listCalls.Load())
}

func TestClient_CacheExpires(t *testing.T) {
	var calls atomic.Int32
	srv := newCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"files":[]}`)
	})

	client := NewClient(Options{BaseURL: srv.URL, CacheTTL: time.Minute})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	ctx := context.Background()
	files, err := client.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, files)

	now = now.Add(30 * time.Second)
	_, err = client.List(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, calls.Load())

	now = now.Add(time.Minute)
	_, err = client.List(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
}

func TestClient_Get(t *testing.T) {
	srv := newCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/cannons/data/")
		fmt.Fprintf(w, entryJSON, name)
	})

	entry, err := NewClient(Options{BaseURL: srv.URL}).Get(context.Background(), "pearl.json")
	require.NoError(t, err)
	require.Equal(t, "pearl.json", entry.Filename)
	require.Equal(t, "Steve", entry.Author)
	require.Equal(t, "Pearl Cannon", entry.Name)
	require.Equal(t, 10, entry.Data["300"].Horizontal["-50"])
	require.Equal(t, 7, entry.Data["300"].Vertical["20"])
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := newCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client := NewClient(Options{BaseURL: srv.URL})
	_, err := client.List(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedStatus)

	healthy, err := client.Health(context.Background())
	require.Error(t, err)
	require.False(t, healthy)
}

func TestClient_BatchGetBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	var mu sync.Mutex
	srv := newCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)

		name := strings.TrimPrefix(r.URL.Path, "/cannons/data/")
		if name == "broken.json" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, entryJSON, name)
	})

	names := []string{"broken.json"}
	for i := 0; i < 12; i++ {
		names = append(names, fmt.Sprintf("c%02d.json", i))
	}

	fetched := NewClient(Options{BaseURL: srv.URL}).BatchGet(context.Background(), names)
	require.Len(t, fetched, 12)
	require.Equal(t, "c00.json", fetched[0].Filename)
	require.Equal(t, "c11.json", fetched[11].Filename)
	require.LessOrEqual(t, peak.Load(), int32(MaxConcurrentFetches))
}
