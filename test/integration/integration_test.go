package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/cannonplot/internal/chart"
	"github.com/rpggio/cannonplot/internal/domain/activity"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/remote"
	"github.com/rpggio/cannonplot/internal/sqlite"
	"github.com/rpggio/cannonplot/internal/trajectory"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db          *sqlite.DB
	path        string
	cannonSvc   *cannon.Service
	activitySvc *activity.Service
	chartSvc    *chart.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "cannonplot.db")
	return openEnv(t, path)
}

func openEnv(t *testing.T, path string) *testEnv {
	t.Helper()
	require.NoError(t, ensureDir(path))

	db, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	activityRepo := sqlite.NewActivityRepository(db)
	cannonSvc := cannon.NewService(sqlite.NewCannonRepository(db), activityRepo, nil)

	return &testEnv{
		db:          db,
		path:        path,
		cannonSvc:   cannonSvc,
		activitySvc: activity.NewService(activityRepo, nil),
		chartSvc:    chart.NewService(cannonSvc, trajectory.DefaultAxisConfig(), nil),
	}
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func TestIntegration_SeedPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	seeded, err := env.cannonSvc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.True(t, seeded)
	require.NoError(t, env.db.Close())

	reopened := openEnv(t, env.path)
	seeded, err = reopened.cannonSvc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.False(t, seeded)

	recs, err := reopened.cannonSvc.List(ctx, cannon.ListOptions{})
	require.NoError(t, err)
	require.Len(t, recs, len(cannon.SampleCannons()))

	view, err := reopened.chartSvc.Render(ctx, chart.Request{})
	require.NoError(t, err)
	require.Len(t, view.Series, len(recs))
	for i, series := range view.Series {
		require.Equal(t, trajectory.DeriveSeries(recs[i].TrajectoryData), series.Points)
	}
}

func TestIntegration_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newTestEnv(t)

	_, err := source.cannonSvc.Add(ctx, cannon.CreateRequest{
		Author:   "Steve",
		Name:     "MK1",
		Color:    "#112233",
		Filename: "mk1.json",
		TrajectoryData: []trajectory.RangeSample{
			{Range: 100, Low: 12, Medium: 25, High: 18},
			{Range: 150, Low: 10, Medium: 20, High: 15},
		},
		OffsetData: trajectory.OffsetHistogram{
			"300": {Horizontal: map[string]int{"-50": 10}, Vertical: map[string]int{"20": 4}},
		},
	})
	require.NoError(t, err)
	_, err = source.cannonSvc.Add(ctx, cannon.CreateRequest{Author: "Alex", Name: "V2"})
	require.NoError(t, err)

	exported, err := source.cannonSvc.Export(ctx)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, cannon.WriteExport(&buf, exported))

	target := newTestEnv(t)
	_, err = target.cannonSvc.Add(ctx, cannon.CreateRequest{Author: "Old", Name: "Gone"})
	require.NoError(t, err)

	parsed, err := cannon.ParseImport(&buf)
	require.NoError(t, err)
	result, err := target.cannonSvc.Import(ctx, parsed)
	require.NoError(t, err)
	require.Equal(t, cannon.ImportResult{Imported: 2, Skipped: 0}, result)

	authors, err := target.cannonSvc.Authors(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Alex", "Steve"}, authors)

	steve, err := target.cannonSvc.ByAuthor(ctx, "Steve")
	require.NoError(t, err)
	require.Len(t, steve, 1)
	require.Equal(t, exported[0].TrajectoryData, steve[0].TrajectoryData)
	require.Equal(t, exported[0].OffsetData, steve[0].OffsetData)
	require.Equal(t, "mk1.json", steve[0].Filename)

	view, err := target.chartSvc.Render(ctx, chart.Request{Mode: chart.ModeOffsets})
	require.NoError(t, err)
	require.Len(t, view.Series, 1)
	require.Equal(t, []trajectory.PlotPoint{{X: 300, Y: 14}}, view.Series[0].Points)
}

func TestIntegration_CatalogSync(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	entries := map[string]map[string]any{
		"a.json": {"火炮作者": "Steve", "火炮名称": "A", "颜色": "#ff0000",
			"火炮数据json": map[string]any{"300": map[string]any{"水平偏移": map[string]int{"0": 5}}}},
		"b.json": {"火炮作者": "Alex", "火炮名称": "B", "颜色": "not-a-color"},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/cannons/list", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"files": []string{"a.json", "b.json", "missing.json"}})
	})
	mux.HandleFunc("/cannons/data/", func(w http.ResponseWriter, r *http.Request) {
		entry, ok := entries[filepath.Base(r.URL.Path)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(entry)
	})
	catalog := httptest.NewServer(mux)
	defer catalog.Close()

	syncer := remote.NewSyncer(remote.NewClient(remote.Options{BaseURL: catalog.URL}), env.cannonSvc, env.activitySvc, nil)

	result, err := syncer.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, remote.SyncResult{Remote: 3, Present: 0, Added: 2, Failed: 1}, result)

	result, err = syncer.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, result.Present)
	require.Equal(t, 0, result.Added)

	names, err := env.cannonSvc.Filenames(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"a.json": true, "b.json": true}, names)

	alex, err := env.cannonSvc.ByAuthor(ctx, "Alex")
	require.NoError(t, err)
	require.Len(t, alex, 1)
	require.Empty(t, alex[0].Color)

	synced := activity.TypeCannonsSynced
	entriesLogged, err := env.activitySvc.GetRecentActivity(ctx, activity.ListActivityOptions{
		ActivityType: &synced,
	})
	require.NoError(t, err)
	require.Len(t, entriesLogged, 1)
}

func TestIntegration_DeleteCascadesSamples(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	rec, err := env.cannonSvc.Add(ctx, cannon.CreateRequest{
		Author:         "Steve",
		Name:           "MK1",
		TrajectoryData: []trajectory.RangeSample{{Range: 100, Low: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, env.cannonSvc.Delete(ctx, rec.ID))

	var samples int
	require.NoError(t, env.db.QueryRow(`SELECT COUNT(*) FROM range_samples`).Scan(&samples))
	require.Zero(t, samples)

	require.ErrorIs(t, env.cannonSvc.Delete(ctx, rec.ID), cannon.ErrCannonNotFound)
}
