package remote_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/cannonplot/internal/domain/activity"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/memstore"
	"github.com/rpggio/cannonplot/internal/remote"
	"github.com/rpggio/cannonplot/internal/trajectory"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	files     []string
	entries   map[string]remote.CatalogCannon
	listErr   error
	requested []string
}

func (f *fakeCatalog) List(ctx context.Context) ([]string, error) {
	return f.files, f.listErr
}

func (f *fakeCatalog) BatchGet(ctx context.Context, filenames []string) []remote.Fetched {
	f.requested = append(f.requested, filenames...)
	out := []remote.Fetched{}
	for _, name := range filenames {
		if entry, ok := f.entries[name]; ok {
			out = append(out, remote.Fetched{Filename: name, Cannon: entry})
		}
	}
	return out
}

func newStore() (*cannon.Service, *activity.Service) {
	store := memstore.New()
	act := activity.NewService(store.Activities(), nil)
	return cannon.NewService(store.Cannons(), store.Activities(), nil), act
}

func TestSyncer_AddsOnlyMissing(t *testing.T) {
	ctx := context.Background()
	cannons, act := newStore()

	_, err := cannons.Add(ctx, cannon.CreateRequest{Author: "Steve", Name: "old", Filename: "old.json"})
	require.NoError(t, err)

	hist := trajectory.OffsetHistogram{"300": {Horizontal: map[string]int{"0": 4}}}
	catalog := &fakeCatalog{
		files: []string{"old.json", "new.json", "bad-color.json", "gone.json", "new.json"},
		entries: map[string]remote.CatalogCannon{
			"new.json":       {Author: "Alex", Name: "Fresh", Color: "#4ECDC4", Data: hist},
			"bad-color.json": {Author: "Notch", Name: "Odd", Color: "rgb(1,2,3)"},
		},
	}

	result, err := remote.NewSyncer(catalog, cannons, act, nil).Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, remote.SyncResult{Remote: 5, Present: 1, Added: 2, Failed: 1}, result)
	require.Equal(t, []string{"new.json", "bad-color.json", "gone.json"}, catalog.requested)

	recs, err := cannons.List(ctx, cannon.ListOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.Equal(t, "new.json", recs[1].Filename)
	require.Equal(t, "#4ECDC4", recs[1].Color)
	require.Equal(t, 4, recs[1].OffsetData["300"].Horizontal["0"])
	require.Empty(t, recs[2].Color)

	synced := activity.TypeCannonsSynced
	entries, err := act.GetRecentActivity(ctx, activity.ListActivityOptions{ActivityType: &synced})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// A second run finds nothing new.
	catalog.requested = nil
	result, err = remote.NewSyncer(catalog, cannons, act, nil).Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, result.Added)
	require.Equal(t, []string{"gone.json"}, catalog.requested)
}

func TestSyncer_InvalidEntryCountsAsFailed(t *testing.T) {
	ctx := context.Background()
	cannons, _ := newStore()
	catalog := &fakeCatalog{
		files:   []string{"anon.json"},
		entries: map[string]remote.CatalogCannon{"anon.json": {Name: "No author"}},
	}

	result, err := remote.NewSyncer(catalog, cannons, nil, nil).Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.Failed)
	require.Zero(t, result.Added)
}

func TestSyncer_ListFailure(t *testing.T) {
	cannons, _ := newStore()
	catalog := &fakeCatalog{listErr: errors.New("offline")}

	_, err := remote.NewSyncer(catalog, cannons, nil, nil).Sync(context.Background())
	require.Error(t, err)
}
