package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/cannonplot/internal/domain/activity"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
)

// Catalog is the read side of the remote service.
type Catalog interface {
	List(ctx context.Context) ([]string, error)
	BatchGet(ctx context.Context, filenames []string) []Fetched
}

// Store is the slice of the cannon service the syncer writes through.
type Store interface {
	Filenames(ctx context.Context) (map[string]bool, error)
	Add(ctx context.Context, req cannon.CreateRequest) (*cannon.Record, error)
}

// ActivityLogger records completed syncs.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	Remote  int `json:"remote"`
	Present int `json:"present"`
	Added   int `json:"added"`
	Failed  int `json:"failed"`
}

// Syncer copies catalog entries that are not stored yet.
type Syncer struct {
	catalog    Catalog
	store      Store
	activities ActivityLogger
	logger     *slog.Logger
}

// NewSyncer creates a syncer. activities and logger may be nil.
func NewSyncer(catalog Catalog, store Store, activities ActivityLogger, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Syncer{catalog: catalog, store: store, activities: activities, logger: logger}
}

// Sync lists the catalog, skips filenames already stored and adds the rest.
// Entries that fail to download or validate count as failed and do not stop
// the run.
func (s *Syncer) Sync(ctx context.Context) (SyncResult, error) {
	files, err := s.catalog.List(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("listing catalog: %w", err)
	}
	local, err := s.store.Filenames(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("reading local filenames: %w", err)
	}

	result := SyncResult{Remote: len(files)}
	missing := make([]string, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, name := range files {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if local[name] {
			result.Present++
			continue
		}
		missing = append(missing, name)
	}

	if len(missing) == 0 {
		s.logger.Info("catalog already in sync", "remote", result.Remote)
		return result, nil
	}

	fetched := s.catalog.BatchGet(ctx, missing)
	result.Failed = len(missing) - len(fetched)

	for _, f := range fetched {
		if _, err := s.store.Add(ctx, toCreateRequest(f)); err != nil {
			if !errors.Is(err, cannon.ErrDuplicateFilename) {
				s.logger.Warn("skipping catalog entry", "filename", f.Filename, "error", err)
				result.Failed++
			} else {
				result.Present++
			}
			continue
		}
		result.Added++
	}

	s.logger.Info("catalog sync complete",
		"remote", result.Remote, "added", result.Added, "failed", result.Failed)
	if s.activities != nil && result.Added > 0 {
		entry := &activity.ActivityEntry{
			ActivityType: activity.TypeCannonsSynced,
			Summary:      fmt.Sprintf("synced %d cannons from catalog", result.Added),
		}
		if err := s.activities.LogActivity(ctx, entry); err != nil {
			s.logger.Warn("failed to log activity", "type", entry.ActivityType, "error", err)
		}
	}
	return result, nil
}

func toCreateRequest(f Fetched) cannon.CreateRequest {
	entry := f.Cannon
	color := entry.Color
	if !cannon.ValidColor(color) {
		color = ""
	}
	return cannon.CreateRequest{
		Author:     entry.Author,
		Name:       entry.Name,
		Params:     entry.Params,
		Color:      color,
		Filename:   f.Filename,
		OffsetData: entry.Data,
	}
}
