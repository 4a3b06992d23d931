// Package memstore keeps cannons and activity in process memory. It backs
// the server when no database is configured or the database cannot be
// opened, and mirrors the SQLite repositories' semantics.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/cannonplot/internal/domain/activity"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/repository"
	"github.com/rpggio/cannonplot/internal/trajectory"
)

// Store holds every record behind one lock. Use Cannons and Activities to
// get the repository views.
type Store struct {
	mu         sync.RWMutex
	cannons    []cannon.Record
	activities []activity.ActivityEntry
	nextID     int64
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Cannons returns the cannon.Repository view of the store.
func (s *Store) Cannons() *CannonRepository {
	return &CannonRepository{store: s}
}

// Activities returns the activity.Repository view of the store.
func (s *Store) Activities() *ActivityRepository {
	return &ActivityRepository{store: s}
}

// CannonRepository implements cannon.Repository in memory.
type CannonRepository struct {
	store *Store
}

func (r *CannonRepository) Create(ctx context.Context, rec *cannon.Record) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Filename != "" && s.hasFilename(rec.Filename) {
		return repository.ErrConflict
	}
	rec.ID = uuid.NewString()
	s.cannons = append(s.cannons, cloneRecord(*rec))
	return nil
}

func (r *CannonRepository) Get(ctx context.Context, id string) (*cannon.Record, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.cannons {
		if rec.ID == id {
			out := cloneRecord(rec)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *CannonRepository) List(ctx context.Context, opts cannon.ListOptions) ([]cannon.Record, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []cannon.Record{}
	skipped := 0
	for _, rec := range s.cannons {
		if opts.Author != "" && rec.Author != opts.Author {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
		out = append(out, cloneRecord(rec))
	}
	return out, nil
}

func (r *CannonRepository) Count(ctx context.Context) (int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cannons), nil
}

func (r *CannonRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.cannons {
		if rec.ID == id {
			s.cannons = append(s.cannons[:i], s.cannons[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *CannonRepository) DeleteAll(ctx context.Context) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cannons = nil
	return nil
}

// ReplaceAll swaps in recs, assigning fresh IDs. A duplicate filename leaves
// the store untouched.
func (r *CannonRepository) ReplaceAll(ctx context.Context, recs []cannon.Record) error {
	seen := make(map[string]bool, len(recs))
	for _, rec := range recs {
		if rec.Filename == "" {
			continue
		}
		if seen[rec.Filename] {
			return repository.ErrConflict
		}
		seen[rec.Filename] = true
	}

	next := make([]cannon.Record, 0, len(recs))
	for i := range recs {
		recs[i].ID = uuid.NewString()
		next = append(next, cloneRecord(recs[i]))
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cannons = next
	return nil
}

func (s *Store) hasFilename(name string) bool {
	for _, rec := range s.cannons {
		if rec.Filename == name {
			return true
		}
	}
	return false
}

// ActivityRepository implements activity.Repository in memory.
type ActivityRepository struct {
	store *Store
}

func (r *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	s.nextID++
	entry.ID = s.nextID

	stored := *entry
	if entry.CannonID != nil {
		id := *entry.CannonID
		stored.CannonID = &id
	}
	s.activities = append(s.activities, stored)
	return nil
}

// List returns matching entries newest first.
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	s := r.store
	s.mu.RLock()
	matched := []activity.ActivityEntry{}
	for _, entry := range s.activities {
		if opts.CannonID != nil && (entry.CannonID == nil || *entry.CannonID != *opts.CannonID) {
			continue
		}
		if opts.ActivityType != nil && entry.ActivityType != *opts.ActivityType {
			continue
		}
		matched = append(matched, entry)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return []activity.ActivityEntry{}, nil
		}
		matched = matched[opts.Offset:]
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func cloneRecord(rec cannon.Record) cannon.Record {
	out := rec
	out.TrajectoryData = append(trajectory.Samples{}, rec.TrajectoryData...)
	if rec.OffsetData != nil {
		out.OffsetData = make(trajectory.OffsetHistogram, len(rec.OffsetData))
		for key, offsets := range rec.OffsetData {
			out.OffsetData[key] = trajectory.DistanceOffsets{
				Horizontal: cloneCounts(offsets.Horizontal),
				Vertical:   cloneCounts(offsets.Vertical),
			}
		}
	}
	return out
}

func cloneCounts(counts map[string]int) map[string]int {
	if counts == nil {
		return nil
	}
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out
}
