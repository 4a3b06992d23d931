package cannon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rpggio/cannonplot/internal/domain/activity"
	"github.com/rpggio/cannonplot/internal/repository"
	"github.com/rpggio/cannonplot/internal/trajectory"
)

// Service handles cannon business logic.
type Service struct {
	cannons    Repository
	activities ActivityRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new cannon service. activities and logger may be nil.
func NewService(cannons Repository, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		cannons:    cannons,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateRequest describes a cannon creation request.
type CreateRequest struct {
	Author         string
	Name           string
	Params         string
	Color          string
	Filename       string
	TrajectoryData []trajectory.RangeSample
	OffsetData     trajectory.OffsetHistogram
	CreatedAt      string
}

// Add validates and stores a new cannon. Sample totals are recomputed from
// the band counts and samples are stored sorted by range.
func (s *Service) Add(ctx context.Context, req CreateRequest) (*Record, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}

	createdAt := req.CreatedAt
	if createdAt == "" {
		createdAt = s.now().UTC().Format(time.RFC3339)
	}

	rec := &Record{
		Author:         strings.TrimSpace(req.Author),
		Name:           strings.TrimSpace(req.Name),
		Params:         req.Params,
		Color:          req.Color,
		Filename:       req.Filename,
		TrajectoryData: trajectory.WithTotals(trajectory.SortByRange(req.TrajectoryData)),
		OffsetData:     req.OffsetData,
		CreatedAt:      createdAt,
	}

	if err := s.cannons.Create(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateFilename
		}
		return nil, fmt.Errorf("creating cannon: %w", err)
	}

	s.logActivity(ctx, &rec.ID, activity.TypeCannonAdded,
		fmt.Sprintf("added cannon %q by %s", rec.Name, rec.Author), nil)
	return rec, nil
}

// Get returns a single cannon.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := s.cannons.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCannonNotFound
		}
		return nil, fmt.Errorf("getting cannon: %w", err)
	}
	return rec, nil
}

// List returns cannons matching opts in insertion order.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	recs, err := s.cannons.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing cannons: %w", err)
	}
	return recs, nil
}

// Delete removes one cannon.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.cannons.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCannonNotFound
		}
		return fmt.Errorf("deleting cannon: %w", err)
	}
	s.logActivity(ctx, &id, activity.TypeCannonDeleted, fmt.Sprintf("deleted cannon %s", id), nil)
	return nil
}

// DeleteAll removes every cannon.
func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.cannons.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clearing cannons: %w", err)
	}
	s.logActivity(ctx, nil, activity.TypeCannonsCleared, "deleted all cannons", nil)
	return nil
}

// Import replaces the whole store with recs. Incoming IDs are discarded and
// reassigned by the store. Records without an author or name are skipped,
// as are individual samples with a negative range. Missing totals are
// backfilled from the band counts.
func (s *Service) Import(ctx context.Context, recs []Record) (ImportResult, error) {
	kept := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if strings.TrimSpace(rec.Author) == "" || strings.TrimSpace(rec.Name) == "" {
			s.logger.Warn("skipping imported cannon", "name", rec.Name, "author", rec.Author)
			continue
		}
		rec.ID = ""
		rec.Author = strings.TrimSpace(rec.Author)
		rec.Name = strings.TrimSpace(rec.Name)
		rec.TrajectoryData = backfillSamples(rec.TrajectoryData)
		kept = append(kept, rec)
	}

	if err := s.cannons.ReplaceAll(ctx, kept); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ImportResult{}, ErrDuplicateFilename
		}
		return ImportResult{}, fmt.Errorf("importing cannons: %w", err)
	}

	result := ImportResult{Imported: len(kept), Skipped: len(recs) - len(kept)}
	s.logActivity(ctx, nil, activity.TypeCannonsImported,
		fmt.Sprintf("imported %d cannons", result.Imported), result)
	return result, nil
}

// Export returns every stored cannon.
func (s *Service) Export(ctx context.Context) ([]Record, error) {
	return s.List(ctx, ListOptions{})
}

// Authors returns the distinct non-blank authors, sorted.
func (s *Service) Authors(ctx context.Context) ([]string, error) {
	recs, err := s.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}
	groups := GroupByAuthor(recs)
	authors := make([]string, 0, len(groups))
	for _, g := range groups {
		authors = append(authors, g.Author)
	}
	return authors, nil
}

// ByAuthor returns every cannon published under author.
func (s *Service) ByAuthor(ctx context.Context, author string) ([]Record, error) {
	return s.List(ctx, ListOptions{Author: author})
}

// Groups returns every cannon grouped by author.
func (s *Service) Groups(ctx context.Context) ([]AuthorGroup, error) {
	recs, err := s.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}
	return GroupByAuthor(recs), nil
}

// Stats summarizes the store.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	recs, err := s.List(ctx, ListOptions{})
	if err != nil {
		return Stats{}, err
	}
	groups := GroupByAuthor(recs)
	authors := make([]string, 0, len(groups))
	for _, g := range groups {
		authors = append(authors, g.Author)
	}
	return Stats{
		TotalCannons: len(recs),
		AuthorCount:  len(authors),
		Authors:      authors,
	}, nil
}

// Filenames returns the set of catalog filenames already stored.
func (s *Service) Filenames(ctx context.Context) (map[string]bool, error) {
	recs, err := s.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(recs))
	for _, rec := range recs {
		if rec.Filename != "" {
			names[rec.Filename] = true
		}
	}
	return names, nil
}

// SeedIfEmpty stores the sample cannons when the store has none. It reports
// whether anything was added.
func (s *Service) SeedIfEmpty(ctx context.Context) (bool, error) {
	count, err := s.cannons.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("counting cannons: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	createdAt := s.now().UTC().Format(time.RFC3339)
	for _, req := range SampleCannons() {
		req.CreatedAt = createdAt
		rec := &Record{
			Author:         req.Author,
			Name:           req.Name,
			TrajectoryData: trajectory.WithTotals(req.TrajectoryData),
			CreatedAt:      req.CreatedAt,
		}
		if err := s.cannons.Create(ctx, rec); err != nil {
			return false, fmt.Errorf("seeding cannon %q: %w", req.Name, err)
		}
	}

	s.logActivity(ctx, nil, activity.TypeCannonsSeeded, "added sample cannons", nil)
	s.logger.Info("seeded sample cannons", "count", len(SampleCannons()))
	return true, nil
}

// GroupByAuthor groups records by trimmed author, skipping blank authors.
// Groups are sorted by author; records keep their input order.
func GroupByAuthor(recs []Record) []AuthorGroup {
	index := make(map[string]int)
	var groups []AuthorGroup
	for _, rec := range recs {
		author := strings.TrimSpace(rec.Author)
		if author == "" {
			continue
		}
		i, ok := index[author]
		if !ok {
			i = len(groups)
			index[author] = i
			groups = append(groups, AuthorGroup{Author: author})
		}
		groups[i].Cannons = append(groups[i].Cannons, rec)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Author < groups[j].Author })
	return groups
}

func backfillSamples(samples trajectory.Samples) trajectory.Samples {
	out := make(trajectory.Samples, 0, len(samples))
	for _, sample := range samples {
		if sample.Range < 0 {
			continue
		}
		if sample.Total == 0 {
			sample.Total = sample.Sum()
		}
		out = append(out, sample)
	}
	return out
}

func (s *Service) logActivity(ctx context.Context, cannonID *string, kind activity.ActivityType, summary string, details any) {
	if s.activities == nil {
		return
	}
	entry := &activity.ActivityEntry{
		CannonID:     cannonID,
		ActivityType: kind,
		Summary:      summary,
		CreatedAt:    s.now(),
	}
	if details != nil {
		if data, err := json.Marshal(details); err == nil {
			entry.Details = string(data)
		}
	}
	if err := s.activities.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "type", kind, "error", err)
	}
}
