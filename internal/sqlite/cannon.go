package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/internal/repository"
	"github.com/rpggio/cannonplot/internal/trajectory"
)

// CannonRepository implements cannon.Repository for SQLite
type CannonRepository struct {
	db *DB
}

// NewCannonRepository creates a new CannonRepository
func NewCannonRepository(db *DB) *CannonRepository {
	return &CannonRepository{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create stores a new cannon and assigns its ID
func (r *CannonRepository) Create(ctx context.Context, rec *cannon.Record) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return insertCannon(ctx, tx, rec)
	})
}

func insertCannon(ctx context.Context, tx execer, rec *cannon.Record) error {
	rec.ID = uuid.NewString()

	offsetData, err := encodeOffsets(rec.OffsetData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cannons (
			id, author, name, params, color, filename, offset_data, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		rec.ID,
		rec.Author,
		rec.Name,
		rec.Params,
		rec.Color,
		sql.NullString{String: rec.Filename, Valid: rec.Filename != ""},
		offsetData,
		rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create cannon: %w", err)
	}

	sampleQuery := `
		INSERT INTO range_samples (
			cannon_id, position, range_bucket, low, medium, high, total
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i, s := range rec.TrajectoryData {
		if _, err := tx.ExecContext(ctx, sampleQuery,
			rec.ID, i, s.Range, s.Low, s.Medium, s.High, s.Total,
		); err != nil {
			return fmt.Errorf("failed to add range sample: %w", err)
		}
	}

	return nil
}

// Get retrieves a cannon by ID
func (r *CannonRepository) Get(ctx context.Context, id string) (*cannon.Record, error) {
	query := `
		SELECT id, author, name, params, color, filename, offset_data, created_at
		FROM cannons
		WHERE id = ?
	`

	rec, err := scanCannon(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cannon: %w", err)
	}

	samples, err := r.loadSamples(ctx, []string{rec.ID})
	if err != nil {
		return nil, err
	}
	rec.TrajectoryData = samplesOrEmpty(samples[rec.ID])

	return rec, nil
}

// List returns cannons in insertion order
func (r *CannonRepository) List(ctx context.Context, opts cannon.ListOptions) ([]cannon.Record, error) {
	query := `
		SELECT id, author, name, params, color, filename, offset_data, created_at
		FROM cannons
	`
	args := []interface{}{}

	if opts.Author != "" {
		query += " WHERE author = ?"
		args = append(args, opts.Author)
	}

	query += " ORDER BY rowid"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	} else if opts.Offset > 0 {
		query += " LIMIT -1"
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cannons: %w", err)
	}
	defer rows.Close()

	recs := []cannon.Record{}
	ids := []string{}
	for rows.Next() {
		rec, err := scanCannon(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cannon: %w", err)
		}
		recs = append(recs, *rec)
		ids = append(ids, rec.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cannon rows: %w", err)
	}

	samples, err := r.loadSamples(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].TrajectoryData = samplesOrEmpty(samples[recs[i].ID])
	}

	return recs, nil
}

// Count returns the number of stored cannons
func (r *CannonRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cannons`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cannons: %w", err)
	}
	return count, nil
}

// Delete deletes a cannon and its samples
func (r *CannonRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM range_samples WHERE cannon_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete range samples: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM cannons WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete cannon: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

// DeleteAll deletes every cannon
func (r *CannonRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithTx(ctx, clearCannons(ctx))
}

// ReplaceAll swaps the whole store for recs in one transaction, assigning
// fresh IDs
func (r *CannonRepository) ReplaceAll(ctx context.Context, recs []cannon.Record) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := clearCannons(ctx)(tx); err != nil {
			return err
		}
		for i := range recs {
			if err := insertCannon(ctx, tx, &recs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func clearCannons(ctx context.Context) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM range_samples`); err != nil {
			return fmt.Errorf("failed to clear range samples: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cannons`); err != nil {
			return fmt.Errorf("failed to clear cannons: %w", err)
		}
		return nil
	}
}

func (r *CannonRepository) loadSamples(ctx context.Context, ids []string) (map[string]trajectory.Samples, error) {
	out := make(map[string]trajectory.Samples, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `
		SELECT cannon_id, range_bucket, low, medium, high, total
		FROM range_samples
		WHERE cannon_id IN (` + placeholders + `)
		ORDER BY cannon_id, position
	`
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load range samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cannonID string
		var s trajectory.RangeSample
		if err := rows.Scan(&cannonID, &s.Range, &s.Low, &s.Medium, &s.High, &s.Total); err != nil {
			return nil, fmt.Errorf("failed to scan range sample: %w", err)
		}
		out[cannonID] = append(out[cannonID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating range samples: %w", err)
	}

	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCannon(row rowScanner) (*cannon.Record, error) {
	var rec cannon.Record
	var filename, offsetData sql.NullString
	if err := row.Scan(
		&rec.ID,
		&rec.Author,
		&rec.Name,
		&rec.Params,
		&rec.Color,
		&filename,
		&offsetData,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}

	rec.Filename = filename.String
	if offsetData.Valid && offsetData.String != "" {
		if err := json.Unmarshal([]byte(offsetData.String), &rec.OffsetData); err != nil {
			return nil, fmt.Errorf("failed to decode offset data: %w", err)
		}
	}
	return &rec, nil
}

func encodeOffsets(hist trajectory.OffsetHistogram) (sql.NullString, error) {
	if len(hist) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(hist)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode offset data: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func samplesOrEmpty(samples trajectory.Samples) trajectory.Samples {
	if samples == nil {
		return trajectory.Samples{}
	}
	return samples
}
