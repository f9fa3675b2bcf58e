package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/EduNet2023/NovoApkPesca/types"
)

const catchColumns = `
	c.id, c.session_id, c.species, c.weight_kg, c.length_cm, c.bait_used,
	c.released, c.photo_url, c.photo_key, c.photo_content_type,
	c.created_at, c.updated_at`

// CatchFilter narrows a catch listing. Zero values leave the corresponding
// dimension unfiltered.
type CatchFilter struct {
	SessionID string
	Species   string
	Released  *bool
}

// CatchRepository handles persistence for caught fish.
type CatchRepository struct {
	db *sql.DB
}

func NewCatchRepository(db *sql.DB) *CatchRepository {
	return &CatchRepository{db: db}
}

func scanCatch(row interface{ Scan(dest ...any) error }) (types.Catch, error) {
	var c types.Catch
	err := row.Scan(
		&c.ID,
		&c.SessionID,
		&c.Species,
		&c.WeightKg,
		&c.LengthCm,
		&c.BaitUsed,
		&c.Released,
		&c.PhotoURL,
		&c.PhotoKey,
		&c.PhotoContentType,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

// List returns the user's catches across all sessions, newest first.
func (r *CatchRepository) List(ctx context.Context, userID string, filter CatchFilter, offset, limit int) ([]types.Catch, int, error) {
	where := "WHERE s.user_id = $1"
	args := []any{userID}
	if filter.SessionID != "" {
		args = append(args, filter.SessionID)
		where += fmt.Sprintf(" AND c.session_id = $%d", len(args))
	}
	if filter.Species != "" {
		args = append(args, "%"+filter.Species+"%")
		where += fmt.Sprintf(" AND c.species ILIKE $%d", len(args))
	}
	if filter.Released != nil {
		args = append(args, *filter.Released)
		where += fmt.Sprintf(" AND c.released = $%d", len(args))
	}

	countQuery := "SELECT COUNT(1) FROM catches c JOIN fishing_sessions s ON s.id = c.session_id " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM catches c
		JOIN fishing_sessions s ON s.id = c.session_id
		%s
		ORDER BY c.created_at DESC
		OFFSET $%d LIMIT $%d`, catchColumns, where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	catches := make([]types.Catch, 0, limit)
	for rows.Next() {
		c, err := scanCatch(rows)
		if err != nil {
			return nil, 0, err
		}
		catches = append(catches, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return catches, total, nil
}

// ListBySession returns every catch of one session, newest first.
// Ownership of the session is the caller's concern.
func (r *CatchRepository) ListBySession(ctx context.Context, sessionID string) ([]types.Catch, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM catches c
		WHERE c.session_id = $1
		ORDER BY c.created_at DESC`, catchColumns)

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	catches := make([]types.Catch, 0)
	for rows.Next() {
		c, err := scanCatch(rows)
		if err != nil {
			return nil, err
		}
		catches = append(catches, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return catches, nil
}

func (r *CatchRepository) Get(ctx context.Context, userID, id string) (types.Catch, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM catches c
		JOIN fishing_sessions s ON s.id = c.session_id
		WHERE c.id = $1 AND s.user_id = $2`, catchColumns)

	c, err := scanCatch(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Catch{}, ErrNotFound
		}
		return types.Catch{}, err
	}
	return c, nil
}

func (r *CatchRepository) Create(ctx context.Context, c types.Catch) (types.Catch, error) {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	const query = `
		INSERT INTO catches (
			id, session_id, species, weight_kg, length_cm, bait_used,
			released, photo_url, photo_key, photo_content_type,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		c.ID,
		c.SessionID,
		c.Species,
		c.WeightKg,
		c.LengthCm,
		c.BaitUsed,
		c.Released,
		c.PhotoURL,
		c.PhotoKey,
		c.PhotoContentType,
		c.CreatedAt,
		c.UpdatedAt,
	); err != nil {
		return types.Catch{}, err
	}
	return c, nil
}

// Update rewrites the catch attributes. The session subquery keeps the write
// inside the owner's rows even if the id leaked.
func (r *CatchRepository) Update(ctx context.Context, userID string, c types.Catch) (types.Catch, error) {
	c.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE catches
		SET session_id = $1,
			species = $2,
			weight_kg = $3,
			length_cm = $4,
			bait_used = $5,
			released = $6,
			photo_url = $7,
			updated_at = $8
		WHERE id = $9
		  AND session_id IN (SELECT id FROM fishing_sessions WHERE user_id = $10)`
	result, err := r.db.ExecContext(
		ctx,
		query,
		c.SessionID,
		c.Species,
		c.WeightKg,
		c.LengthCm,
		c.BaitUsed,
		c.Released,
		c.PhotoURL,
		c.UpdatedAt,
		c.ID,
		userID,
	)
	if err != nil {
		return types.Catch{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Catch{}, err
	}
	if affected == 0 {
		return types.Catch{}, ErrNotFound
	}
	return c, nil
}

func (r *CatchRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `
		DELETE FROM catches
		WHERE id = $1
		  AND session_id IN (SELECT id FROM fishing_sessions WHERE user_id = $2)`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPhoto records the stored object behind a catch photo and the URL the
// API serves it from.
func (r *CatchRepository) SetPhoto(ctx context.Context, userID, id, url, key, contentType string) error {
	const query = `
		UPDATE catches
		SET photo_url = $1,
			photo_key = $2,
			photo_content_type = $3,
			updated_at = $4
		WHERE id = $5
		  AND session_id IN (SELECT id FROM fishing_sessions WHERE user_id = $6)`
	result, err := r.db.ExecContext(ctx, query, url, key, contentType, time.Now().UTC(), id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
