package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/EduNet2023/NovoApkPesca/internal/dbx"
	"github.com/EduNet2023/NovoApkPesca/types"
	"github.com/lib/pq"
)

// LocationRepository handles persistence for fishing locations.
type LocationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) List(ctx context.Context, userID string, offset, limit int) ([]types.Location, int, error) {
	const countQuery = `SELECT COUNT(1) FROM locations WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, user_id, name, latitude, longitude, description, created_at, updated_at
		FROM locations
		WHERE user_id = $1
		ORDER BY name
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	locations := make([]types.Location, 0, limit)
	for rows.Next() {
		var location types.Location
		if err := rows.Scan(
			&location.ID,
			&location.UserID,
			&location.Name,
			&location.Latitude,
			&location.Longitude,
			&location.Description,
			&location.CreatedAt,
			&location.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return locations, total, nil
}

func (r *LocationRepository) Get(ctx context.Context, userID, id string) (types.Location, error) {
	const query = `
		SELECT id, user_id, name, latitude, longitude, description, created_at, updated_at
		FROM locations
		WHERE id = $1 AND user_id = $2`
	var location types.Location
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&location.ID,
		&location.UserID,
		&location.Name,
		&location.Latitude,
		&location.Longitude,
		&location.Description,
		&location.CreatedAt,
		&location.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Location{}, ErrNotFound
		}
		return types.Location{}, err
	}
	return location, nil
}

// GetByName looks a location up by its per-user unique name.
func (r *LocationRepository) GetByName(ctx context.Context, userID, name string) (types.Location, error) {
	const query = `
		SELECT id, user_id, name, latitude, longitude, description, created_at, updated_at
		FROM locations
		WHERE user_id = $1 AND name = $2`
	var location types.Location
	err := r.db.QueryRowContext(ctx, query, userID, name).Scan(
		&location.ID,
		&location.UserID,
		&location.Name,
		&location.Latitude,
		&location.Longitude,
		&location.Description,
		&location.CreatedAt,
		&location.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Location{}, ErrNotFound
		}
		return types.Location{}, err
	}
	return location, nil
}

func (r *LocationRepository) Create(ctx context.Context, location types.Location) (types.Location, error) {
	now := time.Now().UTC()
	location.CreatedAt = now
	location.UpdatedAt = now

	const query = `
		INSERT INTO locations (id, user_id, name, latitude, longitude, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		location.ID,
		location.UserID,
		location.Name,
		location.Latitude,
		location.Longitude,
		location.Description,
		location.CreatedAt,
		location.UpdatedAt,
	); err != nil {
		return types.Location{}, mapLocationConstraint(err)
	}
	return location, nil
}

func (r *LocationRepository) Update(ctx context.Context, location types.Location) (types.Location, error) {
	location.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE locations
		SET name = $1,
			latitude = $2,
			longitude = $3,
			description = $4,
			updated_at = $5
		WHERE id = $6 AND user_id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		location.Name,
		location.Latitude,
		location.Longitude,
		location.Description,
		location.UpdatedAt,
		location.ID,
		location.UserID,
	)
	if err != nil {
		return types.Location{}, mapLocationConstraint(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Location{}, err
	}
	if affected == 0 {
		return types.Location{}, ErrNotFound
	}
	return location, nil
}

// Delete removes a location. The delete is refused with
// ErrLocationHasSessions while fishing sessions still reference it.
func (r *LocationRepository) Delete(ctx context.Context, userID, id string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM locations WHERE id = $1 AND user_id = $2`, id, userID).Scan(&one)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		var sessions int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM fishing_sessions WHERE location_id = $1`, id).Scan(&sessions); err != nil {
			return err
		}
		if sessions > 0 {
			return ErrLocationHasSessions
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
		return err
	})
}

// mapLocationConstraint translates a unique_violation on the per-user name
// index into the domain error. The service checks first; this covers races.
func mapLocationConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateLocationName
	}
	return err
}
