package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/EduNet2023/NovoApkPesca/internal/dbx"
	"github.com/EduNet2023/NovoApkPesca/types"
)

// sessionColumns is the joined row shape shared by List and Get: the raw
// session columns plus the location name and a catch count subquery.
const sessionColumns = `
	s.id, s.user_id, s.location_id, l.name,
	s.date, s.start_time, s.end_time, s.duration_minutes,
	s.weather_conditions, s.temperature_celsius, s.notes,
	(SELECT COUNT(1) FROM catches c WHERE c.session_id = s.id),
	s.created_at, s.updated_at`

// SessionRepository handles persistence for fishing sessions.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns the user's sessions, newest first. A non-empty locationID
// narrows the listing to that location.
func (r *SessionRepository) List(ctx context.Context, userID, locationID string, offset, limit int) ([]types.FishingSession, int, error) {
	where := "WHERE s.user_id = $1"
	args := []any{userID}
	if locationID != "" {
		args = append(args, locationID)
		where += fmt.Sprintf(" AND s.location_id = $%d", len(args))
	}

	countQuery := "SELECT COUNT(1) FROM fishing_sessions s " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM fishing_sessions s
		JOIN locations l ON l.id = s.location_id
		%s
		ORDER BY s.date DESC, s.start_time DESC
		OFFSET $%d LIMIT $%d`, sessionColumns, where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sessions := make([]types.FishingSession, 0, limit)
	for rows.Next() {
		var session types.FishingSession
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.LocationID,
			&session.LocationName,
			&session.Date,
			&session.StartTime,
			&session.EndTime,
			&session.DurationMinutes,
			&session.WeatherConditions,
			&session.TemperatureCelsius,
			&session.Notes,
			&session.CatchesCount,
			&session.CreatedAt,
			&session.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *SessionRepository) Get(ctx context.Context, userID, id string) (types.FishingSession, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM fishing_sessions s
		JOIN locations l ON l.id = s.location_id
		WHERE s.id = $1 AND s.user_id = $2`, sessionColumns)

	var session types.FishingSession
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&session.ID,
		&session.UserID,
		&session.LocationID,
		&session.LocationName,
		&session.Date,
		&session.StartTime,
		&session.EndTime,
		&session.DurationMinutes,
		&session.WeatherConditions,
		&session.TemperatureCelsius,
		&session.Notes,
		&session.CatchesCount,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.FishingSession{}, ErrNotFound
		}
		return types.FishingSession{}, err
	}
	return session, nil
}

func (r *SessionRepository) Create(ctx context.Context, session types.FishingSession) (types.FishingSession, error) {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	const query = `
		INSERT INTO fishing_sessions (
			id, user_id, location_id, date, start_time, end_time,
			duration_minutes, weather_conditions, temperature_celsius, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.LocationID,
		session.Date,
		session.StartTime,
		session.EndTime,
		session.DurationMinutes,
		session.WeatherConditions,
		session.TemperatureCelsius,
		session.Notes,
		session.CreatedAt,
		session.UpdatedAt,
	); err != nil {
		return types.FishingSession{}, err
	}
	return session, nil
}

func (r *SessionRepository) Update(ctx context.Context, session types.FishingSession) (types.FishingSession, error) {
	session.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE fishing_sessions
		SET location_id = $1,
			date = $2,
			start_time = $3,
			end_time = $4,
			duration_minutes = $5,
			weather_conditions = $6,
			temperature_celsius = $7,
			notes = $8,
			updated_at = $9
		WHERE id = $10 AND user_id = $11`
	result, err := r.db.ExecContext(
		ctx,
		query,
		session.LocationID,
		session.Date,
		session.StartTime,
		session.EndTime,
		session.DurationMinutes,
		session.WeatherConditions,
		session.TemperatureCelsius,
		session.Notes,
		session.UpdatedAt,
		session.ID,
		session.UserID,
	)
	if err != nil {
		return types.FishingSession{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.FishingSession{}, err
	}
	if affected == 0 {
		return types.FishingSession{}, ErrNotFound
	}
	return session, nil
}

// Delete removes a session together with its catches.
func (r *SessionRepository) Delete(ctx context.Context, userID, id string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM fishing_sessions WHERE id = $1 AND user_id = $2`, id, userID).Scan(&one)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM catches WHERE session_id = $1`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM fishing_sessions WHERE id = $1`, id)
		return err
	})
}
