package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/EduNet2023/NovoApkPesca/types"
)

// SessionTotals carries raw session aggregates for the overview.
type SessionTotals struct {
	Count        int
	TotalMinutes int
}

// CatchTotals carries raw catch aggregates for the overview.
type CatchTotals struct {
	Count         int
	Released      int
	TotalWeightKg float64
}

// LastSession identifies the most recent session by date, then start time.
type LastSession struct {
	Date         types.Date
	LocationName string
}

// LocationTotals carries raw per-location aggregates. Durations stay in
// minutes here; the service converts to hours.
type LocationTotals struct {
	ID            string
	Name          string
	SessionsCount int
	TotalMinutes  int
	CatchesCount  int
	AvgWeightKg   *float64
}

// MonthBucket is one month of session activity.
type MonthBucket struct {
	Month        time.Time
	Sessions     int
	TotalMinutes int
}

// CatchMonthBucket is one month of catch activity.
type CatchMonthBucket struct {
	Month         time.Time
	Catches       int
	TotalWeightKg float64
}

// StatsRepository runs the aggregate queries behind the statistics endpoints.
type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) SessionTotals(ctx context.Context, userID string) (SessionTotals, error) {
	const query = `
		SELECT COUNT(1), COALESCE(SUM(duration_minutes), 0)
		FROM fishing_sessions
		WHERE user_id = $1`
	var totals SessionTotals
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&totals.Count, &totals.TotalMinutes)
	return totals, err
}

func (r *StatsRepository) CatchTotals(ctx context.Context, userID string) (CatchTotals, error) {
	const query = `
		SELECT COUNT(1),
			COUNT(1) FILTER (WHERE c.released),
			COALESCE(SUM(c.weight_kg), 0)
		FROM catches c
		JOIN fishing_sessions s ON s.id = c.session_id
		WHERE s.user_id = $1`
	var totals CatchTotals
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&totals.Count, &totals.Released, &totals.TotalWeightKg)
	return totals, err
}

func (r *StatsRepository) CountLocations(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM locations WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// LastSession returns ErrNotFound when the user has no sessions yet.
func (r *StatsRepository) LastSession(ctx context.Context, userID string) (LastSession, error) {
	const query = `
		SELECT s.date, l.name
		FROM fishing_sessions s
		JOIN locations l ON l.id = s.location_id
		WHERE s.user_id = $1
		ORDER BY s.date DESC, s.start_time DESC
		LIMIT 1`
	var last LastSession
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&last.Date, &last.LocationName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LastSession{}, ErrNotFound
		}
		return LastSession{}, err
	}
	return last, nil
}

// SpeciesBreakdown groups the user's catches by species, most caught first.
// Weight aggregates come back NULL when no catch of a species has a weight.
func (r *StatsRepository) SpeciesBreakdown(ctx context.Context, userID string, limit int) ([]types.SpeciesStat, error) {
	const query = `
		SELECT c.species,
			COUNT(1),
			AVG(c.weight_kg),
			SUM(c.weight_kg),
			COUNT(1) FILTER (WHERE c.released),
			COUNT(1) FILTER (WHERE NOT c.released)
		FROM catches c
		JOIN fishing_sessions s ON s.id = c.session_id
		WHERE s.user_id = $1
		GROUP BY c.species
		ORDER BY COUNT(1) DESC, c.species
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]types.SpeciesStat, 0, limit)
	for rows.Next() {
		var stat types.SpeciesStat
		if err := rows.Scan(
			&stat.Species,
			&stat.Count,
			&stat.AvgWeightKg,
			&stat.TotalWeightKg,
			&stat.ReleasedCount,
			&stat.KeptCount,
		); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// LocationBreakdown aggregates sessions and catches per owned location.
// Session and catch totals are built in separate subqueries so a location
// with three sessions and nine catches counts exactly three and nine, not
// the joined product of the two.
func (r *StatsRepository) LocationBreakdown(ctx context.Context, userID string) ([]LocationTotals, error) {
	const query = `
		SELECT l.id, l.name,
			COALESCE(sc.sessions_count, 0),
			COALESCE(sc.total_minutes, 0),
			COALESCE(cc.catches_count, 0),
			cc.avg_weight
		FROM locations l
		LEFT JOIN (
			SELECT location_id, COUNT(1) AS sessions_count, COALESCE(SUM(duration_minutes), 0) AS total_minutes
			FROM fishing_sessions
			WHERE user_id = $1
			GROUP BY location_id
		) sc ON sc.location_id = l.id
		LEFT JOIN (
			SELECT s.location_id, COUNT(1) AS catches_count, AVG(c.weight_kg) AS avg_weight
			FROM catches c
			JOIN fishing_sessions s ON s.id = c.session_id
			WHERE s.user_id = $1
			GROUP BY s.location_id
		) cc ON cc.location_id = l.id
		WHERE l.user_id = $1
		ORDER BY COALESCE(sc.sessions_count, 0) DESC, l.name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]LocationTotals, 0)
	for rows.Next() {
		var stat LocationTotals
		if err := rows.Scan(
			&stat.ID,
			&stat.Name,
			&stat.SessionsCount,
			&stat.TotalMinutes,
			&stat.CatchesCount,
			&stat.AvgWeightKg,
		); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// BaitBreakdown groups catches by bait, skipping catches with no bait
// recorded. Success rates are the service's concern.
func (r *StatsRepository) BaitBreakdown(ctx context.Context, userID string, limit int) ([]types.BaitStat, error) {
	const query = `
		SELECT c.bait_used,
			COUNT(1),
			AVG(c.weight_kg),
			COUNT(1) FILTER (WHERE c.released),
			COUNT(1) FILTER (WHERE NOT c.released)
		FROM catches c
		JOIN fishing_sessions s ON s.id = c.session_id
		WHERE s.user_id = $1 AND c.bait_used IS NOT NULL AND c.bait_used <> ''
		GROUP BY c.bait_used
		ORDER BY COUNT(1) DESC, c.bait_used
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]types.BaitStat, 0, limit)
	for rows.Next() {
		var stat types.BaitStat
		if err := rows.Scan(
			&stat.Bait,
			&stat.Count,
			&stat.AvgWeightKg,
			&stat.ReleasedCount,
			&stat.KeptCount,
		); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// MonthlySessionBuckets groups sessions on or after since by calendar month.
func (r *StatsRepository) MonthlySessionBuckets(ctx context.Context, userID string, since time.Time) ([]MonthBucket, error) {
	const query = `
		SELECT date_trunc('month', s.date) AS month, COUNT(1), COALESCE(SUM(s.duration_minutes), 0)
		FROM fishing_sessions s
		WHERE s.user_id = $1 AND s.date >= $2
		GROUP BY month
		ORDER BY month`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]MonthBucket, 0)
	for rows.Next() {
		var bucket MonthBucket
		if err := rows.Scan(&bucket.Month, &bucket.Sessions, &bucket.TotalMinutes); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

// MonthlyCatchBuckets groups catches by the month of their session's date.
func (r *StatsRepository) MonthlyCatchBuckets(ctx context.Context, userID string, since time.Time) ([]CatchMonthBucket, error) {
	const query = `
		SELECT date_trunc('month', s.date) AS month, COUNT(1), COALESCE(SUM(c.weight_kg), 0)
		FROM catches c
		JOIN fishing_sessions s ON s.id = c.session_id
		WHERE s.user_id = $1 AND s.date >= $2
		GROUP BY month
		ORDER BY month`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]CatchMonthBucket, 0)
	for rows.Next() {
		var bucket CatchMonthBucket
		if err := rows.Scan(&bucket.Month, &bucket.Catches, &bucket.TotalWeightKg); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}
