package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/EduNet2023/NovoApkPesca/internal/store"
	"github.com/EduNet2023/NovoApkPesca/types"
)

// StatsRepository defines the aggregate queries behind the statistics
// endpoints.
type StatsRepository interface {
	SessionTotals(ctx context.Context, userID string) (store.SessionTotals, error)
	CatchTotals(ctx context.Context, userID string) (store.CatchTotals, error)
	CountLocations(ctx context.Context, userID string) (int, error)
	LastSession(ctx context.Context, userID string) (store.LastSession, error)
	SpeciesBreakdown(ctx context.Context, userID string, limit int) ([]types.SpeciesStat, error)
	LocationBreakdown(ctx context.Context, userID string) ([]store.LocationTotals, error)
	BaitBreakdown(ctx context.Context, userID string, limit int) ([]types.BaitStat, error)
	MonthlySessionBuckets(ctx context.Context, userID string, since time.Time) ([]store.MonthBucket, error)
	MonthlyCatchBuckets(ctx context.Context, userID string, since time.Time) ([]store.CatchMonthBucket, error)
}

// StatsService reshapes raw aggregates into the API's statistics views.
type StatsService struct {
	repo     StatsRepository
	sessions SessionRepository
	catches  CatchRepository
}

func NewStatsService(repo StatsRepository, sessions SessionRepository, catches CatchRepository) *StatsService {
	return &StatsService{repo: repo, sessions: sessions, catches: catches}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round2p rounds through a nullable aggregate, leaving nil alone.
func round2p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded := round2(*v)
	return &rounded
}

func (s *StatsService) Overview(ctx context.Context, userID string) (types.Overview, error) {
	sessionTotals, err := s.repo.SessionTotals(ctx, userID)
	if err != nil {
		return types.Overview{}, err
	}
	catchTotals, err := s.repo.CatchTotals(ctx, userID)
	if err != nil {
		return types.Overview{}, err
	}
	locations, err := s.repo.CountLocations(ctx, userID)
	if err != nil {
		return types.Overview{}, err
	}

	overview := types.Overview{
		TotalSessions:  sessionTotals.Count,
		TotalCatches:   catchTotals.Count,
		TotalLocations: locations,
		ReleasedCount:  catchTotals.Released,
		KeptCount:      catchTotals.Count - catchTotals.Released,
		TotalWeightKg:  round2(catchTotals.TotalWeightKg),
		TotalHours:     round1(float64(sessionTotals.TotalMinutes) / 60),
	}

	last, err := s.repo.LastSession(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return overview, nil
		}
		return types.Overview{}, err
	}
	overview.LastSessionDate = &last.Date
	overview.LastSessionLocation = &last.LocationName
	return overview, nil
}

func (s *StatsService) Species(ctx context.Context, userID string, limit int) ([]types.SpeciesStat, error) {
	if limit <= 0 {
		limit = 10
	}
	stats, err := s.repo.SpeciesBreakdown(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].AvgWeightKg = round2p(stats[i].AvgWeightKg)
		stats[i].TotalWeightKg = round2p(stats[i].TotalWeightKg)
	}
	return stats, nil
}

func (s *StatsService) Locations(ctx context.Context, userID string) ([]types.LocationStat, error) {
	totals, err := s.repo.LocationBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := make([]types.LocationStat, 0, len(totals))
	for _, t := range totals {
		stats = append(stats, types.LocationStat{
			LocationID:    t.ID,
			LocationName:  t.Name,
			SessionsCount: t.SessionsCount,
			CatchesCount:  t.CatchesCount,
			TotalHours:    round1(float64(t.TotalMinutes) / 60),
			AvgWeightKg:   round2p(t.AvgWeightKg),
		})
	}
	return stats, nil
}

// Baits computes per-bait stats. The success rate divides each bait's count
// by the user's total catches, so rates across baits sum to at most 100%.
func (s *StatsService) Baits(ctx context.Context, userID string, limit int) ([]types.BaitStat, error) {
	if limit <= 0 {
		limit = 10
	}
	stats, err := s.repo.BaitBreakdown(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	catchTotals, err := s.repo.CatchTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].AvgWeightKg = round2p(stats[i].AvgWeightKg)
		if catchTotals.Count > 0 {
			stats[i].SuccessRate = round1(float64(stats[i].Count) / float64(catchTotals.Count) * 100)
		}
	}
	return stats, nil
}

// Monthly buckets the trailing 365 days of activity by calendar month.
// A month appears when it has at least one session or one catch; the side
// with no rows reports zeros.
func (s *StatsService) Monthly(ctx context.Context, userID string) ([]types.MonthlyStat, error) {
	since := time.Now().UTC().AddDate(0, 0, -365)

	sessionBuckets, err := s.repo.MonthlySessionBuckets(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	catchBuckets, err := s.repo.MonthlyCatchBuckets(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	months := make(map[string]*types.MonthlyStat)
	for _, b := range sessionBuckets {
		key := b.Month.Format("2006-01")
		months[key] = &types.MonthlyStat{
			Month:         key,
			SessionsCount: b.Sessions,
			TotalHours:    round1(float64(b.TotalMinutes) / 60),
		}
	}
	for _, b := range catchBuckets {
		key := b.Month.Format("2006-01")
		stat, ok := months[key]
		if !ok {
			stat = &types.MonthlyStat{Month: key}
			months[key] = stat
		}
		stat.CatchesCount = b.Catches
		stat.TotalWeightKg = round2(b.TotalWeightKg)
	}

	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	stats := make([]types.MonthlyStat, 0, len(keys))
	for _, key := range keys {
		stats = append(stats, *months[key])
	}
	return stats, nil
}

func (s *StatsService) Recent(ctx context.Context, userID string, limit int) (types.RecentActivity, error) {
	if limit <= 0 {
		limit = 5
	}
	sessions, _, err := s.sessions.List(ctx, userID, "", 0, limit)
	if err != nil {
		return types.RecentActivity{}, err
	}
	catches, _, err := s.catches.List(ctx, userID, store.CatchFilter{}, 0, limit)
	if err != nil {
		return types.RecentActivity{}, err
	}
	return types.RecentActivity{RecentSessions: sessions, RecentCatches: catches}, nil
}
