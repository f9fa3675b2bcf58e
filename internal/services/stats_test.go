package services

import (
	"context"
	"testing"
	"time"

	"github.com/EduNet2023/NovoApkPesca/internal/store"
	"github.com/EduNet2023/NovoApkPesca/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsRepo struct {
	sessionTotals  store.SessionTotals
	catchTotals    store.CatchTotals
	locationCount  int
	lastSession    store.LastSession
	lastSessionErr error
	species        []types.SpeciesStat
	locationTotals []store.LocationTotals
	baits          []types.BaitStat
	sessionBuckets []store.MonthBucket
	catchBuckets   []store.CatchMonthBucket
}

func (f *fakeStatsRepo) SessionTotals(ctx context.Context, userID string) (store.SessionTotals, error) {
	return f.sessionTotals, nil
}

func (f *fakeStatsRepo) CatchTotals(ctx context.Context, userID string) (store.CatchTotals, error) {
	return f.catchTotals, nil
}

func (f *fakeStatsRepo) CountLocations(ctx context.Context, userID string) (int, error) {
	return f.locationCount, nil
}

func (f *fakeStatsRepo) LastSession(ctx context.Context, userID string) (store.LastSession, error) {
	if f.lastSessionErr != nil {
		return store.LastSession{}, f.lastSessionErr
	}
	return f.lastSession, nil
}

func (f *fakeStatsRepo) SpeciesBreakdown(ctx context.Context, userID string, limit int) ([]types.SpeciesStat, error) {
	if limit < len(f.species) {
		return f.species[:limit], nil
	}
	return f.species, nil
}

func (f *fakeStatsRepo) LocationBreakdown(ctx context.Context, userID string) ([]store.LocationTotals, error) {
	return f.locationTotals, nil
}

func (f *fakeStatsRepo) BaitBreakdown(ctx context.Context, userID string, limit int) ([]types.BaitStat, error) {
	if limit < len(f.baits) {
		return f.baits[:limit], nil
	}
	return f.baits, nil
}

func (f *fakeStatsRepo) MonthlySessionBuckets(ctx context.Context, userID string, since time.Time) ([]store.MonthBucket, error) {
	return f.sessionBuckets, nil
}

func (f *fakeStatsRepo) MonthlyCatchBuckets(ctx context.Context, userID string, since time.Time) ([]store.CatchMonthBucket, error) {
	return f.catchBuckets, nil
}

func ptr[T any](v T) *T { return &v }

func TestStatsOverview(t *testing.T) {
	repo := &fakeStatsRepo{
		sessionTotals: store.SessionTotals{Count: 12, TotalMinutes: 500},
		catchTotals:   store.CatchTotals{Count: 30, Released: 18, TotalWeightKg: 42.346},
		locationCount: 4,
		lastSession: store.LastSession{
			Date:         types.NewDate(2025, time.June, 14),
			LocationName: "North Pier",
		},
	}
	svc := NewStatsService(repo, newFakeSessionRepo(), newFakeCatchRepo())

	overview, err := svc.Overview(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 12, overview.TotalSessions)
	assert.Equal(t, 30, overview.TotalCatches)
	assert.Equal(t, 4, overview.TotalLocations)
	assert.Equal(t, 18, overview.ReleasedCount)
	assert.Equal(t, 12, overview.KeptCount)
	assert.Equal(t, 42.35, overview.TotalWeightKg)
	assert.Equal(t, 8.3, overview.TotalHours)
	require.NotNil(t, overview.LastSessionDate)
	assert.Equal(t, "2025-06-14", overview.LastSessionDate.String())
	require.NotNil(t, overview.LastSessionLocation)
	assert.Equal(t, "North Pier", *overview.LastSessionLocation)
}

func TestStatsOverviewEmptyLog(t *testing.T) {
	repo := &fakeStatsRepo{lastSessionErr: store.ErrNotFound}
	svc := NewStatsService(repo, newFakeSessionRepo(), newFakeCatchRepo())

	overview, err := svc.Overview(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, overview.TotalSessions)
	assert.Zero(t, overview.TotalCatches)
	assert.Zero(t, overview.TotalWeightKg)
	assert.Nil(t, overview.LastSessionDate)
	assert.Nil(t, overview.LastSessionLocation)
}

func TestStatsSpeciesRounding(t *testing.T) {
	repo := &fakeStatsRepo{
		species: []types.SpeciesStat{
			{Species: "pike", Count: 3, AvgWeightKg: ptr(2.346), TotalWeightKg: ptr(7.999)},
			{Species: "perch", Count: 1},
		},
	}
	svc := NewStatsService(repo, newFakeSessionRepo(), newFakeCatchRepo())

	stats, err := svc.Species(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	require.NotNil(t, stats[0].AvgWeightKg)
	assert.Equal(t, 2.35, *stats[0].AvgWeightKg)
	require.NotNil(t, stats[0].TotalWeightKg)
	assert.Equal(t, 8.0, *stats[0].TotalWeightKg)
	// Unweighed species keep null aggregates.
	assert.Nil(t, stats[1].AvgWeightKg)
	assert.Nil(t, stats[1].TotalWeightKg)
}

func TestStatsLocations(t *testing.T) {
	repo := &fakeStatsRepo{
		locationTotals: []store.LocationTotals{
			{ID: "l1", Name: "North Pier", SessionsCount: 3, TotalMinutes: 250, CatchesCount: 9, AvgWeightKg: ptr(1.256)},
			{ID: "l2", Name: "South Bank"},
		},
	}
	svc := NewStatsService(repo, newFakeSessionRepo(), newFakeCatchRepo())

	stats, err := svc.Locations(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "North Pier", stats[0].LocationName)
	assert.Equal(t, 3, stats[0].SessionsCount)
	assert.Equal(t, 4.2, stats[0].TotalHours)
	require.NotNil(t, stats[0].AvgWeightKg)
	assert.Equal(t, 1.26, *stats[0].AvgWeightKg)
	// A never-fished location still shows up, zeroed.
	assert.Equal(t, "South Bank", stats[1].LocationName)
	assert.Zero(t, stats[1].SessionsCount)
	assert.Nil(t, stats[1].AvgWeightKg)
}

func TestStatsBaitsSuccessRate(t *testing.T) {
	repo := &fakeStatsRepo{
		catchTotals: store.CatchTotals{Count: 8},
		baits: []types.BaitStat{
			{Bait: "spinner", Count: 6, AvgWeightKg: ptr(1.234)},
			{Bait: "worm", Count: 2},
		},
	}
	svc := NewStatsService(repo, newFakeSessionRepo(), newFakeCatchRepo())

	stats, err := svc.Baits(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 75.0, stats[0].SuccessRate)
	assert.Equal(t, 25.0, stats[1].SuccessRate)
	require.NotNil(t, stats[0].AvgWeightKg)
	assert.Equal(t, 1.23, *stats[0].AvgWeightKg)
}

func TestStatsBaitsZeroCatches(t *testing.T) {
	svc := NewStatsService(&fakeStatsRepo{}, newFakeSessionRepo(), newFakeCatchRepo())

	stats, err := svc.Baits(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestStatsMonthlyMergesSessionsAndCatches(t *testing.T) {
	may := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	june := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeStatsRepo{
		sessionBuckets: []store.MonthBucket{
			{Month: june, Sessions: 1, TotalMinutes: 90},
			{Month: may, Sessions: 4, TotalMinutes: 300},
		},
		catchBuckets: []store.CatchMonthBucket{
			{Month: may, Catches: 9, TotalWeightKg: 12.5},
			{Month: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), Catches: 2, TotalWeightKg: 3.456},
		},
	}
	svc := NewStatsService(repo, newFakeSessionRepo(), newFakeCatchRepo())

	stats, err := svc.Monthly(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, stats, 3)

	// Sorted ascending by month; a month missing one side reports zeros there.
	assert.Equal(t, "2025-04", stats[0].Month)
	assert.Zero(t, stats[0].SessionsCount)
	assert.Equal(t, 2, stats[0].CatchesCount)
	assert.Equal(t, 3.46, stats[0].TotalWeightKg)

	assert.Equal(t, "2025-05", stats[1].Month)
	assert.Equal(t, 4, stats[1].SessionsCount)
	assert.Equal(t, 5.0, stats[1].TotalHours)
	assert.Equal(t, 9, stats[1].CatchesCount)
	assert.Equal(t, 12.5, stats[1].TotalWeightKg)

	assert.Equal(t, "2025-06", stats[2].Month)
	assert.Equal(t, 1, stats[2].SessionsCount)
	assert.Equal(t, 1.5, stats[2].TotalHours)
	assert.Zero(t, stats[2].CatchesCount)
}

func TestStatsRecentAppliesDefaultLimit(t *testing.T) {
	sessions := newFakeSessionRepo()
	catches := newFakeCatchRepo()
	svc := NewStatsService(&fakeStatsRepo{}, sessions, catches)

	activity, err := svc.Recent(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, activity.RecentSessions)
	assert.Empty(t, activity.RecentCatches)
	assert.Equal(t, 5, sessions.lastLimit)
	assert.Equal(t, 5, catches.lastLimit)
}
