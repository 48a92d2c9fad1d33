package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
	"fantoken-intel/internal/storage/postgres"
)

func seedToken(t *testing.T, pool *postgres.Pool, symbol string) {
	t.Helper()
	err := postgres.NewTokenStore(pool).Upsert(context.Background(), &domain.Token{
		Symbol: symbol, Name: symbol, IsActive: true,
	})
	require.NoError(t, err)
}

func TestScoreStore_InsertAndGetLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedToken(t, pool, "PSG")
	store := postgres.NewScoreStore(pool)

	score := &domain.HealthScore{
		TokenSymbol:    "PSG",
		TimestampMs:    1_700_000_000_000,
		VolumeScore:    80,
		LiquidityScore: 70,
		SpreadScore:    90,
		HolderScore:    60,
		StabilityScore: 75,
		Overall:        76,
		Grade:          domain.GradeB,
		Trend:          domain.TrendStable,
		StalePillars:   []string{"holders"},
	}
	require.NoError(t, store.Insert(ctx, score))

	got, err := store.GetLatest(ctx, "PSG")
	require.NoError(t, err)
	assert.Equal(t, 76, got.Overall)
	assert.Equal(t, domain.GradeB, got.Grade)
	assert.Equal(t, []string{"holders"}, got.StalePillars)
}

func TestScoreStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedToken(t, pool, "PSG")
	store := postgres.NewScoreStore(pool)

	score := &domain.HealthScore{
		TokenSymbol: "PSG", TimestampMs: 1_700_000_000_000,
		Overall: 76, Grade: domain.GradeB, Trend: domain.TrendStable,
	}
	require.NoError(t, store.Insert(ctx, score))

	err := store.Insert(ctx, score)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestScoreStore_GetPrevious(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedToken(t, pool, "PSG")
	store := postgres.NewScoreStore(pool)

	base := int64(1_700_000_000_000)
	for i, overall := range []int{70, 72, 85} {
		require.NoError(t, store.Insert(ctx, &domain.HealthScore{
			TokenSymbol: "PSG",
			TimestampMs: base + int64(i)*300_000,
			Overall:     overall,
			Grade:       domain.GradeForScore(overall),
			Trend:       domain.TrendStable,
		}))
	}

	// Previous score for the third record within a 24h window.
	prev, err := store.GetPrevious(ctx, "PSG", base+600_000, 24*3600*1000)
	require.NoError(t, err)
	assert.Equal(t, 72, prev.Overall)

	// A narrow lookback excludes everything.
	_, err = store.GetPrevious(ctx, "PSG", base+600_000, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestScoreStore_GetLatestByGrade(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedToken(t, pool, "PSG")
	seedToken(t, pool, "BAR")
	store := postgres.NewScoreStore(pool)

	// PSG dropped from A to B; only the current grade counts.
	require.NoError(t, store.Insert(ctx, &domain.HealthScore{
		TokenSymbol: "PSG", TimestampMs: 1000, Overall: 92, Grade: domain.GradeA, Trend: domain.TrendStable,
	}))
	require.NoError(t, store.Insert(ctx, &domain.HealthScore{
		TokenSymbol: "PSG", TimestampMs: 2000, Overall: 80, Grade: domain.GradeB, Trend: domain.TrendDeclining,
	}))
	require.NoError(t, store.Insert(ctx, &domain.HealthScore{
		TokenSymbol: "BAR", TimestampMs: 2000, Overall: 95, Grade: domain.GradeA, Trend: domain.TrendImproving,
	}))

	gradeA, err := store.GetLatestByGrade(ctx, domain.GradeA)
	require.NoError(t, err)
	require.Len(t, gradeA, 1)
	assert.Equal(t, "BAR", gradeA[0].TokenSymbol)

	gradeB, err := store.GetLatestByGrade(ctx, domain.GradeB)
	require.NoError(t, err)
	require.Len(t, gradeB, 1)
	assert.Equal(t, "PSG", gradeB[0].TokenSymbol)
}
