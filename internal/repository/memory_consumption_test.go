package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hydrosense-data/internal/domain"
)

func TestTruncateToBucket(t *testing.T) {
	// 2026-03-04 是周三
	ts := time.Date(2026, 3, 4, 14, 37, 52, 0, time.UTC)

	require.Equal(t, time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC), TruncateToBucket(ts, domain.GranularityHour))
	require.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), TruncateToBucket(ts, domain.GranularityDay))
	// ISO 周一对齐：周三回退到 3 月 2 日（周一）
	require.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), TruncateToBucket(ts, domain.GranularityWeek))
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), TruncateToBucket(ts, domain.GranularityMonth))
}

func TestTruncateToBucketWeekOnSundayAndMonday(t *testing.T) {
	// 周日归入上周一开始的 ISO 周
	sunday := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), TruncateToBucket(sunday, domain.GranularityWeek))

	// 周一零点是自身的桶起点
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	require.Equal(t, monday, TruncateToBucket(monday, domain.GranularityWeek))
}

func TestNextBucket(t *testing.T) {
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	require.Equal(t, start.Add(time.Hour), NextBucket(start, domain.GranularityHour))
	require.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), NextBucket(start, domain.GranularityDay))
	require.Equal(t, time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC), NextBucket(start, domain.GranularityWeek))
	// AddDate 月份进位语义
	require.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), NextBucket(start, domain.GranularityMonth))

	monthStart := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), NextBucket(monthStart, domain.GranularityMonth))
}

func TestSumConsumptionByBucketGroupsCalendarDays(t *testing.T) {
	store := NewMemoryStore()
	events := NewMemoryEventsRepo(store)
	consumption := NewMemoryConsumptionRepo(store)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	insert := func(start time.Time, cat domain.Category, liters float64) {
		_, err := events.InsertEvent(ctx, &domain.Event{
			HouseholdID:         "hh-1",
			Category:            cat,
			StartTimestamp:      start,
			EndTimestamp:        start.Add(time.Minute),
			ConsumptionInLiters: liters,
		})
		require.NoError(t, err)
	}
	insert(day1.Add(8*time.Hour), domain.CategoryShower, 40)
	insert(day1.Add(20*time.Hour), domain.CategorySink, 10)
	insert(day2.Add(9*time.Hour), domain.CategoryShower, 25)

	buckets, err := consumption.SumConsumptionByBucket(ctx, "hh-1", day1, day2.AddDate(0, 0, 1), domain.GranularityDay)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	require.Equal(t, day1, buckets[0].BucketStart)
	require.Equal(t, 50.0, buckets[0].TotalLiters)
	require.Len(t, buckets[0].ByCategory, 2)

	require.Equal(t, day2, buckets[1].BucketStart)
	require.Equal(t, 25.0, buckets[1].TotalLiters)
}

func TestSumConsumptionHalfOpenRange(t *testing.T) {
	store := NewMemoryStore()
	events := NewMemoryEventsRepo(store)
	consumption := NewMemoryConsumptionRepo(store)
	ctx := context.Background()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	for _, start := range []time.Time{from.Add(-time.Second), from, to.Add(-time.Second), to} {
		_, err := events.InsertEvent(ctx, &domain.Event{
			HouseholdID:         "hh-1",
			Category:            domain.CategoryToilet,
			StartTimestamp:      start,
			EndTimestamp:        start.Add(time.Minute),
			ConsumptionInLiters: 5,
		})
		require.NoError(t, err)
	}

	totals, err := consumption.SumConsumption(ctx, "hh-1", from, to)
	require.NoError(t, err)
	// [from, to)：from 含、to 不含
	require.Equal(t, 10.0, totals.TotalLiters)
}
