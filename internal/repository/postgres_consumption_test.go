package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"hydrosense-data/internal/domain"
)

func TestPostgresSumConsumption(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	mock.ExpectQuery(`SELECT category, SUM\(consumption_liters\)\s+FROM app\.events`).
		WithArgs("hh-1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"category", "sum"}).
			AddRow("shower", 120.5).
			AddRow("sink", 30.0))

	repo := NewPostgresConsumptionRepository(db)
	totals, err := repo.SumConsumption(context.Background(), "hh-1", from, to)
	require.NoError(t, err)
	require.Equal(t, 150.5, totals.TotalLiters)
	require.Len(t, totals.ByCategory, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSumConsumptionByBucketTruncatesInUTC(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2)
	day2 := from.AddDate(0, 0, 1)

	// 截断必须固定在 UTC，不能随 DB 会话时区漂移
	mock.ExpectQuery(`SELECT date_trunc\(\$4, start_timestamp AT TIME ZONE 'UTC'\) AS bucket`).
		WithArgs("hh-1", from, to, "day").
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "category", "sum"}).
			AddRow(from, "shower", 40.0).
			AddRow(from, "sink", 10.0).
			AddRow(day2, "shower", 25.0))

	repo := NewPostgresConsumptionRepository(db)
	buckets, err := repo.SumConsumptionByBucket(context.Background(), "hh-1", from, to, domain.GranularityDay)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	require.True(t, buckets[0].BucketStart.Equal(from))
	require.Equal(t, 50.0, buckets[0].TotalLiters)
	require.True(t, buckets[1].BucketStart.Equal(day2))
	require.Equal(t, 25.0, buckets[1].TotalLiters)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSumConsumptionByBucketRejectsInvalidGranularity(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresConsumptionRepository(db)
	_, err = repo.SumConsumptionByBucket(context.Background(), "hh-1", time.Now(), time.Now(), domain.Granularity("quarter"))
	require.Error(t, err)
}
