package repository

import (
	"context"
	"fmt"
	"time"

	"hydrosense-data/internal/domain"
)

// PostgresConsumptionRepository 消耗聚合Repository实现
// 直接在 DB 层做 SUM / date_trunc 聚合，避免把原始事件拉到应用层
type PostgresConsumptionRepository struct {
	db DBTX
}

// NewPostgresConsumptionRepository 创建消耗聚合Repository
func NewPostgresConsumptionRepository(db DBTX) *PostgresConsumptionRepository {
	return &PostgresConsumptionRepository{db: db}
}

// 确保实现了接口
var _ ConsumptionRepository = (*PostgresConsumptionRepository)(nil)

// SumConsumption 区间总量 + 按类别分量
// 总量由类别分量在同一次扫描内累加得到，保证分量之和等于总量
func (r *PostgresConsumptionRepository) SumConsumption(ctx context.Context, householdID string, from, to time.Time) (*ConsumptionTotals, error) {
	query := `
		SELECT category, SUM(consumption_liters)
		FROM app.events
		WHERE household_id = $1
		  AND start_timestamp >= $2
		  AND start_timestamp < $3
		GROUP BY category
		ORDER BY category
	`
	rows, err := r.db.QueryContext(ctx, query, householdID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum consumption: %w", err)
	}
	defer rows.Close()

	totals := &ConsumptionTotals{}
	for rows.Next() {
		var c domain.CategoryConsumption
		if err := rows.Scan(&c.Category, &c.ConsumptionInLiters); err != nil {
			return nil, fmt.Errorf("failed to scan consumption row: %w", err)
		}
		totals.ByCategory = append(totals.ByCategory, c)
		totals.TotalLiters += c.ConsumptionInLiters
	}
	return totals, rows.Err()
}

// SumConsumptionByBucket 按粒度分桶聚合
// 桶起点用 date_trunc 做日历对齐；只返回非空桶，空桶补零在 Service 层
// 截断固定在 UTC：date_trunc 对 timestamptz 按会话时区取整，
// 非 UTC 的 DB 会话会让桶起点对不上 Service 层的 UTC 桶序列
func (r *PostgresConsumptionRepository) SumConsumptionByBucket(ctx context.Context, householdID string, from, to time.Time, g domain.Granularity) ([]ConsumptionBucket, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid granularity: %s", g)
	}

	query := `
		SELECT date_trunc($4, start_timestamp AT TIME ZONE 'UTC') AS bucket, category, SUM(consumption_liters)
		FROM app.events
		WHERE household_id = $1
		  AND start_timestamp >= $2
		  AND start_timestamp < $3
		GROUP BY bucket, category
		ORDER BY bucket, category
	`
	rows, err := r.db.QueryContext(ctx, query, householdID, from, to, string(g))
	if err != nil {
		return nil, fmt.Errorf("failed to sum consumption by bucket: %w", err)
	}
	defer rows.Close()

	var out []ConsumptionBucket
	for rows.Next() {
		var bucket time.Time
		var c domain.CategoryConsumption
		if err := rows.Scan(&bucket, &c.Category, &c.ConsumptionInLiters); err != nil {
			return nil, fmt.Errorf("failed to scan bucket row: %w", err)
		}
		if len(out) == 0 || !out[len(out)-1].BucketStart.Equal(bucket) {
			out = append(out, ConsumptionBucket{BucketStart: bucket})
		}
		last := &out[len(out)-1]
		last.ByCategory = append(last.ByCategory, c)
		last.TotalLiters += c.ConsumptionInLiters
	}
	return out, rows.Err()
}
