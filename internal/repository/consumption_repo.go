package repository

import (
	"context"
	"time"

	"hydrosense-data/internal/domain"
)

// ConsumptionTotals 区间内的消耗汇总（原始聚合，不含人均/基线计算）
// ByCategory 与 TotalLiters 来自同一次扫描，分量之和等于总量
type ConsumptionTotals struct {
	TotalLiters float64
	ByCategory  []domain.CategoryConsumption
}

// ConsumptionBucket 单个时间桶的消耗汇总
// BucketStart 为按粒度截断后的桶起点（日历对齐）
type ConsumptionBucket struct {
	BucketStart time.Time
	TotalLiters float64
	ByCategory  []domain.CategoryConsumption
}

// ConsumptionRepository 消耗聚合Repository接口
// 事件归属区间按 start_timestamp ∈ [from, to) 判定
// 人均折算和基线偏差在 Service 层计算
type ConsumptionRepository interface {
	// SumConsumption 区间总量 + 按类别分量
	SumConsumption(ctx context.Context, householdID string, from, to time.Time) (*ConsumptionTotals, error)

	// SumConsumptionByBucket 按粒度分桶聚合，只返回非空桶，按桶起点升序
	// 空桶补零由 Service 层完成
	SumConsumptionByBucket(ctx context.Context, householdID string, from, to time.Time, g domain.Granularity) ([]ConsumptionBucket, error)
}
