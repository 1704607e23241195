package domain

import "time"

// Granularity 消耗统计的时间桶粒度
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Valid 校验粒度取值
func (g Granularity) Valid() bool {
	switch g {
	case GranularityHour, GranularityDay, GranularityWeek, GranularityMonth:
		return true
	}
	return false
}

// CategoryConsumption 按类别的消耗分量
type CategoryConsumption struct {
	Category            Category `json:"category"`
	ConsumptionInLiters float64  `json:"consumption_liters"`
}

// Consumption 消耗统计（按需从 Event 聚合计算，不落库）
// PercentDeviationFromBaseline 与前一个等长周期比较，下限 -100；
// 基线为 0 时约定偏差为 0
type Consumption struct {
	StartDate                          time.Time             `json:"start_date"`
	EndDate                            time.Time             `json:"end_date"`
	ConsumptionInLiters                float64               `json:"consumption_liters"`
	ConsumptionInLitersPerDayPerPerson float64               `json:"consumption_liters_per_day_per_person"`
	PercentDeviationFromBaseline       float64               `json:"percent_deviation_from_baseline"`
	CategoryBreakdown                  []CategoryConsumption `json:"category_breakdown"`
}
