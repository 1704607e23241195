package service

import (
	"context"
	"time"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"

	"go.uber.org/zap"
)

// ConsumptionService 消耗统计服务
// 原始聚合（SUM/分桶）由 Repository 完成，此处计算人均折算与基线偏差
type ConsumptionService struct {
	consumption repository.ConsumptionRepository
	households  repository.HouseholdsRepository
	members     repository.HouseholdUsersRepository
	logger      *zap.Logger
}

// NewConsumptionService 创建消耗统计服务
func NewConsumptionService(
	consumption repository.ConsumptionRepository,
	households repository.HouseholdsRepository,
	members repository.HouseholdUsersRepository,
	logger *zap.Logger,
) *ConsumptionService {
	return &ConsumptionService{
		consumption: consumption,
		households:  households,
		members:     members,
		logger:      logger,
	}
}

func (s *ConsumptionService) requireHousehold(ctx context.Context, householdID, userID string) (*domain.Household, error) {
	m, err := s.members.GetMembership(ctx, householdID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ForbiddenError("not a member of household %s", householdID)
	}
	h, err := s.households.GetHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, domain.NotFoundError("household %s not found", householdID)
	}
	return h, nil
}

// perDayPerPerson 人均日消耗折算
func perDayPerPerson(totalLiters float64, from, to time.Time, residents int) float64 {
	days := to.Sub(from).Hours() / 24
	if days <= 0 || residents < 1 {
		return 0
	}
	return totalLiters / (days * float64(residents))
}

// percentDeviation 基线偏差：(current-baseline)/baseline*100，下限 -100
// 基线为 0 时约定返回 0（避免除零，空基线周期不产生虚假偏差）
func percentDeviation(current, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}
	d := (current - baseline) / baseline * 100
	if d < -100 {
		d = -100
	}
	return d
}

func (s *ConsumptionService) buildConsumption(ctx context.Context, householdID string, from, to time.Time, residents int) (*domain.Consumption, error) {
	totals, err := s.consumption.SumConsumption(ctx, householdID, from, to)
	if err != nil {
		return nil, err
	}

	// 基线 = 紧邻的前一个等长周期
	baselineFrom := from.Add(-to.Sub(from))
	baseline, err := s.consumption.SumConsumption(ctx, householdID, baselineFrom, from)
	if err != nil {
		return nil, err
	}

	breakdown := totals.ByCategory
	if breakdown == nil {
		breakdown = []domain.CategoryConsumption{}
	}
	return &domain.Consumption{
		StartDate:                          from,
		EndDate:                            to,
		ConsumptionInLiters:                totals.TotalLiters,
		ConsumptionInLitersPerDayPerPerson: perDayPerPerson(totals.TotalLiters, from, to, residents),
		PercentDeviationFromBaseline:       percentDeviation(totals.TotalLiters, baseline.TotalLiters),
		CategoryBreakdown:                  breakdown,
	}, nil
}

// GetConsumption 查询区间消耗
// 事件归属按 start_timestamp ∈ [from, to)
func (s *ConsumptionService) GetConsumption(ctx context.Context, userID, householdID string, from, to time.Time) (*domain.Consumption, error) {
	if !from.Before(to) {
		return nil, domain.BadRequestError("start_date must be before end_date")
	}
	h, err := s.requireHousehold(ctx, householdID, userID)
	if err != nil {
		return nil, err
	}
	return s.buildConsumption(ctx, householdID, from, to, h.Residents)
}

// GetConsumptionByGranularity 按粒度分桶查询消耗
// 返回升序、连续、不重叠的桶序列，覆盖 [from, to)；首尾桶按区间裁剪；
// 空桶补零；每个桶的基线为其前一个完整桶窗口
func (s *ConsumptionService) GetConsumptionByGranularity(ctx context.Context, userID, householdID string, from, to time.Time, g domain.Granularity) ([]*domain.Consumption, error) {
	if !from.Before(to) {
		return nil, domain.BadRequestError("start_date must be before end_date")
	}
	if !g.Valid() {
		return nil, domain.BadRequestError("invalid granularity: %s", g)
	}
	h, err := s.requireHousehold(ctx, householdID, userID)
	if err != nil {
		return nil, err
	}

	buckets, err := s.consumption.SumConsumptionByBucket(ctx, householdID, from, to, g)
	if err != nil {
		return nil, err
	}
	filled := map[time.Time]repository.ConsumptionBucket{}
	for _, b := range buckets {
		filled[b.BucketStart.UTC()] = b
	}

	// 首桶基线来自区间之外的前一个桶窗口
	firstStart := repository.TruncateToBucket(from, g)
	baselineTotals, err := s.consumption.SumConsumption(ctx, householdID, baselineWindowStart(firstStart, g), firstStart)
	if err != nil {
		return nil, err
	}
	prevTotal := baselineTotals.TotalLiters

	var out []*domain.Consumption
	for start := firstStart; start.Before(to); start = repository.NextBucket(start, g) {
		end := repository.NextBucket(start, g)

		// 裁剪到查询区间，保持桶序列连续覆盖 [from, to)
		clippedFrom := start
		if clippedFrom.Before(from) {
			clippedFrom = from
		}
		clippedTo := end
		if clippedTo.After(to) {
			clippedTo = to
		}

		b := filled[start]
		breakdown := b.ByCategory
		if breakdown == nil {
			breakdown = []domain.CategoryConsumption{}
		}
		out = append(out, &domain.Consumption{
			StartDate:                          clippedFrom,
			EndDate:                            clippedTo,
			ConsumptionInLiters:                b.TotalLiters,
			ConsumptionInLitersPerDayPerPerson: perDayPerPerson(b.TotalLiters, clippedFrom, clippedTo, h.Residents),
			PercentDeviationFromBaseline:       percentDeviation(b.TotalLiters, prevTotal),
			CategoryBreakdown:                  breakdown,
		})

		prevTotal = b.TotalLiters
	}
	return out, nil
}

func baselineWindowStart(firstBucket time.Time, g domain.Granularity) time.Time {
	switch g {
	case domain.GranularityHour:
		return firstBucket.Add(-time.Hour)
	case domain.GranularityDay:
		return firstBucket.AddDate(0, 0, -1)
	case domain.GranularityWeek:
		return firstBucket.AddDate(0, 0, -7)
	case domain.GranularityMonth:
		return firstBucket.AddDate(0, -1, 0)
	}
	return firstBucket
}

// GetCurrentMonthConsumption 当月消耗（自然月起点到当前时刻）
func (s *ConsumptionService) GetCurrentMonthConsumption(ctx context.Context, userID, householdID string, now time.Time) (*domain.Consumption, error) {
	now = now.UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	h, err := s.requireHousehold(ctx, householdID, userID)
	if err != nil {
		return nil, err
	}
	if !from.Before(now) {
		// 月初零点整：区间为空
		return &domain.Consumption{StartDate: from, EndDate: now, CategoryBreakdown: []domain.CategoryConsumption{}}, nil
	}
	return s.buildConsumption(ctx, householdID, from, now, h.Residents)
}

// GetCurrentDayConsumption 当日消耗（自然日起点到当前时刻）
func (s *ConsumptionService) GetCurrentDayConsumption(ctx context.Context, userID, householdID string, now time.Time) (*domain.Consumption, error) {
	now = now.UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	h, err := s.requireHousehold(ctx, householdID, userID)
	if err != nil {
		return nil, err
	}
	if !from.Before(now) {
		return &domain.Consumption{StartDate: from, EndDate: now, CategoryBreakdown: []domain.CategoryConsumption{}}, nil
	}
	return s.buildConsumption(ctx, householdID, from, now, h.Residents)
}
