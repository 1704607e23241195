package repository

import (
	"context"
	"sort"
	"time"

	"hydrosense-data/internal/domain"
)

// MemoryConsumptionRepo aggregates over the in-memory events table.
// Mirrors the SQL SUM/date_trunc semantics (UTC, calendar-aligned buckets,
// week starting Monday) so service tests exercise the same contract.
type MemoryConsumptionRepo struct {
	store *MemoryStore
}

func NewMemoryConsumptionRepo(store *MemoryStore) *MemoryConsumptionRepo {
	return &MemoryConsumptionRepo{store: store}
}

var _ ConsumptionRepository = (*MemoryConsumptionRepo)(nil)

// TruncateToBucket truncates t to the calendar bucket start for g in UTC,
// the same alignment date_trunc produces.
func TruncateToBucket(t time.Time, g domain.Granularity) time.Time {
	t = t.UTC()
	switch g {
	case domain.GranularityHour:
		return t.Truncate(time.Hour)
	case domain.GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case domain.GranularityWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		// ISO week starts Monday
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// NextBucket advances a bucket start by one granularity step.
func NextBucket(t time.Time, g domain.Granularity) time.Time {
	switch g {
	case domain.GranularityHour:
		return t.Add(time.Hour)
	case domain.GranularityDay:
		return t.AddDate(0, 0, 1)
	case domain.GranularityWeek:
		return t.AddDate(0, 0, 7)
	case domain.GranularityMonth:
		return t.AddDate(0, 1, 0)
	}
	return t
}

func (r *MemoryConsumptionRepo) inRange(householdID string, from, to time.Time) []domain.Event {
	var out []domain.Event
	for _, e := range r.store.events {
		if e.HouseholdID != householdID {
			continue
		}
		if e.StartTimestamp.Before(from) || !e.StartTimestamp.Before(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func categoryTotals(events []domain.Event) ([]domain.CategoryConsumption, float64) {
	byCat := map[domain.Category]float64{}
	total := 0.0
	for _, e := range events {
		byCat[e.Category] += e.ConsumptionInLiters
		total += e.ConsumptionInLiters
	}
	out := make([]domain.CategoryConsumption, 0, len(byCat))
	for c, liters := range byCat {
		out = append(out, domain.CategoryConsumption{Category: c, ConsumptionInLiters: liters})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, total
}

func (r *MemoryConsumptionRepo) SumConsumption(_ context.Context, householdID string, from, to time.Time) (*ConsumptionTotals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byCat, total := categoryTotals(r.inRange(householdID, from, to))
	return &ConsumptionTotals{TotalLiters: total, ByCategory: byCat}, nil
}

func (r *MemoryConsumptionRepo) SumConsumptionByBucket(_ context.Context, householdID string, from, to time.Time, g domain.Granularity) ([]ConsumptionBucket, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	grouped := map[time.Time][]domain.Event{}
	for _, e := range r.inRange(householdID, from, to) {
		b := TruncateToBucket(e.StartTimestamp, g)
		grouped[b] = append(grouped[b], e)
	}

	out := make([]ConsumptionBucket, 0, len(grouped))
	for b, events := range grouped {
		byCat, total := categoryTotals(events)
		out = append(out, ConsumptionBucket{BucketStart: b, TotalLiters: total, ByCategory: byCat})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart.Before(out[j].BucketStart) })
	return out, nil
}
