package service

import (
	"context"
	"testing"
	"time"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestCountLeakAndUnknownEvents(t *testing.T) {
	env := newTestEnv(t)
	userID := "user-1"
	householdID := env.seedHousehold(t, userID, 2)

	start := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	env.seedEvent(t, householdID, domain.CategoryLeak, start, 5)
	env.seedEvent(t, householdID, domain.CategoryLeak, start.Add(time.Hour), 3)
	env.seedEvent(t, householdID, domain.CategoryUnknown, start.Add(2*time.Hour), 12)
	env.seedEvent(t, householdID, domain.CategoryShower, start.Add(3*time.Hour), 50)

	svc := NewEventService(env.repos.Events, env.repos.Tags, env.repos.HouseholdUsers, testLogger())
	ctx := context.Background()

	leaks, err := svc.CountLeakEvents(ctx, userID, householdID)
	require.NoError(t, err)
	require.Equal(t, 2, leaks)

	unknown, err := svc.CountUnknownEvents(ctx, userID, householdID)
	require.NoError(t, err)
	require.Equal(t, 1, unknown)

	_, err = svc.CountLeakEvents(ctx, "stranger", householdID)
	requireErrorKind(t, err, domain.ErrKindForbidden)
}

func TestRecategorizeEvent(t *testing.T) {
	env := newTestEnv(t)
	userID := "user-1"
	householdID := env.seedHousehold(t, userID, 2)
	ctx := context.Background()

	eventID := env.seedEvent(t, householdID, domain.CategoryUnknown, time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC), 40)
	_, err := env.repos.Tags.CreateTag(ctx, &domain.Tag{
		HouseholdID: householdID,
		Category:    domain.CategoryShower,
		Name:        "kids bathroom",
	})
	require.NoError(t, err)

	svc := NewEventService(env.repos.Events, env.repos.Tags, env.repos.HouseholdUsers, testLogger())

	updated, err := svc.Recategorize(ctx, userID, RecategorizeRequest{
		HouseholdID: householdID,
		EventID:     eventID,
		Category:    domain.CategoryShower,
		TagName:     "kids bathroom",
	})
	require.NoError(t, err)
	require.Equal(t, domain.CategoryShower, updated.Category)
	require.Equal(t, "kids bathroom", updated.TagName)
}

func TestRecategorizeRejectsUnknownTag(t *testing.T) {
	env := newTestEnv(t)
	userID := "user-1"
	householdID := env.seedHousehold(t, userID, 2)
	ctx := context.Background()
	eventID := env.seedEvent(t, householdID, domain.CategoryUnknown, time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC), 40)

	svc := NewEventService(env.repos.Events, env.repos.Tags, env.repos.HouseholdUsers, testLogger())

	// 目标类别下不存在的标签
	_, err := svc.Recategorize(ctx, userID, RecategorizeRequest{
		HouseholdID: householdID,
		EventID:     eventID,
		Category:    domain.CategoryShower,
		TagName:     "nope",
	})
	requireErrorKind(t, err, domain.ErrKindBadRequest)

	// 非法类别
	_, err = svc.Recategorize(ctx, userID, RecategorizeRequest{
		HouseholdID: householdID,
		EventID:     eventID,
		Category:    "sauna",
	})
	requireErrorKind(t, err, domain.ErrKindBadRequest)

	// 不存在的事件
	_, err = svc.Recategorize(ctx, userID, RecategorizeRequest{
		HouseholdID: householdID,
		EventID:     "missing",
		Category:    domain.CategoryShower,
	})
	requireErrorKind(t, err, domain.ErrKindNotFound)
}

func TestListEventsFilteredByCategory(t *testing.T) {
	env := newTestEnv(t)
	userID := "user-1"
	householdID := env.seedHousehold(t, userID, 2)

	start := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	env.seedEvent(t, householdID, domain.CategoryShower, start, 50)
	env.seedEvent(t, householdID, domain.CategorySink, start.Add(time.Hour), 5)
	env.seedEvent(t, householdID, domain.CategoryShower, start.Add(2*time.Hour), 60)

	svc := NewEventService(env.repos.Events, env.repos.Tags, env.repos.HouseholdUsers, testLogger())

	items, _, err := svc.ListEvents(context.Background(), userID, householdID,
		repository.EventsFilter{Category: domain.CategoryShower},
		repository.EventsPage{Limit: 10, Order: repository.OrderDesc},
	)
	require.NoError(t, err)
	require.Len(t, items, 2)
	// 默认按开始时间降序
	require.True(t, items[0].StartTimestamp.After(items[1].StartTimestamp))
}

func TestIngestEventValidation(t *testing.T) {
	env := newTestEnv(t)
	householdID := env.seedHousehold(t, "user-1", 2)
	svc := NewEventService(env.repos.Events, env.repos.Tags, env.repos.HouseholdUsers, testLogger())
	ctx := context.Background()

	start := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

	// end < start 被拒绝
	_, err := svc.IngestEvent(ctx, &domain.Event{
		HouseholdID:         householdID,
		Category:            domain.CategoryShower,
		StartTimestamp:      start,
		EndTimestamp:        start.Add(-time.Minute),
		ConsumptionInLiters: 10,
	})
	requireErrorKind(t, err, domain.ErrKindBadRequest)

	id, err := svc.IngestEvent(ctx, &domain.Event{
		HouseholdID:         householdID,
		Category:            domain.CategoryShower,
		StartTimestamp:      start,
		EndTimestamp:        start.Add(4 * time.Minute),
		DurationInSeconds:   240,
		ConsumptionInLiters: 48,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
}
