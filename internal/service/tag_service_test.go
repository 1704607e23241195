package service

import (
	"context"
	"testing"
	"time"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestCreateTagRejectsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	userID := "user-1"
	householdID := env.seedHousehold(t, userID, 2)

	svc := NewTagService(env.repos.Tags, env.repos.HouseholdUsers, env.uow, testLogger())
	ctx := context.Background()

	_, err := svc.CreateTag(ctx, userID, CreateTagRequest{
		HouseholdID: householdID,
		Category:    domain.CategoryShower,
		Name:        "kids bathroom",
	})
	require.NoError(t, err)

	// 同 (category, name) 重复创建被拒绝
	_, err = svc.CreateTag(ctx, userID, CreateTagRequest{
		HouseholdID: householdID,
		Category:    domain.CategoryShower,
		Name:        "kids bathroom",
	})
	requireErrorKind(t, err, domain.ErrKindBadRequest)

	// 同名不同类别允许
	_, err = svc.CreateTag(ctx, userID, CreateTagRequest{
		HouseholdID: householdID,
		Category:    domain.CategorySink,
		Name:        "kids bathroom",
	})
	require.NoError(t, err)

	tags, err := svc.ListTagsByCategory(ctx, userID, householdID, domain.CategoryShower)
	require.NoError(t, err)
	require.Len(t, tags, 1)
}

func TestUpdateTagCascadesEventDeletion(t *testing.T) {
	env := newTestEnv(t)
	userID := "user-1"
	householdID := env.seedHousehold(t, userID, 2)

	svc := NewTagService(env.repos.Tags, env.repos.HouseholdUsers, env.uow, testLogger())
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, userID, CreateTagRequest{
		HouseholdID: householdID,
		Category:    domain.CategoryShower,
		Name:        "guest shower",
	})
	require.NoError(t, err)

	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	_, err = env.repos.Events.InsertEvent(ctx, &domain.Event{
		HouseholdID:         householdID,
		Category:            domain.CategoryShower,
		StartTimestamp:      start,
		EndTimestamp:        start.Add(5 * time.Minute),
		DurationInSeconds:   300,
		ConsumptionInLiters: 60,
		TagName:             "guest shower",
	})
	require.NoError(t, err)
	env.seedEvent(t, householdID, domain.CategoryShower, start.Add(time.Hour), 30) // 无标签，不受影响

	_, err = svc.UpdateTag(ctx, userID, UpdateTagRequest{
		HouseholdID: householdID,
		TagID:       tag.TagID,
		Category:    domain.CategoryShower,
		Name:        "master shower",
	})
	require.NoError(t, err)

	// 旧标签名下的事件随改名删除，其余事件保留
	events, _, err := env.repos.Events.ListEvents(ctx, householdID, repository.EventsFilter{}, repository.EventsPage{Limit: 100})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Empty(t, events[0].TagName)

	renamed, err := env.repos.Tags.GetTag(ctx, householdID, tag.TagID)
	require.NoError(t, err)
	require.Equal(t, "master shower", renamed.Name)
}

func TestUpdateTagConflictRollsBack(t *testing.T) {
	env := newTestEnv(t)
	userID := "user-1"
	householdID := env.seedHousehold(t, userID, 2)

	svc := NewTagService(env.repos.Tags, env.repos.HouseholdUsers, env.uow, testLogger())
	ctx := context.Background()

	tagA, err := svc.CreateTag(ctx, userID, CreateTagRequest{
		HouseholdID: householdID, Category: domain.CategoryShower, Name: "alpha",
	})
	require.NoError(t, err)
	_, err = svc.CreateTag(ctx, userID, CreateTagRequest{
		HouseholdID: householdID, Category: domain.CategoryShower, Name: "beta",
	})
	require.NoError(t, err)

	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	_, err = env.repos.Events.InsertEvent(ctx, &domain.Event{
		HouseholdID:         householdID,
		Category:            domain.CategoryShower,
		StartTimestamp:      start,
		EndTimestamp:        start.Add(time.Minute),
		DurationInSeconds:   60,
		ConsumptionInLiters: 10,
		TagName:             "alpha",
	})
	require.NoError(t, err)

	// alpha → beta 与现有标签冲突，整个操作不产生任何写入
	_, err = svc.UpdateTag(ctx, userID, UpdateTagRequest{
		HouseholdID: householdID, TagID: tagA.TagID, Category: domain.CategoryShower, Name: "beta",
	})
	requireErrorKind(t, err, domain.ErrKindBadRequest)

	unchanged, err := env.repos.Tags.GetTag(ctx, householdID, tagA.TagID)
	require.NoError(t, err)
	require.Equal(t, "alpha", unchanged.Name)

	events, _, err := env.repos.Events.ListEvents(ctx, householdID, repository.EventsFilter{}, repository.EventsPage{Limit: 100})
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestDeleteTagCascadesEventDeletion(t *testing.T) {
	env := newTestEnv(t)
	userID := "user-1"
	householdID := env.seedHousehold(t, userID, 2)

	svc := NewTagService(env.repos.Tags, env.repos.HouseholdUsers, env.uow, testLogger())
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, userID, CreateTagRequest{
		HouseholdID: householdID, Category: domain.CategoryIrrigation, Name: "front lawn",
	})
	require.NoError(t, err)

	start := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	_, err = env.repos.Events.InsertEvent(ctx, &domain.Event{
		HouseholdID:         householdID,
		Category:            domain.CategoryIrrigation,
		StartTimestamp:      start,
		EndTimestamp:        start.Add(20 * time.Minute),
		DurationInSeconds:   1200,
		ConsumptionInLiters: 200,
		TagName:             "front lawn",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTag(ctx, userID, householdID, tag.TagID))

	gone, err := env.repos.Tags.GetTag(ctx, householdID, tag.TagID)
	require.NoError(t, err)
	require.Nil(t, gone)

	events, _, err := env.repos.Events.ListEvents(ctx, householdID, repository.EventsFilter{}, repository.EventsPage{Limit: 100})
	require.NoError(t, err)
	require.Empty(t, events)
}
