package service

import (
	"context"
	"testing"
	"time"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv 内存仓储上的服务测试环境
type testEnv struct {
	store *repository.MemoryStore
	repos *repository.Repositories
	uow   repository.UnitOfWork
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore()
	return &testEnv{
		store: store,
		repos: repository.NewMemoryRepositories(store),
		uow:   repository.NewMemoryUnitOfWork(store),
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// seedHousehold 创建家庭并把 userID 设为 admin 成员
func (e *testEnv) seedHousehold(t *testing.T, userID string, residents int) string {
	t.Helper()
	ctx := context.Background()
	householdID, err := e.repos.Households.CreateHousehold(ctx, &domain.Household{
		Name:      "Test Home",
		Residents: residents,
		SensorID:  "aabbccddeeff",
	})
	require.NoError(t, err)
	require.NoError(t, e.repos.HouseholdUsers.AddMember(ctx, &domain.HouseholdUser{
		HouseholdID: householdID,
		UserID:      userID,
		Role:        domain.RoleAdmin,
	}))
	return householdID
}

// seedEvent 在指定时刻插入一条用水事件
func (e *testEnv) seedEvent(t *testing.T, householdID string, category domain.Category, start time.Time, liters float64) string {
	t.Helper()
	id, err := e.repos.Events.InsertEvent(context.Background(), &domain.Event{
		HouseholdID:         householdID,
		Category:            category,
		StartTimestamp:      start,
		EndTimestamp:        start.Add(2 * time.Minute),
		DurationInSeconds:   120,
		ConsumptionInLiters: liters,
	})
	require.NoError(t, err)
	return id
}

func householdPatchResidents(n int) repository.HouseholdPatch {
	return repository.HouseholdPatch{Residents: &n}
}

func requireErrorKind(t *testing.T, err error, kind domain.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	require.Equal(t, kind, de.Kind)
}
