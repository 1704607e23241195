package mqtt

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"
	"hydrosense-data/internal/service"
)

func newBrokerEnv(t *testing.T) (*SensorBroker, *repository.Repositories, string) {
	t.Helper()
	store := repository.NewMemoryStore()
	repos := repository.NewMemoryRepositories(store)

	householdID, err := repos.Households.CreateHousehold(context.Background(), &domain.Household{
		Name:      "Maple Street",
		Residents: 3,
		SensorID:  "aabbccddeeff",
	})
	require.NoError(t, err)

	events := service.NewEventService(repos.Events, repos.Tags, repos.HouseholdUsers, zap.NewNop())
	broker := NewSensorBroker(events, repos.Households, zap.NewNop())
	return broker, repos, householdID
}

func listAll(t *testing.T, repos *repository.Repositories, householdID string) []*domain.Event {
	t.Helper()
	events, _, err := repos.Events.ListEvents(context.Background(), householdID, repository.EventsFilter{}, repository.EventsPage{Limit: 100})
	require.NoError(t, err)
	return events
}

func TestHandleMessageIngestsBatch(t *testing.T) {
	broker, repos, householdID := newBrokerEnv(t)

	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	payload := `[
		{"sensorId":"aabbccddeeff","category":"shower","startTime":` + unixStr(start) + `,"endTime":` + unixStr(start.Add(5*time.Minute)) + `,"liters":42.5},
		{"sensorId":"aabbccddeeff","category":"sink","startTime":` + unixStr(start.Add(time.Hour)) + `,"endTime":` + unixStr(start.Add(time.Hour+time.Minute)) + `,"liters":3.2,"tagName":"kitchen"}
	]`

	require.NoError(t, broker.HandleMessage("hydrosense/sensors/aabbccddeeff/events", []byte(payload)))

	events := listAll(t, repos, householdID)
	require.Len(t, events, 2)
	// 默认 desc：sink 事件更晚
	require.Equal(t, domain.CategorySink, events[0].Category)
	require.Equal(t, "kitchen", events[0].TagName)
	require.Equal(t, domain.CategoryShower, events[1].Category)
	require.Equal(t, 42.5, events[1].ConsumptionInLiters)
	require.Equal(t, 300, events[1].DurationInSeconds)
	require.True(t, events[1].StartTimestamp.Equal(start))
}

func TestHandleMessageSingleObjectFallback(t *testing.T) {
	broker, repos, householdID := newBrokerEnv(t)

	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	payload := `{"sensorId":"aabbccddeeff","category":"toilet","startTime":` + unixStr(start) + `,"endTime":` + unixStr(start.Add(time.Minute)) + `,"liters":6}`

	require.NoError(t, broker.HandleMessage("t", []byte(payload)))
	require.Len(t, listAll(t, repos, householdID), 1)
}

func TestHandleMessageUnknownCategoryCoerced(t *testing.T) {
	broker, repos, householdID := newBrokerEnv(t)

	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	payload := `[{"sensorId":"aabbccddeeff","category":"jacuzzi","startTime":` + unixStr(start) + `,"endTime":` + unixStr(start.Add(time.Minute)) + `,"liters":80}]`

	require.NoError(t, broker.HandleMessage("t", []byte(payload)))

	events := listAll(t, repos, householdID)
	require.Len(t, events, 1)
	require.Equal(t, domain.CategoryUnknown, events[0].Category)
}

func TestHandleMessageSkipsBadEvents(t *testing.T) {
	broker, repos, householdID := newBrokerEnv(t)

	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	// 第一条传感器未注册，第二条正常，第三条 end < start
	payload := `[
		{"sensorId":"112233445566","category":"shower","startTime":` + unixStr(start) + `,"endTime":` + unixStr(start.Add(time.Minute)) + `,"liters":10},
		{"sensorId":"aabbccddeeff","category":"shower","startTime":` + unixStr(start) + `,"endTime":` + unixStr(start.Add(time.Minute)) + `,"liters":10},
		{"sensorId":"aabbccddeeff","category":"shower","startTime":` + unixStr(start) + `,"endTime":` + unixStr(start.Add(-time.Minute)) + `,"liters":10}
	]`

	require.NoError(t, broker.HandleMessage("t", []byte(payload)))
	require.Len(t, listAll(t, repos, householdID), 1)
}

func TestHandleMessageRejectsMalformedPayload(t *testing.T) {
	broker, _, _ := newBrokerEnv(t)
	require.Error(t, broker.HandleMessage("t", []byte("not json")))
}

func unixStr(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
