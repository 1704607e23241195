package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/store"

	"github.com/stretchr/testify/require"
)

// fakeController 设备控制替身，记录调用次数
type fakeController struct {
	setMaxCalls int
	setMaxValue float64
	tempErr     error
	temperature float64
	reportedAt  int64
}

func (f *fakeController) GetState(deviceID string) (*DeviceState, error) {
	return &DeviceState{DeviceID: deviceID, Power: "on", MaxTemperature: 25}, nil
}

func (f *fakeController) SetPower(deviceID string, on bool) (*DeviceState, error) {
	power := "off"
	if on {
		power = "on"
	}
	return &DeviceState{DeviceID: deviceID, Power: power}, nil
}

func (f *fakeController) SetMaxTemperature(deviceID string, maxTemperature float64) error {
	f.setMaxCalls++
	f.setMaxValue = maxTemperature
	return nil
}

func (f *fakeController) GetLastTemperature(deviceID string) (*DeviceTemperature, error) {
	if f.tempErr != nil {
		return nil, f.tempErr
	}
	return &DeviceTemperature{DeviceID: deviceID, Temperature: f.temperature, ReportedAt: f.reportedAt}, nil
}

func (f *fakeController) GetStatus(deviceID string) (*DeviceStatusPayload, error) {
	return &DeviceStatusPayload{
		DeviceID:       deviceID,
		Power:          "off",
		MaxTemperature: 28,
		Temperature:    f.temperature,
		ReportedAt:     f.reportedAt,
		Online:         true,
	}, nil
}

func TestSetMaxTemperatureRejectedBeforeDeviceCall(t *testing.T) {
	ctrl := &fakeController{}
	svc := NewRecirculatorService(ctrl, store.NewMemoryKV(), testLogger())
	ctx := context.Background()

	// [20,35] 之外的设定值在任何设备调用之前被拒绝
	for _, v := range []float64{19.9, 35.1, 40, -5} {
		err := svc.SetMaxTemperature(ctx, "dev-1", v)
		requireErrorKind(t, err, domain.ErrKindBadRequest)
	}
	require.Zero(t, ctrl.setMaxCalls)

	require.NoError(t, svc.SetMaxTemperature(ctx, "dev-1", 28))
	require.Equal(t, 1, ctrl.setMaxCalls)
	require.Equal(t, 28.0, ctrl.setMaxValue)
}

func TestPowerCommands(t *testing.T) {
	svc := NewRecirculatorService(&fakeController{}, store.NewMemoryKV(), testLogger())
	ctx := context.Background()

	state, err := svc.TurnOn(ctx, "dev-1")
	require.NoError(t, err)
	require.Equal(t, domain.PowerOn, state)

	state, err = svc.TurnOff(ctx, "dev-1")
	require.NoError(t, err)
	require.Equal(t, domain.PowerOff, state)
}

func TestGetLastTemperatureCacheFallback(t *testing.T) {
	reportedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ctrl := &fakeController{temperature: 21.5, reportedAt: reportedAt.Unix()}
	kv := store.NewMemoryKV()
	svc := NewRecirculatorService(ctrl, kv, testLogger())
	ctx := context.Background()

	reading, err := svc.GetLastTemperature(ctx, "dev-1")
	require.NoError(t, err)
	require.Equal(t, 21.5, reading.Value)
	require.True(t, reading.Timestamp.Equal(reportedAt))

	// 设备云故障：回退到上一次缓存的读数
	ctrl.tempErr = errors.New("device cloud down")
	cached, err := svc.GetLastTemperature(ctx, "dev-1")
	require.NoError(t, err)
	require.Equal(t, 21.5, cached.Value)

	// 无缓存且设备云故障：错误透传
	_, err = svc.GetLastTemperature(ctx, "dev-2")
	require.Error(t, err)
}

func TestGetStatusShapesDomainModel(t *testing.T) {
	ctrl := &fakeController{temperature: 19, reportedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC).Unix()}
	svc := NewRecirculatorService(ctrl, store.NewMemoryKV(), testLogger())

	st, err := svc.GetStatus(context.Background(), "dev-1")
	require.NoError(t, err)
	require.Equal(t, "dev-1", st.DeviceID)
	require.Equal(t, domain.PowerOff, st.PowerState)
	require.Equal(t, 28.0, st.MaxTemperature)
	require.Equal(t, 19.0, st.LastTemperature.Value)
	require.True(t, st.Online)
}

// 设备云 HTTP 客户端：信封解析与错误处理
func TestRecirculatorClientEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch r.URL.Path {
		case "/recirculator/getState":
			// 故意不设置 Content-Type，模拟缺头的网关响应
			_ = json.NewEncoder(w).Encode(DeviceCloudResponse{
				Status: 0,
				Data:   json.RawMessage(`{"deviceId":"dev-1","power":"on","maxTemperature":27}`),
			})
		case "/recirculator/setMaxTemperature":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(DeviceCloudResponse{Status: 1001, Msg: "device offline"})
		case "/recirculator/getStatus":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>bad gateway page</html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewRecirculatorClient(srv.URL, "test-key", 5*time.Second, 0, testLogger())

	state, err := client.GetState("dev-1")
	require.NoError(t, err)
	require.Equal(t, "on", state.Power)
	require.Equal(t, 27.0, state.MaxTemperature)

	// 信封 status != 0 → 错误
	err = client.SetMaxTemperature("dev-1", 30)
	require.Error(t, err)
	require.Contains(t, err.Error(), "device offline")

	// 非 JSON 响应体 → 信封解析错误
	_, err = client.GetStatus("dev-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid device cloud envelope")

	// HTTP 4xx → 错误
	_, err = client.GetLastTemperature("dev-1")
	require.Error(t, err)
}
