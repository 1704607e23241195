package service

import (
	"context"
	"encoding/json"
	"time"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/store"

	"go.uber.org/zap"
)

// RecirculatorService 循环泵服务
// 薄编排层：校验后转发到设备控制协作方，并把结果整形为领域模型
// 最近温度读数写入 KV 缓存，设备云不可达时可用作降级数据
type RecirculatorService struct {
	controller RecirculatorController
	kv         store.KV
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewRecirculatorService 创建循环泵服务
func NewRecirculatorService(controller RecirculatorController, kv store.KV, logger *zap.Logger) *RecirculatorService {
	return &RecirculatorService{
		controller: controller,
		kv:         kv,
		cacheTTL:   5 * time.Minute,
		logger:     logger,
	}
}

func temperatureCacheKey(deviceID string) string {
	return "recirculator:last-temperature:" + deviceID
}

func powerState(power string) domain.PowerState {
	if power == "on" {
		return domain.PowerOn
	}
	return domain.PowerOff
}

// GetState 查询电源状态
func (s *RecirculatorService) GetState(_ context.Context, deviceID string) (domain.PowerState, error) {
	if deviceID == "" {
		return "", domain.BadRequestError("device_id is required")
	}
	state, err := s.controller.GetState(deviceID)
	if err != nil {
		return "", err
	}
	return powerState(state.Power), nil
}

// TurnOn 开机
func (s *RecirculatorService) TurnOn(_ context.Context, deviceID string) (domain.PowerState, error) {
	if deviceID == "" {
		return "", domain.BadRequestError("device_id is required")
	}
	state, err := s.controller.SetPower(deviceID, true)
	if err != nil {
		return "", err
	}
	return powerState(state.Power), nil
}

// TurnOff 关机
func (s *RecirculatorService) TurnOff(_ context.Context, deviceID string) (domain.PowerState, error) {
	if deviceID == "" {
		return "", domain.BadRequestError("device_id is required")
	}
	state, err := s.controller.SetPower(deviceID, false)
	if err != nil {
		return "", err
	}
	return powerState(state.Power), nil
}

// SetMaxTemperature 设置目标温度上限
// [20,35]°C 之外先行拒绝，不发起设备调用
func (s *RecirculatorService) SetMaxTemperature(_ context.Context, deviceID string, maxTemperature float64) error {
	if deviceID == "" {
		return domain.BadRequestError("device_id is required")
	}
	if !domain.ValidMaxTemperature(maxTemperature) {
		return domain.BadRequestError("max_temperature must be within [%.0f, %.0f]°C, got %.1f",
			domain.MinMaxTemperature, domain.MaxMaxTemperature, maxTemperature)
	}
	return s.controller.SetMaxTemperature(deviceID, maxTemperature)
}

// GetLastTemperature 查询最近温度读数
// 成功时写缓存；设备云出错时回退到缓存值
func (s *RecirculatorService) GetLastTemperature(ctx context.Context, deviceID string) (*domain.TemperatureReading, error) {
	if deviceID == "" {
		return nil, domain.BadRequestError("device_id is required")
	}

	t, err := s.controller.GetLastTemperature(deviceID)
	if err != nil {
		if cached := s.cachedTemperature(ctx, deviceID); cached != nil {
			s.logger.Warn("Device cloud unavailable, serving cached temperature",
				zap.String("device_id", deviceID),
				zap.Error(err),
			)
			return cached, nil
		}
		return nil, err
	}

	reading := &domain.TemperatureReading{
		Value:     t.Temperature,
		Timestamp: time.Unix(t.ReportedAt, 0).UTC(),
	}
	if payload, err := json.Marshal(reading); err == nil {
		_ = s.kv.Set(ctx, temperatureCacheKey(deviceID), string(payload), s.cacheTTL)
	}
	return reading, nil
}

func (s *RecirculatorService) cachedTemperature(ctx context.Context, deviceID string) *domain.TemperatureReading {
	raw, err := s.kv.Get(ctx, temperatureCacheKey(deviceID))
	if err != nil {
		return nil
	}
	var reading domain.TemperatureReading
	if err := json.Unmarshal([]byte(raw), &reading); err != nil {
		return nil
	}
	return &reading
}

// GetStatus 查询完整状态
func (s *RecirculatorService) GetStatus(_ context.Context, deviceID string) (*domain.RecirculatorStatus, error) {
	if deviceID == "" {
		return nil, domain.BadRequestError("device_id is required")
	}
	st, err := s.controller.GetStatus(deviceID)
	if err != nil {
		return nil, err
	}
	return &domain.RecirculatorStatus{
		DeviceID:       st.DeviceID,
		PowerState:     powerState(st.Power),
		MaxTemperature: st.MaxTemperature,
		LastTemperature: domain.TemperatureReading{
			Value:     st.Temperature,
			Timestamp: time.Unix(st.ReportedAt, 0).UTC(),
		},
		Online: st.Online,
	}, nil
}
