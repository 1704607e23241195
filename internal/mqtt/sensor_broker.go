package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"
	"hydrosense-data/internal/service"

	"go.uber.org/zap"
)

// SensorBroker 水表传感器 MQTT 消息处理模块
// 传感器固件按批次上报已切分好的用水事件；每条消息是一个数组
type SensorBroker struct {
	events     *service.EventService
	households repository.HouseholdsRepository
	logger     *zap.Logger
}

// NewSensorBroker 创建传感器 Broker
func NewSensorBroker(
	events *service.EventService,
	households repository.HouseholdsRepository,
	logger *zap.Logger,
) *SensorBroker {
	return &SensorBroker{
		events:     events,
		households: households,
		logger:     logger,
	}
}

// SensorEventMessage 传感器上报的单条用水事件
// 时间为 Unix 秒；category 由固件侧的流量特征分类器给出，
// 识别不了的归 unknown，由用户后续重新分类
type SensorEventMessage struct {
	SensorID  string  `json:"sensorId"`
	Category  string  `json:"category"`
	StartTime int64   `json:"startTime"`
	EndTime   int64   `json:"endTime"`
	Liters    float64 `json:"liters"`
	TagName   string  `json:"tagName,omitempty"`
}

// HandleMessage 处理 MQTT 消息
// 单条事件失败只跳过该条，不中断批次
func (b *SensorBroker) HandleMessage(topic string, payload []byte) error {
	var messages []SensorEventMessage
	if err := json.Unmarshal(payload, &messages); err != nil {
		// 兼容单对象格式
		var single SensorEventMessage
		if err2 := json.Unmarshal(payload, &single); err2 != nil {
			return fmt.Errorf("failed to unmarshal sensor message: %w", err)
		}
		messages = []SensorEventMessage{single}
	}

	ctx := context.Background()
	for i := range messages {
		if err := b.processMessage(ctx, &messages[i]); err != nil {
			b.logger.Warn("Skipping sensor event",
				zap.String("topic", topic),
				zap.String("sensor_id", messages[i].SensorID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// processMessage 处理单条传感器事件
func (b *SensorBroker) processMessage(ctx context.Context, msg *SensorEventMessage) error {
	if !domain.ValidSensorID(msg.SensorID) {
		return fmt.Errorf("invalid sensor id %q", msg.SensorID)
	}

	household, err := b.households.GetHouseholdBySensor(ctx, msg.SensorID)
	if err != nil {
		return fmt.Errorf("failed to resolve sensor %s: %w", msg.SensorID, err)
	}
	if household == nil {
		return fmt.Errorf("no household registered for sensor %s", msg.SensorID)
	}

	category := domain.Category(msg.Category)
	if !category.Valid() {
		category = domain.CategoryUnknown
	}

	start := time.Unix(msg.StartTime, 0).UTC()
	end := time.Unix(msg.EndTime, 0).UTC()
	event := &domain.Event{
		HouseholdID:         household.HouseholdID,
		Category:            category,
		StartTimestamp:      start,
		EndTimestamp:        end,
		DurationInSeconds:   int(end.Sub(start).Seconds()),
		ConsumptionInLiters: msg.Liters,
		TagName:             msg.TagName,
	}

	eventID, err := b.events.IngestEvent(ctx, event)
	if err != nil {
		return err
	}

	b.logger.Debug("Sensor event ingested",
		zap.String("event_id", eventID),
		zap.String("household_id", household.HouseholdID),
		zap.String("category", string(category)),
	)
	return nil
}
