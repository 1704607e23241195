package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DeviceCloudResponse 设备云 API 响应信封
type DeviceCloudResponse struct {
	Status int             `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

// RecirculatorController 设备控制协作方接口（Service 依赖抽象，便于测试替身）
type RecirculatorController interface {
	GetState(deviceID string) (*DeviceState, error)
	SetPower(deviceID string, on bool) (*DeviceState, error)
	SetMaxTemperature(deviceID string, maxTemperature float64) error
	GetLastTemperature(deviceID string) (*DeviceTemperature, error)
	GetStatus(deviceID string) (*DeviceStatusPayload, error)
}

// DeviceState 设备云上报的电源状态
type DeviceState struct {
	DeviceID       string  `json:"deviceId"`
	Power          string  `json:"power"` // "on" | "off"
	MaxTemperature float64 `json:"maxTemperature"`
}

// DeviceTemperature 设备云上报的温度读数
type DeviceTemperature struct {
	DeviceID    string  `json:"deviceId"`
	Temperature float64 `json:"temperature"` // [0,100]°C
	ReportedAt  int64   `json:"reportedAt"`  // Unix 秒
}

// DeviceStatusPayload 设备云上报的完整状态
type DeviceStatusPayload struct {
	DeviceID       string  `json:"deviceId"`
	Power          string  `json:"power"`
	MaxTemperature float64 `json:"maxTemperature"`
	Temperature    float64 `json:"temperature"`
	ReportedAt     int64   `json:"reportedAt"`
	Online         bool    `json:"online"`
}

// RecirculatorClient 循环泵设备云 API 客户端
// 超时/重试可配置（无规范默认值，按配置注入）
type RecirculatorClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewRecirculatorClient 创建设备云客户端
func NewRecirculatorClient(baseURL, apiKey string, timeout time.Duration, retryCount int, logger *zap.Logger) *RecirculatorClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader("X-Api-Key", apiKey)
	}

	return &RecirculatorClient{
		httpClient: client,
		logger:     logger,
	}
}

// 确保实现了接口
var _ RecirculatorController = (*RecirculatorClient)(nil)

// call 调用设备云 API 并解析响应信封
// 信封自行反序列化：部分网关响应缺 Content-Type，不能依赖 SetResult
func (c *RecirculatorClient) call(path string, body any, out any) error {
	resp, err := c.httpClient.R().
		SetBody(body).
		Post(path)
	if err != nil {
		c.logger.Error("Device cloud call failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("failed to call device cloud: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("device cloud returned HTTP %d", resp.StatusCode())
	}
	var response DeviceCloudResponse
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		return fmt.Errorf("invalid device cloud envelope: %w", err)
	}
	if response.Status != 0 {
		c.logger.Error("Device cloud returned error",
			zap.String("path", path),
			zap.Int("status", response.Status),
			zap.String("msg", response.Msg),
		)
		return fmt.Errorf("device cloud error: %s (status: %d)", response.Msg, response.Status)
	}
	if out != nil {
		if err := json.Unmarshal(response.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal device cloud response: %w", err)
		}
	}
	return nil
}

func (c *RecirculatorClient) GetState(deviceID string) (*DeviceState, error) {
	var state DeviceState
	err := c.call("/recirculator/getState", map[string]any{"deviceId": deviceID}, &state)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *RecirculatorClient) SetPower(deviceID string, on bool) (*DeviceState, error) {
	power := "off"
	if on {
		power = "on"
	}
	var state DeviceState
	err := c.call("/recirculator/setPower", map[string]any{"deviceId": deviceID, "power": power}, &state)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *RecirculatorClient) SetMaxTemperature(deviceID string, maxTemperature float64) error {
	return c.call("/recirculator/setMaxTemperature", map[string]any{
		"deviceId":       deviceID,
		"maxTemperature": maxTemperature,
	}, nil)
}

func (c *RecirculatorClient) GetLastTemperature(deviceID string) (*DeviceTemperature, error) {
	var t DeviceTemperature
	err := c.call("/recirculator/getLastTemperature", map[string]any{"deviceId": deviceID}, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *RecirculatorClient) GetStatus(deviceID string) (*DeviceStatusPayload, error) {
	var st DeviceStatusPayload
	err := c.call("/recirculator/getStatus", map[string]any{"deviceId": deviceID}, &st)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
