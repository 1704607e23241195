package domain

import "time"

// PowerState 循环泵电源状态
type PowerState string

const (
	PowerOn  PowerState = "ON"
	PowerOff PowerState = "OFF"
)

// 循环泵温度约束（°C）
const (
	MinTemperature    = 0.0
	MaxTemperature    = 100.0
	MinMaxTemperature = 20.0
	MaxMaxTemperature = 35.0
)

// ValidMaxTemperature 目标温度上限必须落在 [20,35]°C
func ValidMaxTemperature(t float64) bool {
	return t >= MinMaxTemperature && t <= MaxMaxTemperature
}

// TemperatureReading 温度读数（设备上报）
type TemperatureReading struct {
	Value     float64   `json:"value"` // [0,100]°C
	Timestamp time.Time `json:"timestamp"`
}

// RecirculatorStatus 循环泵完整状态
type RecirculatorStatus struct {
	DeviceID        string             `json:"device_id"`
	PowerState      PowerState         `json:"power_state"`
	MaxTemperature  float64            `json:"max_temperature"`
	LastTemperature TemperatureReading `json:"last_temperature"`
	Online          bool               `json:"online"`
}
