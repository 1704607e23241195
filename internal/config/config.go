package config

import (
	"os"
	"strconv"
)

// Config hydrosense-data（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Session      SessionConfig
	Recirculator RecirculatorConfig
	MQTT         MQTTConfig
}

// DatabaseConfig PostgreSQL 连接配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// SessionConfig 会话配置
type SessionConfig struct {
	TTLSeconds int // 会话有效期（秒）
}

// RecirculatorConfig 循环泵设备云配置
// 超时与重试次数可配置（设备云没有固定的超时约定）
type RecirculatorConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
	RetryCount     int
}

// MQTTConfig MQTT 配置（传感器事件摄取）
type MQTTConfig struct {
	Enabled  bool   // 是否启用传感器摄取（默认 false）
	Broker   string // MQTT Broker 地址（如 "tcp://localhost:1883"）
	ClientID string // 客户端 ID
	Username string // 用户名（可选）
	Password string // 密码（可选）
	Topic    string // 订阅的主题
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true for local dev: if DB is unavailable, hydrosense-data will fall back to memory repos.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "hydrosense")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Session.TTLSeconds = parseInt(getEnv("SESSION_TTL_SECONDS", "86400"), 86400)

	// 循环泵设备云
	cfg.Recirculator.BaseURL = getEnv("RECIRC_BASE_URL", "http://localhost:9000")
	cfg.Recirculator.APIKey = getEnv("RECIRC_API_KEY", "")
	cfg.Recirculator.TimeoutSeconds = parseInt(getEnv("RECIRC_TIMEOUT_SECONDS", "30"), 30)
	cfg.Recirculator.RetryCount = parseInt(getEnv("RECIRC_RETRY_COUNT", "3"), 3)

	// MQTT 配置（传感器事件摄取，默认禁用）
	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "hydrosense-data")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "hydrosense/sensors/+/events")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
