package domain

import (
	"regexp"
	"strings"
	"time"
)

// sensorIDPattern 水表传感器ID格式（12位十六进制，类似MAC地址去掉分隔符）
var sensorIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{12}$`)

// ValidSensorID 校验传感器ID格式
func ValidSensorID(id string) bool {
	return sensorIDPattern.MatchString(id)
}

// Household 家庭领域模型（对应 app.households 表）
// Household 是 Tag/HouseholdUser/Event 的聚合根，删除时级联
type Household struct {
	HouseholdID string `db:"household_id"`
	Name        string `db:"name"`
	Residents   int    `db:"residents"` // 常住人数，>= 1
	SensorID    string `db:"sensor_id"` // 12位十六进制
	// 地址字段（可选）
	Street  string `db:"street"`
	City    string `db:"city"`
	ZipCode string `db:"zip_code"`
	Country string `db:"country"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Validate 校验 Household 不变式
func (h *Household) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return BadRequestError("household name is required")
	}
	if h.Residents < 1 {
		return BadRequestError("residents must be >= 1, got %d", h.Residents)
	}
	if !ValidSensorID(h.SensorID) {
		return BadRequestError("sensor_id must be 12 hex digits")
	}
	return nil
}

// HouseholdRole 家庭成员角色
type HouseholdRole string

const (
	RoleAdmin  HouseholdRole = "admin"
	RoleMember HouseholdRole = "member"
)

// Valid 校验角色取值
func (r HouseholdRole) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// HouseholdUser 家庭成员关系（对应 app.household_users 表）
// (household_id, user_id) 唯一
type HouseholdUser struct {
	HouseholdID string        `db:"household_id"`
	UserID      string        `db:"user_id"`
	Role        HouseholdRole `db:"role"`
	CreatedAt   time.Time     `db:"created_at"`
}
