package domain

import "time"

// Event 用水事件领域模型（对应 app.events 表）
// 由传感器摄取创建，重新分类时修改，所属 Tag 删除时级联删除
type Event struct {
	EventID             string    `db:"event_id"`
	HouseholdID         string    `db:"household_id"`
	Category            Category  `db:"category"`
	StartTimestamp      time.Time `db:"start_timestamp"`
	EndTimestamp        time.Time `db:"end_timestamp"`
	DurationInSeconds   int       `db:"duration_seconds"`   // >= 0
	ConsumptionInLiters float64   `db:"consumption_liters"` // >= 0
	TagName             string    `db:"tag_name"`           // 可选，按值引用 Tag
	Notes               string    `db:"notes"`              // 可选
	CreatedAt           time.Time `db:"created_at"`
}

// Validate 校验 Event 不变式
func (e *Event) Validate() error {
	if !e.Category.Valid() {
		return BadRequestError("invalid category: %s", e.Category)
	}
	if e.EndTimestamp.Before(e.StartTimestamp) {
		return BadRequestError("end_timestamp before start_timestamp")
	}
	if e.DurationInSeconds < 0 {
		return BadRequestError("duration_seconds must be >= 0")
	}
	if e.ConsumptionInLiters < 0 {
		return BadRequestError("consumption_liters must be >= 0")
	}
	return nil
}
