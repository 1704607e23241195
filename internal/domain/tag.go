package domain

import "strings"

// Tag 标签领域模型（对应 app.tags 表）
// (household_id, category, name) 唯一，唯一性在 Service 层创建前检查
// Event 按值引用 Tag（category+name+household），不走外键
type Tag struct {
	TagID       string   `db:"tag_id"`
	HouseholdID string   `db:"household_id"`
	Category    Category `db:"category"`
	Name        string   `db:"name"`
}

// Validate 校验 Tag 不变式
func (t *Tag) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return BadRequestError("tag name is required")
	}
	if !t.Category.Valid() {
		return BadRequestError("invalid category: %s", t.Category)
	}
	return nil
}
