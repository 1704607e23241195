package repository

import (
	"context"

	"hydrosense-data/internal/domain"
)

// TagsRepository 标签Repository接口
// 所有操作按 household_id 限定范围
// (household_id, category, name) 唯一性由 Service 层创建前检查
type TagsRepository interface {
	// GetTag 按 tag_id 查询，查不到返回 (nil, nil)
	GetTag(ctx context.Context, householdID, tagID string) (*domain.Tag, error)

	// GetTagByName 按 (category, name) 查询
	GetTagByName(ctx context.Context, householdID string, category domain.Category, name string) (*domain.Tag, error)

	// ListTagsByCategory 查询某类别下的全部标签（按名称升序）
	ListTagsByCategory(ctx context.Context, householdID string, category domain.Category) ([]*domain.Tag, error)

	// CreateTag 创建标签，返回新 tag_id
	CreateTag(ctx context.Context, tag *domain.Tag) (string, error)

	// UpdateTag 按 tag_id 更新名称/类别
	// 旧 (category, name) 关联的 Event 级联删除由 Service 层在同一事务内处理
	UpdateTag(ctx context.Context, tag *domain.Tag) error

	// DeleteTag 删除标签
	DeleteTag(ctx context.Context, householdID, tagID string) error
}
