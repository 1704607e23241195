package repository

import (
	"context"

	"hydrosense-data/internal/domain"
)

// HouseholdPatch 家庭部分更新字段（nil 表示不修改）
type HouseholdPatch struct {
	Name      *string
	Residents *int
	SensorID  *string
	Street    *string
	City      *string
	ZipCode   *string
	Country   *string
}

// HouseholdsRepository 家庭Repository接口
// 错误策略：查不到返回 (nil, nil)，不抛错误；约束冲突由 Service 层转成领域错误
type HouseholdsRepository interface {
	// GetHousehold 按 household_id 查询
	GetHousehold(ctx context.Context, householdID string) (*domain.Household, error)

	// GetHouseholdBySensor 按传感器ID查询（传感器摄取用）
	GetHouseholdBySensor(ctx context.Context, sensorID string) (*domain.Household, error)

	// ListHouseholdsForUser 查询用户所属的全部家庭（按名称升序）
	ListHouseholdsForUser(ctx context.Context, userID string) ([]*domain.Household, error)

	// CreateHousehold 创建家庭，返回新 household_id
	CreateHousehold(ctx context.Context, h *domain.Household) (string, error)

	// UpdateHousehold 部分更新
	UpdateHousehold(ctx context.Context, householdID string, patch HouseholdPatch) error

	// DeleteHousehold 删除家庭
	// household_users/tags/events/household_invitations 由 DB 级联删除
	DeleteHousehold(ctx context.Context, householdID string) error
}

// HouseholdUsersRepository 家庭成员Repository接口
type HouseholdUsersRepository interface {
	// GetMembership 查询成员关系，查不到返回 (nil, nil)
	GetMembership(ctx context.Context, householdID, userID string) (*domain.HouseholdUser, error)

	// ListMembers 查询家庭全部成员
	ListMembers(ctx context.Context, householdID string) ([]*domain.HouseholdUser, error)

	// AddMember 添加成员，(household_id, user_id) 重复时报错
	AddMember(ctx context.Context, m *domain.HouseholdUser) error

	// RemoveMember 移除成员
	RemoveMember(ctx context.Context, householdID, userID string) error

	// CountAdmins 统计 admin 数量（"每个家庭至少一名 admin" 在 Service 层校验）
	CountAdmins(ctx context.Context, householdID string) (int, error)
}
