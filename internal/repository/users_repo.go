package repository

import (
	"context"
	"time"

	"hydrosense-data/internal/domain"
)

// UsersRepository 用户Repository接口（auth.users 表）
// 凭证为 sha256 哈希字节（对齐前端 crypto 约定），Repository 不做明文处理
type UsersRepository interface {
	// GetUser 按 user_id 查询，查不到返回 (nil, nil)
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmail 按邮箱查询（email 全局唯一）
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetLoginUser 按 account_hash 查询用户及其 password_hash（登录用）
	GetLoginUser(ctx context.Context, accountHash []byte) (*domain.User, []byte, error)

	// CreateUser 创建用户（注册流程），返回新 user_id
	CreateUser(ctx context.Context, u *domain.User, accountHash, passwordHash []byte) (string, error)

	// UpdateLocale 更新用户语言偏好
	UpdateLocale(ctx context.Context, userID, locale string) error
}

// InvitationsRepository 家庭邀请Repository接口
type InvitationsRepository interface {
	// GetInvitation 按 invitation_id 查询，查不到返回 (nil, nil)
	GetInvitation(ctx context.Context, invitationID string) (*domain.HouseholdInvitation, error)

	// GetInvitationByToken 按 token 查询（token 全局唯一）
	GetInvitationByToken(ctx context.Context, token string) (*domain.HouseholdInvitation, error)

	// ListInvitations 查询家庭的全部邀请（按创建时间降序）
	ListInvitations(ctx context.Context, householdID string) ([]*domain.HouseholdInvitation, error)

	// CreateInvitation 创建邀请，返回新 invitation_id
	CreateInvitation(ctx context.Context, inv *domain.HouseholdInvitation) (string, error)

	// UpdateInvitationStatus 更新邀请状态（状态迁移合法性由 Service 层校验）
	UpdateInvitationStatus(ctx context.Context, invitationID string, status domain.InvitationStatus) error

	// ExpirePendingBefore 把 expires_at 早于 now 的 pending 邀请批量置为 expired，返回条数
	ExpirePendingBefore(ctx context.Context, now time.Time) (int, error)
}
