package domain

import "time"

// InvitationStatus 邀请状态，pending → accepted|declined|expired 单向迁移
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

// HouseholdInvitation 家庭邀请（对应 app.household_invitations 表）
// token 全局唯一
type HouseholdInvitation struct {
	InvitationID string           `db:"invitation_id"`
	HouseholdID  string           `db:"household_id"`
	InvitedEmail string           `db:"invited_email"`
	InviterID    string           `db:"inviter_id"` // 邀请人，用户删除时置 NULL
	Token        string           `db:"token"`
	Status       InvitationStatus `db:"status"`
	ExpiresAt    time.Time        `db:"expires_at"`
	CreatedAt    time.Time        `db:"created_at"`
}

// Expired 判断邀请是否已过期（status 字段可能尚未同步）
func (i *HouseholdInvitation) Expired(now time.Time) bool {
	return i.Status == InvitationExpired || now.After(i.ExpiresAt)
}
