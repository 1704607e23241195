package service

import (
	"context"
	"time"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvitationService 家庭邀请服务
// 状态迁移：pending → accepted | declined | expired，单向
type InvitationService struct {
	invitations repository.InvitationsRepository
	members     repository.HouseholdUsersRepository
	users       repository.UsersRepository
	uow         repository.UnitOfWork
	ttl         time.Duration
	logger      *zap.Logger
}

// NewInvitationService 创建家庭邀请服务
func NewInvitationService(
	invitations repository.InvitationsRepository,
	members repository.HouseholdUsersRepository,
	users repository.UsersRepository,
	uow repository.UnitOfWork,
	ttl time.Duration,
	logger *zap.Logger,
) *InvitationService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &InvitationService{
		invitations: invitations,
		members:     members,
		users:       users,
		uow:         uow,
		ttl:         ttl,
		logger:      logger,
	}
}

// InviteRequest 邀请请求
type InviteRequest struct {
	HouseholdID  string `json:"household_id"`
	InvitedEmail string `json:"invited_email"`
}

// Invite 创建邀请（需为该家庭 admin）
// 邮件投递由外部协作方处理，此处只负责生成带 TTL 的唯一 token
func (s *InvitationService) Invite(ctx context.Context, userID string, req InviteRequest) (*domain.HouseholdInvitation, error) {
	m, err := s.members.GetMembership(ctx, req.HouseholdID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ForbiddenError("not a member of household %s", req.HouseholdID)
	}
	if m.Role != domain.RoleAdmin {
		return nil, domain.ForbiddenError("only admins can invite")
	}
	if !domain.ValidEmail(req.InvitedEmail) {
		return nil, domain.BadRequestError("invalid email: %s", req.InvitedEmail)
	}

	inv := &domain.HouseholdInvitation{
		HouseholdID:  req.HouseholdID,
		InvitedEmail: req.InvitedEmail,
		InviterID:    userID,
		Token:        uuid.NewString(),
		Status:       domain.InvitationPending,
		ExpiresAt:    time.Now().UTC().Add(s.ttl),
	}
	id, err := s.invitations.CreateInvitation(ctx, inv)
	if err != nil {
		return nil, err
	}
	inv.InvitationID = id

	s.logger.Info("Invitation created",
		zap.String("invitation_id", id),
		zap.String("household_id", req.HouseholdID),
	)
	return inv, nil
}

// ListInvitations 列出家庭邀请（需为该家庭 admin）
// 列出前先把已过期的 pending 邀请落为 expired，避免返回幽灵邀请
func (s *InvitationService) ListInvitations(ctx context.Context, userID, householdID string) ([]*domain.HouseholdInvitation, error) {
	m, err := s.members.GetMembership(ctx, householdID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ForbiddenError("not a member of household %s", householdID)
	}
	if m.Role != domain.RoleAdmin {
		return nil, domain.ForbiddenError("only admins can list invitations")
	}
	if _, err := s.invitations.ExpirePendingBefore(ctx, time.Now().UTC()); err != nil {
		s.logger.Warn("Failed to expire stale invitations", zap.Error(err))
	}
	return s.invitations.ListInvitations(ctx, householdID)
}

// resolvePending 按 token 解析邀请并校验其仍可处理
func (s *InvitationService) resolvePending(ctx context.Context, r *repository.Repositories, token string, now time.Time) (*domain.HouseholdInvitation, error) {
	inv, err := r.Invitations.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.NotFoundError("invitation not found")
	}
	if inv.Expired(now) {
		// 状态字段滞后时顺带落库
		if inv.Status == domain.InvitationPending {
			_ = r.Invitations.UpdateInvitationStatus(ctx, inv.InvitationID, domain.InvitationExpired)
		}
		return nil, domain.BadRequestError("invitation expired")
	}
	if inv.Status != domain.InvitationPending {
		return nil, domain.BadRequestError("invitation already %s", inv.Status)
	}
	return inv, nil
}

// Accept 接受邀请：状态更新 + 成员写入在同一事务内
func (s *InvitationService) Accept(ctx context.Context, userID, token string) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.UnauthorizedError("unknown user")
	}

	now := time.Now().UTC()
	return s.uow.Execute(ctx, func(r *repository.Repositories) error {
		inv, err := s.resolvePending(ctx, r, token, now)
		if err != nil {
			return err
		}
		if inv.InvitedEmail != user.Email {
			return domain.ForbiddenError("invitation was issued to a different email")
		}

		existing, err := r.HouseholdUsers.GetMembership(ctx, inv.HouseholdID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.BadRequestError("already a member of household %s", inv.HouseholdID)
		}

		if err := r.HouseholdUsers.AddMember(ctx, &domain.HouseholdUser{
			HouseholdID: inv.HouseholdID,
			UserID:      userID,
			Role:        domain.RoleMember,
		}); err != nil {
			return err
		}
		return r.Invitations.UpdateInvitationStatus(ctx, inv.InvitationID, domain.InvitationAccepted)
	})
}

// Decline 拒绝邀请
func (s *InvitationService) Decline(ctx context.Context, userID, token string) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.UnauthorizedError("unknown user")
	}

	now := time.Now().UTC()
	return s.uow.Execute(ctx, func(r *repository.Repositories) error {
		inv, err := s.resolvePending(ctx, r, token, now)
		if err != nil {
			return err
		}
		if inv.InvitedEmail != user.Email {
			return domain.ForbiddenError("invitation was issued to a different email")
		}
		return r.Invitations.UpdateInvitationStatus(ctx, inv.InvitationID, domain.InvitationDeclined)
	})
}
