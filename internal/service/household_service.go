package service

import (
	"context"
	"strings"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"

	"go.uber.org/zap"
)

// HouseholdService 家庭服务
type HouseholdService struct {
	households repository.HouseholdsRepository
	members    repository.HouseholdUsersRepository
	uow        repository.UnitOfWork
	logger     *zap.Logger
}

// NewHouseholdService 创建家庭服务
func NewHouseholdService(
	households repository.HouseholdsRepository,
	members repository.HouseholdUsersRepository,
	uow repository.UnitOfWork,
	logger *zap.Logger,
) *HouseholdService {
	return &HouseholdService{
		households: households,
		members:    members,
		uow:        uow,
		logger:     logger,
	}
}

// requireMembership 校验用户是该家庭成员，返回成员关系
func (s *HouseholdService) requireMembership(ctx context.Context, householdID, userID string) (*domain.HouseholdUser, error) {
	m, err := s.members.GetMembership(ctx, householdID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ForbiddenError("not a member of household %s", householdID)
	}
	return m, nil
}

// ListHouseholds 查询用户所属的全部家庭
func (s *HouseholdService) ListHouseholds(ctx context.Context, userID string) ([]*domain.Household, error) {
	return s.households.ListHouseholdsForUser(ctx, userID)
}

// GetHousehold 查询单个家庭（需为成员）
func (s *HouseholdService) GetHousehold(ctx context.Context, householdID, userID string) (*domain.Household, error) {
	if _, err := s.requireMembership(ctx, householdID, userID); err != nil {
		return nil, err
	}
	h, err := s.households.GetHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, domain.NotFoundError("household %s not found", householdID)
	}
	return h, nil
}

// CreateHouseholdRequest 创建家庭请求
type CreateHouseholdRequest struct {
	Name      string `json:"name"`
	Residents int    `json:"residents"`
	SensorID  string `json:"sensor_id"`
	Street    string `json:"street"`
	City      string `json:"city"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

// CreateHousehold 创建家庭，创建者在同一事务内成为 admin 成员
// "每个家庭至少一名 admin" 的不变式由此建立
func (s *HouseholdService) CreateHousehold(ctx context.Context, userID string, req CreateHouseholdRequest) (*domain.Household, error) {
	h := &domain.Household{
		Name:      strings.TrimSpace(req.Name),
		Residents: req.Residents,
		SensorID:  req.SensorID,
		Street:    req.Street,
		City:      req.City,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Household
	err := s.uow.Execute(ctx, func(r *repository.Repositories) error {
		id, err := r.Households.CreateHousehold(ctx, h)
		if err != nil {
			return err
		}
		if err := r.HouseholdUsers.AddMember(ctx, &domain.HouseholdUser{
			HouseholdID: id,
			UserID:      userID,
			Role:        domain.RoleAdmin,
		}); err != nil {
			return err
		}
		created, err = r.Households.GetHousehold(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Household created",
		zap.String("household_id", created.HouseholdID),
		zap.String("user_id", userID),
	)
	return created, nil
}

// UpdateHousehold 部分更新（需为成员）
func (s *HouseholdService) UpdateHousehold(ctx context.Context, householdID, userID string, patch repository.HouseholdPatch) (*domain.Household, error) {
	if _, err := s.requireMembership(ctx, householdID, userID); err != nil {
		return nil, err
	}
	existing, err := s.households.GetHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.NotFoundError("household %s not found", householdID)
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domain.BadRequestError("household name is required")
	}
	if patch.Residents != nil && *patch.Residents < 1 {
		return nil, domain.BadRequestError("residents must be >= 1, got %d", *patch.Residents)
	}
	if patch.SensorID != nil && !domain.ValidSensorID(*patch.SensorID) {
		return nil, domain.BadRequestError("sensor_id must be 12 hex digits")
	}

	if err := s.households.UpdateHousehold(ctx, householdID, patch); err != nil {
		return nil, err
	}
	return s.households.GetHousehold(ctx, householdID)
}

// DeleteHousehold 删除家庭（仅 admin）
// 成员/标签/事件/邀请级联删除
func (s *HouseholdService) DeleteHousehold(ctx context.Context, householdID, userID string) error {
	m, err := s.requireMembership(ctx, householdID, userID)
	if err != nil {
		return err
	}
	if m.Role != domain.RoleAdmin {
		return domain.ForbiddenError("only admins can delete a household")
	}

	if err := s.households.DeleteHousehold(ctx, householdID); err != nil {
		return err
	}
	s.logger.Info("Household deleted",
		zap.String("household_id", householdID),
		zap.String("user_id", userID),
	)
	return nil
}

// Leave 退出家庭
// 最后一名 admin 不允许退出（保持"至少一名 admin"不变式）
func (s *HouseholdService) Leave(ctx context.Context, householdID, userID string) error {
	m, err := s.requireMembership(ctx, householdID, userID)
	if err != nil {
		return err
	}
	if m.Role == domain.RoleAdmin {
		n, err := s.members.CountAdmins(ctx, householdID)
		if err != nil {
			return err
		}
		if n <= 1 {
			return domain.ForbiddenError("cannot leave: household needs at least one admin")
		}
	}
	return s.members.RemoveMember(ctx, householdID, userID)
}
