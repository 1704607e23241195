package service

import (
	"context"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"

	"go.uber.org/zap"
)

// EventService 用水事件服务
type EventService struct {
	events  repository.EventsRepository
	tags    repository.TagsRepository
	members repository.HouseholdUsersRepository
	logger  *zap.Logger
}

// NewEventService 创建用水事件服务
func NewEventService(
	events repository.EventsRepository,
	tags repository.TagsRepository,
	members repository.HouseholdUsersRepository,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		events:  events,
		tags:    tags,
		members: members,
		logger:  logger,
	}
}

func (s *EventService) requireMembership(ctx context.Context, householdID, userID string) error {
	m, err := s.members.GetMembership(ctx, householdID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.ForbiddenError("not a member of household %s", householdID)
	}
	return nil
}

// CountLeakEvents 泄漏事件数（看板）
func (s *EventService) CountLeakEvents(ctx context.Context, userID, householdID string) (int, error) {
	if err := s.requireMembership(ctx, householdID, userID); err != nil {
		return 0, err
	}
	return s.events.CountEventsByCategory(ctx, householdID, domain.CategoryLeak)
}

// CountUnknownEvents 未分类事件数（看板）
func (s *EventService) CountUnknownEvents(ctx context.Context, userID, householdID string) (int, error) {
	if err := s.requireMembership(ctx, householdID, userID); err != nil {
		return 0, err
	}
	return s.events.CountEventsByCategory(ctx, householdID, domain.CategoryUnknown)
}

// ListEvents 事件列表（游标分页，无限滚动）
func (s *EventService) ListEvents(ctx context.Context, userID, householdID string, filter repository.EventsFilter, page repository.EventsPage) ([]*domain.Event, string, error) {
	if err := s.requireMembership(ctx, householdID, userID); err != nil {
		return nil, "", err
	}
	return s.events.ListEvents(ctx, householdID, filter, page)
}

// RecategorizeRequest 重新分类请求
type RecategorizeRequest struct {
	HouseholdID string          `json:"household_id"`
	EventID     string          `json:"event_id"`
	Category    domain.Category `json:"category"`
	TagName     string          `json:"tag_name"` // 可选；非空时必须是该类别下已有的标签
}

// Recategorize 重新分类事件（可同时打标签）
func (s *EventService) Recategorize(ctx context.Context, userID string, req RecategorizeRequest) (*domain.Event, error) {
	if err := s.requireMembership(ctx, req.HouseholdID, userID); err != nil {
		return nil, err
	}
	if !req.Category.Valid() {
		return nil, domain.BadRequestError("invalid category: %s", req.Category)
	}

	existing, err := s.events.GetEvent(ctx, req.HouseholdID, req.EventID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.NotFoundError("event %s not found", req.EventID)
	}

	if req.TagName != "" {
		tag, err := s.tags.GetTagByName(ctx, req.HouseholdID, req.Category, req.TagName)
		if err != nil {
			return nil, err
		}
		if tag == nil {
			return nil, domain.BadRequestError("tag %q does not exist in category %s", req.TagName, req.Category)
		}
	}

	if err := s.events.UpdateEventCategory(ctx, req.HouseholdID, req.EventID, req.Category, req.TagName); err != nil {
		return nil, err
	}
	return s.events.GetEvent(ctx, req.HouseholdID, req.EventID)
}

// IngestEvent 传感器摄取写入（MQTT broker 调用，不走会话认证）
// 非法事件由调用方丢弃
func (s *EventService) IngestEvent(ctx context.Context, e *domain.Event) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	return s.events.InsertEvent(ctx, e)
}
