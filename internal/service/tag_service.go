package service

import (
	"context"
	"strings"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"

	"go.uber.org/zap"
)

// TagService 标签服务
// Event 按值引用 Tag，所以改名/改类别/删除都要在同一事务内级联处理旧事件
type TagService struct {
	tags    repository.TagsRepository
	members repository.HouseholdUsersRepository
	uow     repository.UnitOfWork
	logger  *zap.Logger
}

// NewTagService 创建标签服务
func NewTagService(
	tags repository.TagsRepository,
	members repository.HouseholdUsersRepository,
	uow repository.UnitOfWork,
	logger *zap.Logger,
) *TagService {
	return &TagService{
		tags:    tags,
		members: members,
		uow:     uow,
		logger:  logger,
	}
}

func (s *TagService) requireMembership(ctx context.Context, householdID, userID string) error {
	m, err := s.members.GetMembership(ctx, householdID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.ForbiddenError("not a member of household %s", householdID)
	}
	return nil
}

// CreateTagRequest 创建标签请求
type CreateTagRequest struct {
	HouseholdID string          `json:"household_id"`
	Category    domain.Category `json:"category"`
	Name        string          `json:"name"`
}

// CreateTag 创建标签
// (household_id, category, name) 重复时拒绝且不产生任何写入
func (s *TagService) CreateTag(ctx context.Context, userID string, req CreateTagRequest) (*domain.Tag, error) {
	if err := s.requireMembership(ctx, req.HouseholdID, userID); err != nil {
		return nil, err
	}

	tag := &domain.Tag{
		HouseholdID: req.HouseholdID,
		Category:    req.Category,
		Name:        strings.TrimSpace(req.Name),
	}
	if err := tag.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.tags.GetTagByName(ctx, req.HouseholdID, tag.Category, tag.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.BadRequestError("tag %q already exists in category %s", tag.Name, tag.Category)
	}

	id, err := s.tags.CreateTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	tag.TagID = id
	return tag, nil
}

// ListTagsByCategory 查询某类别下的全部标签
func (s *TagService) ListTagsByCategory(ctx context.Context, userID, householdID string, category domain.Category) ([]*domain.Tag, error) {
	if err := s.requireMembership(ctx, householdID, userID); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, domain.BadRequestError("invalid category: %s", category)
	}
	return s.tags.ListTagsByCategory(ctx, householdID, category)
}

// UpdateTagRequest 更新标签请求
type UpdateTagRequest struct {
	HouseholdID string          `json:"household_id"`
	TagID       string          `json:"tag_id"`
	Category    domain.Category `json:"category"`
	Name        string          `json:"name"`
}

// UpdateTag 更新标签
// 旧 (category, name) 关联的事件在同一事务内删除；任一步失败则全部回滚
func (s *TagService) UpdateTag(ctx context.Context, userID string, req UpdateTagRequest) (*domain.Tag, error) {
	if err := s.requireMembership(ctx, req.HouseholdID, userID); err != nil {
		return nil, err
	}

	updated := &domain.Tag{
		TagID:       req.TagID,
		HouseholdID: req.HouseholdID,
		Category:    req.Category,
		Name:        strings.TrimSpace(req.Name),
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	err := s.uow.Execute(ctx, func(r *repository.Repositories) error {
		existing, err := r.Tags.GetTag(ctx, req.HouseholdID, req.TagID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.NotFoundError("tag %s not found", req.TagID)
		}

		if existing.Category != updated.Category || existing.Name != updated.Name {
			// 改名后的 (category, name) 不能与现有标签冲突
			dup, err := r.Tags.GetTagByName(ctx, req.HouseholdID, updated.Category, updated.Name)
			if err != nil {
				return err
			}
			if dup != nil && dup.TagID != req.TagID {
				return domain.BadRequestError("tag %q already exists in category %s", updated.Name, updated.Category)
			}

			deleted, err := r.Events.DeleteEventsByTag(ctx, req.HouseholdID, existing.Category, existing.Name)
			if err != nil {
				return err
			}
			if deleted > 0 {
				s.logger.Info("Cascaded event deletion on tag update",
					zap.String("tag_id", req.TagID),
					zap.Int("deleted_events", deleted),
				)
			}
		}

		return r.Tags.UpdateTag(ctx, updated)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTag 删除标签，按值引用它的事件在同一事务内删除
func (s *TagService) DeleteTag(ctx context.Context, userID, householdID, tagID string) error {
	if err := s.requireMembership(ctx, householdID, userID); err != nil {
		return err
	}

	return s.uow.Execute(ctx, func(r *repository.Repositories) error {
		existing, err := r.Tags.GetTag(ctx, householdID, tagID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.NotFoundError("tag %s not found", tagID)
		}

		if _, err := r.Events.DeleteEventsByTag(ctx, householdID, existing.Category, existing.Name); err != nil {
			return err
		}
		return r.Tags.DeleteTag(ctx, householdID, tagID)
	})
}
