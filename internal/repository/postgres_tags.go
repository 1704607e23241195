package repository

import (
	"context"
	"database/sql"
	"fmt"

	"hydrosense-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresTagsRepository 标签Repository实现
type PostgresTagsRepository struct {
	db DBTX
}

// NewPostgresTagsRepository 创建标签Repository
func NewPostgresTagsRepository(db DBTX) *PostgresTagsRepository {
	return &PostgresTagsRepository{db: db}
}

// 确保实现了接口
var _ TagsRepository = (*PostgresTagsRepository)(nil)

// GetTag 按 tag_id 查询
func (r *PostgresTagsRepository) GetTag(ctx context.Context, householdID, tagID string) (*domain.Tag, error) {
	query := `
		SELECT tag_id::text, household_id::text, category, name
		FROM app.tags
		WHERE household_id = $1 AND tag_id = $2
	`
	var tag domain.Tag
	err := r.db.QueryRowContext(ctx, query, householdID, tagID).Scan(
		&tag.TagID, &tag.HouseholdID, &tag.Category, &tag.Name,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

// GetTagByName 按 (category, name) 查询
func (r *PostgresTagsRepository) GetTagByName(ctx context.Context, householdID string, category domain.Category, name string) (*domain.Tag, error) {
	query := `
		SELECT tag_id::text, household_id::text, category, name
		FROM app.tags
		WHERE household_id = $1 AND category = $2 AND name = $3
	`
	var tag domain.Tag
	err := r.db.QueryRowContext(ctx, query, householdID, category, name).Scan(
		&tag.TagID, &tag.HouseholdID, &tag.Category, &tag.Name,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tag by name: %w", err)
	}
	return &tag, nil
}

// ListTagsByCategory 查询某类别下的全部标签
func (r *PostgresTagsRepository) ListTagsByCategory(ctx context.Context, householdID string, category domain.Category) ([]*domain.Tag, error) {
	query := `
		SELECT tag_id::text, household_id::text, category, name
		FROM app.tags
		WHERE household_id = $1 AND category = $2
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query, householdID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var out []*domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.TagID, &tag.HouseholdID, &tag.Category, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		out = append(out, &tag)
	}
	return out, rows.Err()
}

// CreateTag 创建标签
func (r *PostgresTagsRepository) CreateTag(ctx context.Context, tag *domain.Tag) (string, error) {
	id := tag.TagID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO app.tags (tag_id, household_id, category, name)
		VALUES ($1, $2, $3, $4)
		RETURNING tag_id::text
	`
	err := r.db.QueryRowContext(ctx, query, id, tag.HouseholdID, tag.Category, tag.Name).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create tag: %w", err)
	}
	return id, nil
}

// UpdateTag 按 tag_id 更新名称/类别
func (r *PostgresTagsRepository) UpdateTag(ctx context.Context, tag *domain.Tag) error {
	query := `
		UPDATE app.tags
		SET category = $3, name = $4
		WHERE household_id = $1 AND tag_id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, tag.HouseholdID, tag.TagID, tag.Category, tag.Name); err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}
	return nil
}

// DeleteTag 删除标签
func (r *PostgresTagsRepository) DeleteTag(ctx context.Context, householdID, tagID string) error {
	query := `DELETE FROM app.tags WHERE household_id = $1 AND tag_id = $2`
	if _, err := r.db.ExecContext(ctx, query, householdID, tagID); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}
