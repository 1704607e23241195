package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"hydrosense-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresEventsRepository 用水事件Repository实现
type PostgresEventsRepository struct {
	db DBTX
}

// NewPostgresEventsRepository 创建用水事件Repository
func NewPostgresEventsRepository(db DBTX) *PostgresEventsRepository {
	return &PostgresEventsRepository{db: db}
}

// 确保实现了接口
var _ EventsRepository = (*PostgresEventsRepository)(nil)

const eventColumns = `
	event_id::text,
	household_id::text,
	category,
	start_timestamp,
	end_timestamp,
	duration_seconds,
	consumption_liters,
	COALESCE(tag_name, ''),
	COALESCE(notes, ''),
	created_at
`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.EventID,
		&e.HouseholdID,
		&e.Category,
		&e.StartTimestamp,
		&e.EndTimestamp,
		&e.DurationInSeconds,
		&e.ConsumptionInLiters,
		&e.TagName,
		&e.Notes,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEvent 按 event_id 查询
func (r *PostgresEventsRepository) GetEvent(ctx context.Context, householdID, eventID string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM app.events WHERE household_id = $1 AND event_id = $2`

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, householdID, eventID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// ListEvents 按过滤器查询事件列表（游标分页）
// 排序键为 (start_timestamp, event_id)，游标定位到最后一条之后
func (r *PostgresEventsRepository) ListEvents(ctx context.Context, householdID string, filter EventsFilter, page EventsPage) ([]*domain.Event, string, error) {
	if householdID == "" {
		return nil, "", fmt.Errorf("household_id is required")
	}
	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	order := page.Order
	if order != OrderAsc && order != OrderDesc {
		order = OrderDesc
	}

	where := []string{"household_id = $1"}
	args := []any{householdID}
	argIdx := 2

	addWhere := func(cond string, v any) {
		where = append(where, fmt.Sprintf(cond, argIdx))
		args = append(args, v)
		argIdx++
	}

	if filter.Category != "" {
		addWhere("category = $%d", filter.Category)
	}
	if filter.TagName != "" {
		addWhere("tag_name = $%d", filter.TagName)
	}
	if !filter.From.IsZero() {
		addWhere("start_timestamp >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		addWhere("start_timestamp < $%d", filter.To)
	}

	if page.Cursor != "" {
		ts, id, err := DecodeEventCursor(page.Cursor)
		if err != nil {
			return nil, "", err
		}
		cmp := "<"
		if order == OrderAsc {
			cmp = ">"
		}
		where = append(where, fmt.Sprintf("(start_timestamp, event_id) %s ($%d, $%d)", cmp, argIdx, argIdx+1))
		args = append(args, ts, id)
		argIdx += 2
	}

	dir := "DESC"
	if order == OrderAsc {
		dir = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM app.events
		WHERE %s
		ORDER BY start_timestamp %s, event_id %s
		LIMIT $%d
	`, eventColumns, strings.Join(where, " AND "), dir, dir, argIdx)
	args = append(args, limit+1)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	// 多取一条判断是否还有下一页
	next := ""
	if len(out) > limit {
		out = out[:limit]
		last := out[len(out)-1]
		next = EncodeEventCursor(last.StartTimestamp, last.EventID)
	}
	return out, next, nil
}

// CountEventsByCategory 统计某类别事件数
func (r *PostgresEventsRepository) CountEventsByCategory(ctx context.Context, householdID string, category domain.Category) (int, error) {
	query := `SELECT COUNT(*) FROM app.events WHERE household_id = $1 AND category = $2`
	var n int
	if err := r.db.QueryRowContext(ctx, query, householdID, category).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

// InsertEvent 写入事件（传感器摄取）
func (r *PostgresEventsRepository) InsertEvent(ctx context.Context, e *domain.Event) (string, error) {
	id := e.EventID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO app.events (
			event_id, household_id, category, start_timestamp, end_timestamp,
			duration_seconds, consumption_liters, tag_name, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''))
		RETURNING event_id::text
	`
	err := r.db.QueryRowContext(ctx, query,
		id, e.HouseholdID, e.Category, e.StartTimestamp, e.EndTimestamp,
		e.DurationInSeconds, e.ConsumptionInLiters, e.TagName, e.Notes,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

// UpdateEventCategory 重新分类事件
func (r *PostgresEventsRepository) UpdateEventCategory(ctx context.Context, householdID, eventID string, category domain.Category, tagName string) error {
	query := `
		UPDATE app.events
		SET category = $3, tag_name = NULLIF($4, '')
		WHERE household_id = $1 AND event_id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, householdID, eventID, category, tagName); err != nil {
		return fmt.Errorf("failed to update event category: %w", err)
	}
	return nil
}

// DeleteEventsByTag 删除按值引用某 (category, tag_name) 的全部事件
func (r *PostgresEventsRepository) DeleteEventsByTag(ctx context.Context, householdID string, category domain.Category, tagName string) (int, error) {
	query := `
		DELETE FROM app.events
		WHERE household_id = $1 AND category = $2 AND tag_name = $3
	`
	res, err := r.db.ExecContext(ctx, query, householdID, category, tagName)
	if err != nil {
		return 0, fmt.Errorf("failed to delete events by tag: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
