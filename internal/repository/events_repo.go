package repository

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"hydrosense-data/internal/domain"
)

// EventsFilter 事件列表过滤器
type EventsFilter struct {
	Category domain.Category // 可选
	TagName  string          // 可选
	From     time.Time       // 可选，start_timestamp >= From
	To       time.Time       // 可选，start_timestamp < To
}

// EventsPage 游标分页参数（供无限滚动列表使用）
// Cursor 为不透明游标：最后一条的排序键 + id
type EventsPage struct {
	Cursor string
	Limit  int
	Order  Order
}

// EventsRepository 用水事件Repository接口
type EventsRepository interface {
	// GetEvent 按 event_id 查询，查不到返回 (nil, nil)
	GetEvent(ctx context.Context, householdID, eventID string) (*domain.Event, error)

	// ListEvents 按过滤器查询事件列表，返回下一页游标（没有更多数据时为空串）
	ListEvents(ctx context.Context, householdID string, filter EventsFilter, page EventsPage) ([]*domain.Event, string, error)

	// CountEventsByCategory 统计某类别事件数（leak/unknown 看板用）
	CountEventsByCategory(ctx context.Context, householdID string, category domain.Category) (int, error)

	// InsertEvent 写入事件（传感器摄取），返回新 event_id
	InsertEvent(ctx context.Context, e *domain.Event) (string, error)

	// UpdateEventCategory 重新分类事件（同时重设 tag_name）
	UpdateEventCategory(ctx context.Context, householdID, eventID string, category domain.Category, tagName string) error

	// DeleteEventsByTag 删除按值引用某 (category, tag_name) 的全部事件
	// 返回删除条数；Tag 更新/删除的级联由 Service 在同一事务内调用
	DeleteEventsByTag(ctx context.Context, householdID string, category domain.Category, tagName string) (int, error)
}

// EncodeEventCursor 编码事件游标（start_timestamp + event_id）
func EncodeEventCursor(ts time.Time, eventID string) string {
	raw := ts.UTC().Format(time.RFC3339Nano) + "|" + eventID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeEventCursor 解码事件游标
func DecodeEventCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid cursor: %w", err)
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", fmt.Errorf("invalid cursor format")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	return ts, parts[1], nil
}
