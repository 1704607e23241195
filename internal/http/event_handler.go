package httpapi

import (
	"context"
	"net/http"
	"strings"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"
	"hydrosense-data/internal/service"

	"go.uber.org/zap"
)

// EventHandler 用水事件 Handler
type EventHandler struct {
	events *service.EventService
	logger *zap.Logger
}

// NewEventHandler 创建用水事件 Handler
func NewEventHandler(events *service.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		events: events,
		logger: logger,
	}
}

const eventsBasePath = "/app/api/v1/events"

// ServeHTTP 实现 http.Handler 接口
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := AuthUserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("not authenticated"))
		return
	}

	switch r.URL.Path {
	case eventsBasePath:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.List(w, r, user.UserID)
		return
	case eventsBasePath + "/leak-count":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.LeakCount(w, r, user.UserID)
		return
	case eventsBasePath + "/unknown-count":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.UnknownCount(w, r, user.UserID)
		return
	}

	// /events/{id}/category
	rest := strings.TrimPrefix(r.URL.Path, eventsBasePath+"/")
	if id, found := strings.CutSuffix(rest, "/category"); found && id != "" && !strings.Contains(id, "/") {
		if r.Method != http.MethodPatch {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Recategorize(w, r, id, user.UserID)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

// List 游标分页的事件列表
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request, userID string) {
	q := r.URL.Query()
	householdID := q.Get("household_id")
	if householdID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("household_id is required"))
		return
	}

	from, ok := parseTime(q.Get("from"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail("invalid from timestamp"))
		return
	}
	to, ok := parseTime(q.Get("to"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail("invalid to timestamp"))
		return
	}

	filter := repository.EventsFilter{
		Category: domain.Category(q.Get("category")),
		TagName:  q.Get("tag_name"),
		From:     from,
		To:       to,
	}
	order := repository.OrderDesc
	if q.Get("order") == "asc" {
		order = repository.OrderAsc
	}
	page := repository.EventsPage{
		Cursor: q.Get("cursor"),
		Limit:  parseInt(q.Get("limit"), 50),
		Order:  order,
	}

	items, nextCursor, err := h.events.ListEvents(r.Context(), userID, householdID, filter, page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items":      items,
		"nextCursor": nextCursor,
	}))
}

// LeakCount 疑似漏水事件计数
func (h *EventHandler) LeakCount(w http.ResponseWriter, r *http.Request, userID string) {
	h.count(w, r, userID, h.events.CountLeakEvents)
}

// UnknownCount 未归类事件计数
func (h *EventHandler) UnknownCount(w http.ResponseWriter, r *http.Request, userID string) {
	h.count(w, r, userID, h.events.CountUnknownEvents)
}

func (h *EventHandler) count(
	w http.ResponseWriter,
	r *http.Request,
	userID string,
	fn func(ctx context.Context, userID, householdID string) (int, error),
) {
	householdID := r.URL.Query().Get("household_id")
	if householdID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("household_id is required"))
		return
	}

	n, err := fn(r.Context(), userID, householdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"count": n}))
}

// Recategorize 重新分类事件
func (h *EventHandler) Recategorize(w http.ResponseWriter, r *http.Request, eventID, userID string) {
	var req service.RecategorizeRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.EventID = eventID

	item, err := h.events.Recategorize(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}
