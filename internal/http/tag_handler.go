package httpapi

import (
	"net/http"
	"strings"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/service"

	"go.uber.org/zap"
)

// TagHandler 标签管理 Handler
type TagHandler struct {
	tags   *service.TagService
	logger *zap.Logger
}

// NewTagHandler 创建标签管理 Handler
func NewTagHandler(tags *service.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{
		tags:   tags,
		logger: logger,
	}
}

const tagsBasePath = "/app/api/v1/tags"

// ServeHTTP 实现 http.Handler 接口
func (h *TagHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := AuthUserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("not authenticated"))
		return
	}

	if r.URL.Path == tagsBasePath {
		switch r.Method {
		case http.MethodGet:
			h.ListByCategory(w, r, user.UserID)
		case http.MethodPost:
			h.Create(w, r, user.UserID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	tagID := strings.TrimPrefix(r.URL.Path, tagsBasePath+"/")
	if tagID == "" || strings.Contains(tagID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.Update(w, r, tagID, user.UserID)
	case http.MethodDelete:
		h.Delete(w, r, tagID, user.UserID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ListByCategory 按类别列出标签
func (h *TagHandler) ListByCategory(w http.ResponseWriter, r *http.Request, userID string) {
	householdID := r.URL.Query().Get("household_id")
	category := domain.Category(r.URL.Query().Get("category"))
	if householdID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("household_id is required"))
		return
	}

	items, err := h.tags.ListTagsByCategory(r.Context(), userID, householdID, category)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// Create 创建标签
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request, userID string) {
	var req service.CreateTagRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	item, err := h.tags.CreateTag(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// Update 更新标签；旧名下的事件级联删除（同一事务）
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request, tagID, userID string) {
	var req service.UpdateTagRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.TagID = tagID

	item, err := h.tags.UpdateTag(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// Delete 删除标签及其全部事件（同一事务）
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request, tagID, userID string) {
	householdID := r.URL.Query().Get("household_id")
	if householdID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("household_id is required"))
		return
	}

	if err := h.tags.DeleteTag(r.Context(), userID, householdID, tagID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": true}))
}
