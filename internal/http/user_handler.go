package httpapi

import (
	"net/http"

	"hydrosense-data/internal/repository"
	"hydrosense-data/internal/service"

	"go.uber.org/zap"
)

// UserHandler 当前用户视角的接口
type UserHandler struct {
	households *service.HouseholdService
	users      repository.UsersRepository
	logger     *zap.Logger
}

// NewUserHandler 创建用户 Handler
func NewUserHandler(households *service.HouseholdService, users repository.UsersRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		households: households,
		users:      users,
		logger:     logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := AuthUserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("not authenticated"))
		return
	}

	switch r.URL.Path {
	case "/app/api/v1/user/households":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Households(w, r, user.UserID)
	case "/app/api/v1/user/locale":
		if r.Method != http.MethodPatch {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.UpdateLocale(w, r, user.UserID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Households 当前用户的家庭列表
func (h *UserHandler) Households(w http.ResponseWriter, r *http.Request, userID string) {
	items, err := h.households.ListHouseholds(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// UpdateLocale 更新语言偏好
func (h *UserHandler) UpdateLocale(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Locale string `json:"locale"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil || req.Locale == "" {
		writeJSON(w, http.StatusBadRequest, Fail("locale is required"))
		return
	}

	if err := h.users.UpdateLocale(r.Context(), userID, req.Locale); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"locale": req.Locale}))
}
