package httpapi

import (
	"net/http"
	"strings"

	"hydrosense-data/internal/repository"
	"hydrosense-data/internal/service"

	"go.uber.org/zap"
)

// HouseholdHandler 家庭管理 Handler
type HouseholdHandler struct {
	households *service.HouseholdService
	logger     *zap.Logger
}

// NewHouseholdHandler 创建家庭管理 Handler
func NewHouseholdHandler(households *service.HouseholdService, logger *zap.Logger) *HouseholdHandler {
	return &HouseholdHandler{
		households: households,
		logger:     logger,
	}
}

const householdsBasePath = "/app/api/v1/households"

// ServeHTTP 实现 http.Handler 接口
func (h *HouseholdHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := AuthUserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("not authenticated"))
		return
	}

	if r.URL.Path == householdsBasePath {
		switch r.Method {
		case http.MethodGet:
			h.List(w, r, user.UserID)
		case http.MethodPost:
			h.Create(w, r, user.UserID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, householdsBasePath+"/")
	if rest == "" || rest == r.URL.Path {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	// /households/{id}/leave
	if id, found := strings.CutSuffix(rest, "/leave"); found {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Leave(w, r, id, user.UserID)
		return
	}

	if strings.Contains(rest, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.Get(w, r, rest, user.UserID)
	case http.MethodPatch:
		h.Update(w, r, rest, user.UserID)
	case http.MethodDelete:
		h.Delete(w, r, rest, user.UserID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// List 当前用户的全部家庭
func (h *HouseholdHandler) List(w http.ResponseWriter, r *http.Request, userID string) {
	items, err := h.households.ListHouseholds(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// Get 单个家庭详情
func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request, householdID, userID string) {
	item, err := h.households.GetHousehold(r.Context(), householdID, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// Create 创建家庭（创建者成为 admin）
func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request, userID string) {
	var req service.CreateHouseholdRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	item, err := h.households.CreateHousehold(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

type householdPatchBody struct {
	Name      *string `json:"name"`
	Residents *int    `json:"residents"`
	SensorID  *string `json:"sensor_id"`
	Street    *string `json:"street"`
	City      *string `json:"city"`
	ZipCode   *string `json:"zip_code"`
	Country   *string `json:"country"`
}

// Update 部分更新（字段缺省时不修改）
func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request, householdID, userID string) {
	var body householdPatchBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	patch := repository.HouseholdPatch{
		Name:      body.Name,
		Residents: body.Residents,
		SensorID:  body.SensorID,
		Street:    body.Street,
		City:      body.City,
		ZipCode:   body.ZipCode,
		Country:   body.Country,
	}
	item, err := h.households.UpdateHousehold(r.Context(), householdID, userID, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// Delete 删除家庭（仅 admin）
func (h *HouseholdHandler) Delete(w http.ResponseWriter, r *http.Request, householdID, userID string) {
	if err := h.households.DeleteHousehold(r.Context(), householdID, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": true}))
}

// Leave 退出家庭（最后一名 admin 不允许退出）
func (h *HouseholdHandler) Leave(w http.ResponseWriter, r *http.Request, householdID, userID string) {
	if err := h.households.Leave(r.Context(), householdID, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"left": true}))
}
