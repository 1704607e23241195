package httpapi

import (
	"net/http"

	"hydrosense-data/internal/service"

	"go.uber.org/zap"
)

// RecirculatorHandler 循环泵控制 Handler
type RecirculatorHandler struct {
	recirculator *service.RecirculatorService
	logger       *zap.Logger
}

// NewRecirculatorHandler 创建循环泵控制 Handler
func NewRecirculatorHandler(recirculator *service.RecirculatorService, logger *zap.Logger) *RecirculatorHandler {
	return &RecirculatorHandler{
		recirculator: recirculator,
		logger:       logger,
	}
}

const recirculatorBasePath = "/app/api/v1/recirculator"

// ServeHTTP 实现 http.Handler 接口
func (h *RecirculatorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, ok := AuthUserFrom(r.Context()); !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("not authenticated"))
		return
	}

	switch r.URL.Path {
	case recirculatorBasePath + "/state":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetState(w, r)
	case recirculatorBasePath + "/last-temperature":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetLastTemperature(w, r)
	case recirculatorBasePath + "/status":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetStatus(w, r)
	case recirculatorBasePath + "/turn-on":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.TurnOn(w, r)
	case recirculatorBasePath + "/turn-off":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.TurnOff(w, r)
	case recirculatorBasePath + "/max-temperature":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.SetMaxTemperature(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func deviceIDParam(r *http.Request) string {
	return r.URL.Query().Get("device_id")
}

// GetState 查询电源状态
func (h *RecirculatorHandler) GetState(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceIDParam(r)
	if deviceID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("device_id is required"))
		return
	}

	state, err := h.recirculator.GetState(r.Context(), deviceID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"powerState": state}))
}

// GetLastTemperature 最近一次温度读数
func (h *RecirculatorHandler) GetLastTemperature(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceIDParam(r)
	if deviceID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("device_id is required"))
		return
	}

	reading, err := h.recirculator.GetLastTemperature(r.Context(), deviceID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(reading))
}

// GetStatus 完整设备状态
func (h *RecirculatorHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceIDParam(r)
	if deviceID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("device_id is required"))
		return
	}

	status, err := h.recirculator.GetStatus(r.Context(), deviceID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(status))
}

type powerRequest struct {
	DeviceID string `json:"device_id"`
}

// TurnOn 开机
func (h *RecirculatorHandler) TurnOn(w http.ResponseWriter, r *http.Request) {
	var req powerRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil || req.DeviceID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("device_id is required"))
		return
	}

	state, err := h.recirculator.TurnOn(r.Context(), req.DeviceID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"powerState": state}))
}

// TurnOff 关机
func (h *RecirculatorHandler) TurnOff(w http.ResponseWriter, r *http.Request) {
	var req powerRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil || req.DeviceID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("device_id is required"))
		return
	}

	state, err := h.recirculator.TurnOff(r.Context(), req.DeviceID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"powerState": state}))
}

// SetMaxTemperature 设置最高水温；越界值在任何设备调用前拒绝
func (h *RecirculatorHandler) SetMaxTemperature(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID       string  `json:"device_id"`
		MaxTemperature float64 `json:"max_temperature"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil || req.DeviceID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("device_id is required"))
		return
	}

	if err := h.recirculator.SetMaxTemperature(r.Context(), req.DeviceID, req.MaxTemperature); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"maxTemperature": req.MaxTemperature}))
}
