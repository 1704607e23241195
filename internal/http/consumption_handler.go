package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/service"

	"go.uber.org/zap"
)

// ConsumptionHandler 消耗分析 Handler
type ConsumptionHandler struct {
	consumption *service.ConsumptionService
	logger      *zap.Logger
}

// NewConsumptionHandler 创建消耗分析 Handler
func NewConsumptionHandler(consumption *service.ConsumptionService, logger *zap.Logger) *ConsumptionHandler {
	return &ConsumptionHandler{
		consumption: consumption,
		logger:      logger,
	}
}

const consumptionBasePath = "/app/api/v1/consumption"

// ServeHTTP 实现 http.Handler 接口
func (h *ConsumptionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := AuthUserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("not authenticated"))
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case consumptionBasePath:
		h.Get(w, r, user.UserID)
	case consumptionBasePath + "/buckets":
		h.GetBuckets(w, r, user.UserID)
	case consumptionBasePath + "/current-month":
		h.GetCurrentMonth(w, r, user.UserID)
	case consumptionBasePath + "/current-day":
		h.GetCurrentDay(w, r, user.UserID)
	case consumptionBasePath + "/export":
		h.Export(w, r, user.UserID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// rangeParams household_id + [from,to) 时间窗
func rangeParams(r *http.Request) (householdID string, from, to time.Time, errMsg string) {
	q := r.URL.Query()
	householdID = q.Get("household_id")
	if householdID == "" {
		return "", time.Time{}, time.Time{}, "household_id is required"
	}
	from, ok := parseTime(q.Get("from"))
	if !ok || from.IsZero() {
		return "", time.Time{}, time.Time{}, "from timestamp is required (RFC3339)"
	}
	to, ok = parseTime(q.Get("to"))
	if !ok || to.IsZero() {
		return "", time.Time{}, time.Time{}, "to timestamp is required (RFC3339)"
	}
	if !to.After(from) {
		return "", time.Time{}, time.Time{}, "to must be after from"
	}
	return householdID, from, to, ""
}

// Get 时间窗内的总消耗
func (h *ConsumptionHandler) Get(w http.ResponseWriter, r *http.Request, userID string) {
	householdID, from, to, errMsg := rangeParams(r)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, Fail(errMsg))
		return
	}

	item, err := h.consumption.GetConsumption(r.Context(), userID, householdID, from, to)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// GetBuckets 按粒度分桶的消耗序列
func (h *ConsumptionHandler) GetBuckets(w http.ResponseWriter, r *http.Request, userID string) {
	householdID, from, to, errMsg := rangeParams(r)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, Fail(errMsg))
		return
	}
	g := domain.Granularity(r.URL.Query().Get("granularity"))

	items, err := h.consumption.GetConsumptionByGranularity(r.Context(), userID, householdID, from, to, g)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// GetCurrentMonth 本月起始至今的消耗
func (h *ConsumptionHandler) GetCurrentMonth(w http.ResponseWriter, r *http.Request, userID string) {
	householdID := r.URL.Query().Get("household_id")
	if householdID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("household_id is required"))
		return
	}

	item, err := h.consumption.GetCurrentMonthConsumption(r.Context(), userID, householdID, time.Now().UTC())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// GetCurrentDay 今日零点至今的消耗
func (h *ConsumptionHandler) GetCurrentDay(w http.ResponseWriter, r *http.Request, userID string) {
	householdID := r.URL.Query().Get("household_id")
	if householdID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("household_id is required"))
		return
	}

	item, err := h.consumption.GetCurrentDayConsumption(r.Context(), userID, householdID, time.Now().UTC())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// Export 导出 xlsx 消耗报表
func (h *ConsumptionHandler) Export(w http.ResponseWriter, r *http.Request, userID string) {
	householdID, from, to, errMsg := rangeParams(r)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, Fail(errMsg))
		return
	}
	g := domain.Granularity(r.URL.Query().Get("granularity"))
	if g == "" {
		g = domain.GranularityDay
	}

	total, err := h.consumption.GetConsumption(r.Context(), userID, householdID, from, to)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	buckets, err := h.consumption.GetConsumptionByGranularity(r.Context(), userID, householdID, from, to, g)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	data, err := GenerateConsumptionReport(total, buckets)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	filename := fmt.Sprintf("consumption_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
