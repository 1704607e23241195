package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"
	"hydrosense-data/internal/service"
)

func newHouseholdServer(t *testing.T) (http.HandlerFunc, *repository.Repositories) {
	t.Helper()
	store := repository.NewMemoryStore()
	repos := repository.NewMemoryRepositories(store)
	svc := service.NewHouseholdService(repos.Households, repos.HouseholdUsers, repository.NewMemoryUnitOfWork(store), zap.NewNop())

	user := &service.AuthUser{UserID: "u-1", Email: "alice@example.com"}
	m := NewAuthMiddleware(&fakeAuthService{token: "good", user: user}, zap.NewNop())
	handler := NewHouseholdHandler(svc, zap.NewNop())
	return m.Wrap(handler.ServeHTTP), repos
}

func doAuthed(t *testing.T, h http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHouseholdCreateAndGet(t *testing.T) {
	h, _ := newHouseholdServer(t)

	rec := doAuthed(t, h, http.MethodPost, householdsBasePath,
		`{"name":"Maple Street","residents":3,"sensor_id":"AABBCCDDEEFF"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var created Result[domain.Household]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, ResultSuccess, created.Code)
	require.Equal(t, "Maple Street", created.Result.Name)
	require.NotEmpty(t, created.Result.HouseholdID)
	// 传感器 ID 归一化为小写
	require.Equal(t, "aabbccddeeff", created.Result.SensorID)

	rec = doAuthed(t, h, http.MethodGet, householdsBasePath+"/"+created.Result.HouseholdID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got Result[domain.Household]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, created.Result.HouseholdID, got.Result.HouseholdID)
}

func TestHouseholdCreateValidationMapsTo400(t *testing.T) {
	h, _ := newHouseholdServer(t)

	rec := doAuthed(t, h, http.MethodPost, householdsBasePath,
		`{"name":"","residents":0,"sensor_id":"zz"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	res := decodeEnvelope(t, rec)
	require.Equal(t, ResultError, res.Code)
	require.NotEmpty(t, res.Message)
}

func TestHouseholdGetNonMemberMapsTo403(t *testing.T) {
	h, _ := newHouseholdServer(t)

	// 成员校验先于存在性校验：查不到 membership 一律 403
	rec := doAuthed(t, h, http.MethodGet, householdsBasePath+"/no-such-id", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHouseholdPatchAndDelete(t *testing.T) {
	h, _ := newHouseholdServer(t)

	rec := doAuthed(t, h, http.MethodPost, householdsBasePath,
		`{"name":"Maple Street","residents":3,"sensor_id":"aabbccddeeff"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var created Result[domain.Household]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Result.HouseholdID

	rec = doAuthed(t, h, http.MethodPatch, householdsBasePath+"/"+id, `{"residents":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var patched Result[domain.Household]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patched))
	require.Equal(t, 5, patched.Result.Residents)
	require.Equal(t, "Maple Street", patched.Result.Name)

	rec = doAuthed(t, h, http.MethodDelete, householdsBasePath+"/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// 级联删除连同 membership 一起清掉
	rec = doAuthed(t, h, http.MethodGet, householdsBasePath+"/"+id, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHouseholdLastAdminCannotLeave(t *testing.T) {
	h, _ := newHouseholdServer(t)

	rec := doAuthed(t, h, http.MethodPost, householdsBasePath,
		`{"name":"Maple Street","residents":2,"sensor_id":"aabbccddeeff"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var created Result[domain.Household]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doAuthed(t, h, http.MethodPost, householdsBasePath+"/"+created.Result.HouseholdID+"/leave", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHouseholdMethodNotAllowed(t *testing.T) {
	h, _ := newHouseholdServer(t)

	rec := doAuthed(t, h, http.MethodPut, householdsBasePath, "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
