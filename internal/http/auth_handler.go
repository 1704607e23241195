package httpapi

import (
	"net/http"

	"hydrosense-data/internal/service"

	"go.uber.org/zap"
)

// AuthHandler 认证 Handler
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler 创建认证 Handler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/api/v1/login":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Login(w, r)
	case "/auth/api/v1/logout":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Logout(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Login 用户登录
// 前端只上送哈希，明文口令不过线
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqBody struct {
		AccountHash  string `json:"accountHash"`
		PasswordHash string `json:"passwordHash"`
	}
	_ = readBodyJSON(r, 1<<20, &reqBody)

	// 参数优先级：Body > Query
	if reqBody.AccountHash == "" {
		reqBody.AccountHash = r.URL.Query().Get("accountHash")
	}
	if reqBody.PasswordHash == "" {
		reqBody.PasswordHash = r.URL.Query().Get("passwordHash")
	}

	resp, err := h.authService.Login(ctx, service.LoginRequest{
		AccountHash:  reqBody.AccountHash,
		PasswordHash: reqBody.PasswordHash,
		IPAddress:    r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// Logout 注销当前会话
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing authorization token"))
		return
	}
	if err := h.authService.Logout(r.Context(), token); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"loggedOut": true}))
}
