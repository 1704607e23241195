package httpapi

import (
	"context"
	"net/http"
	"strings"

	"hydrosense-data/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const authUserKey contextKey = "authUser"

// AuthUserFrom 取出中间件写入的当前用户
func AuthUserFrom(ctx context.Context) (*service.AuthUser, bool) {
	u, ok := ctx.Value(authUserKey).(*service.AuthUser)
	return u, ok
}

// AuthMiddleware Bearer token → AuthUser，失败直接 401，业务逻辑不会执行
type AuthMiddleware struct {
	auth   service.AuthService
	logger *zap.Logger
}

func NewAuthMiddleware(auth service.AuthService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, logger: logger}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Wrap 包装需要登录态的 HandlerFunc
func (m *AuthMiddleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, Fail("missing authorization token"))
			return
		}
		user, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			// 过期/无效会话走 60401，前端触发重新登录
			writeJSON(w, http.StatusUnauthorized, TokenExpired())
			return
		}
		ctx := context.WithValue(r.Context(), authUserKey, user)
		next(w, r.WithContext(ctx))
	}
}
