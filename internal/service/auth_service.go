package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/repository"
	"hydrosense-data/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 前端 crypto 约定：
// - accountHash = sha256(lower(email))
// - accountPasswordHash = sha256(lower(email) + ":" + password)
// 服务端只见哈希，不见明文

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// HashAccount 计算账号哈希
func HashAccount(email string) string {
	return sha256Hex(normalizeEmail(email))
}

// HashAccountPassword 计算账号口令哈希
func HashAccountPassword(email, password string) string {
	return sha256Hex(normalizeEmail(email) + ":" + password)
}

// AuthUser 已认证用户（中间件放入请求上下文）
type AuthUser struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

// AuthService 认证服务接口
type AuthService interface {
	// Login 校验凭证哈希，签发不透明会话令牌（写入 KV，带 TTL）
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)

	// Authenticate 按令牌解析会话，失效/过期返回 UNAUTHORIZED 领域错误
	Authenticate(ctx context.Context, token string) (*AuthUser, error)

	// Logout 注销会话
	Logout(ctx context.Context, token string) error
}

type authService struct {
	usersRepo  repository.UsersRepository
	kv         store.KV
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(usersRepo repository.UsersRepository, kv store.KV, sessionTTL time.Duration, logger *zap.Logger) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &authService{
		usersRepo:  usersRepo,
		kv:         kv,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	AccountHash  string // sha256(lower(email)) 的 hex 编码，必填
	PasswordHash string // sha256(lower(email)+":"+password) 的 hex 编码，必填
	IPAddress    string // 客户端 IP（日志用）
	UserAgent    string // 客户端 User-Agent（日志用）
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Locale      string `json:"locale"`
}

func sessionKey(token string) string {
	return "session:" + token
}

// Login 用户登录
func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.AccountHash = strings.TrimSpace(req.AccountHash)
	req.PasswordHash = strings.TrimSpace(req.PasswordHash)
	if req.AccountHash == "" || req.PasswordHash == "" {
		s.logger.Warn("Login failed: missing credentials",
			zap.String("ip_address", req.IPAddress),
			zap.String("user_agent", req.UserAgent),
		)
		return nil, domain.UnauthorizedError("missing credentials")
	}

	accountHash, err := hex.DecodeString(req.AccountHash)
	if err != nil || len(accountHash) == 0 {
		return nil, domain.UnauthorizedError("invalid credentials")
	}
	passwordHash, err := hex.DecodeString(req.PasswordHash)
	if err != nil || len(passwordHash) == 0 {
		return nil, domain.UnauthorizedError("invalid credentials")
	}

	user, storedHash, err := s.usersRepo.GetLoginUser(ctx, accountHash)
	if err != nil {
		return nil, err
	}
	if user == nil || !hmac.Equal(storedHash, passwordHash) {
		s.logger.Warn("Login failed: bad credentials",
			zap.String("ip_address", req.IPAddress),
			zap.String("user_agent", req.UserAgent),
		)
		return nil, domain.UnauthorizedError("invalid credentials")
	}

	token := uuid.NewString()
	session := AuthUser{
		UserID: user.UserID,
		Email:  user.Email,
		Name:   user.Name,
		Locale: user.Locale,
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, sessionKey(token), string(payload), s.sessionTTL); err != nil {
		return nil, err
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.UserID),
		zap.String("ip_address", req.IPAddress),
	)

	return &LoginResponse{
		AccessToken: token,
		UserID:      user.UserID,
		Name:        user.Name,
		Email:       user.Email,
		Locale:      user.Locale,
	}, nil
}

// Authenticate 按令牌解析会话
func (s *authService) Authenticate(ctx context.Context, token string) (*AuthUser, error) {
	if token == "" {
		return nil, domain.UnauthorizedError("missing token")
	}
	raw, err := s.kv.Get(ctx, sessionKey(token))
	if err != nil {
		if err == store.ErrMiss {
			return nil, domain.UnauthorizedError("session expired")
		}
		return nil, err
	}
	var user AuthUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, domain.UnauthorizedError("invalid session")
	}
	return &user, nil
}

// Logout 注销会话
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.kv.Del(ctx, sessionKey(token))
}
