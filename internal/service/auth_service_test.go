package service

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"hydrosense-data/internal/domain"
	"hydrosense-data/internal/store"

	"github.com/stretchr/testify/require"
)

// seedUser 以 email/password 注册用户，返回 user_id
func (e *testEnv) seedUser(t *testing.T, email, password string) string {
	t.Helper()
	accountHash, err := hex.DecodeString(HashAccount(email))
	require.NoError(t, err)
	passwordHash, err := hex.DecodeString(HashAccountPassword(email, password))
	require.NoError(t, err)

	userID, err := e.repos.Users.CreateUser(context.Background(), &domain.User{
		Name:   "Test User",
		Email:  email,
		Locale: "en",
	}, accountHash, passwordHash)
	require.NoError(t, err)
	return userID
}

func TestLoginAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	kv := store.NewMemoryKV()
	userID := env.seedUser(t, "alice@example.com", "s3cret")

	svc := NewAuthService(env.repos.Users, kv, time.Hour, testLogger())
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{
		AccountHash:  HashAccount("alice@example.com"),
		PasswordHash: HashAccountPassword("alice@example.com", "s3cret"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, userID, resp.UserID)

	user, err := svc.Authenticate(ctx, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, user.UserID)
	require.Equal(t, "alice@example.com", user.Email)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)
	kv := store.NewMemoryKV()
	env.seedUser(t, "alice@example.com", "s3cret")

	svc := NewAuthService(env.repos.Users, kv, time.Hour, testLogger())
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{
		AccountHash:  HashAccount("alice@example.com"),
		PasswordHash: HashAccountPassword("alice@example.com", "wrong"),
	})
	requireErrorKind(t, err, domain.ErrKindUnauthorized)

	_, err = svc.Login(ctx, LoginRequest{
		AccountHash:  HashAccount("nobody@example.com"),
		PasswordHash: HashAccountPassword("nobody@example.com", "s3cret"),
	})
	requireErrorKind(t, err, domain.ErrKindUnauthorized)

	_, err = svc.Login(ctx, LoginRequest{AccountHash: "not-hex!", PasswordHash: "zz"})
	requireErrorKind(t, err, domain.ErrKindUnauthorized)
}

// 邮箱大小写不影响登录（哈希前统一小写）
func TestLoginEmailCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	kv := store.NewMemoryKV()
	env.seedUser(t, "alice@example.com", "s3cret")

	svc := NewAuthService(env.repos.Users, kv, time.Hour, testLogger())
	_, err := svc.Login(context.Background(), LoginRequest{
		AccountHash:  HashAccount("Alice@Example.COM"),
		PasswordHash: HashAccountPassword("Alice@Example.COM", "s3cret"),
	})
	require.NoError(t, err)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	env := newTestEnv(t)
	kv := store.NewMemoryKV()
	env.seedUser(t, "alice@example.com", "s3cret")

	svc := NewAuthService(env.repos.Users, kv, time.Hour, testLogger())
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{
		AccountHash:  HashAccount("alice@example.com"),
		PasswordHash: HashAccountPassword("alice@example.com", "s3cret"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.AccessToken))

	_, err = svc.Authenticate(ctx, resp.AccessToken)
	requireErrorKind(t, err, domain.ErrKindUnauthorized)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	env := newTestEnv(t)
	kv := store.NewMemoryKV()
	env.seedUser(t, "alice@example.com", "s3cret")

	svc := NewAuthService(env.repos.Users, kv, time.Hour, testLogger())
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{
		AccountHash:  HashAccount("alice@example.com"),
		PasswordHash: HashAccountPassword("alice@example.com", "s3cret"),
	})
	require.NoError(t, err)

	// 会话在 KV 中过期淘汰后，令牌失效
	require.NoError(t, kv.Del(ctx, "session:"+resp.AccessToken))

	_, err = svc.Authenticate(ctx, resp.AccessToken)
	requireErrorKind(t, err, domain.ErrKindUnauthorized)
}
