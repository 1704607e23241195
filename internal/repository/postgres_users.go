package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"hydrosense-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresUsersRepository 用户Repository实现（auth.users 表）
type PostgresUsersRepository struct {
	db DBTX
}

// NewPostgresUsersRepository 创建用户Repository
func NewPostgresUsersRepository(db DBTX) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

// 确保实现了接口
var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `
	user_id::text,
	COALESCE(name, ''),
	email,
	email_verified,
	COALESCE(locale, 'en'),
	created_at
`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.UserID,
		&u.Name,
		&u.Email,
		&u.EmailVerified,
		&u.Locale,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser 按 user_id 查询
func (r *PostgresUsersRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM auth.users WHERE user_id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail 按邮箱查询
func (r *PostgresUsersRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM auth.users WHERE lower(email) = lower($1)`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// GetLoginUser 按 account_hash 查询用户及其 password_hash
func (r *PostgresUsersRepository) GetLoginUser(ctx context.Context, accountHash []byte) (*domain.User, []byte, error) {
	query := `
		SELECT ` + userColumns + `, password_hash
		FROM auth.users
		WHERE account_hash = $1
	`
	var u domain.User
	var passwordHash []byte
	err := r.db.QueryRowContext(ctx, query, accountHash).Scan(
		&u.UserID, &u.Name, &u.Email, &u.EmailVerified, &u.Locale, &u.CreatedAt,
		&passwordHash,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to get login user: %w", err)
	}
	return &u, passwordHash, nil
}

// CreateUser 创建用户
func (r *PostgresUsersRepository) CreateUser(ctx context.Context, u *domain.User, accountHash, passwordHash []byte) (string, error) {
	id := u.UserID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO auth.users (user_id, name, email, email_verified, locale, account_hash, password_hash)
		VALUES ($1, NULLIF($2, ''), lower($3), $4, $5, $6, $7)
		RETURNING user_id::text
	`
	err := r.db.QueryRowContext(ctx, query,
		id, u.Name, strings.TrimSpace(u.Email), u.EmailVerified, u.Locale, accountHash, passwordHash,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// UpdateLocale 更新用户语言偏好
func (r *PostgresUsersRepository) UpdateLocale(ctx context.Context, userID, locale string) error {
	query := `UPDATE auth.users SET locale = $2 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, locale); err != nil {
		return fmt.Errorf("failed to update locale: %w", err)
	}
	return nil
}
