package domain

import (
	"regexp"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail 校验邮箱格式
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// User 用户领域模型（对应 auth.users 表）
// email 全局唯一，由注册流程创建
type User struct {
	UserID        string    `db:"user_id"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	EmailVerified bool      `db:"email_verified"`
	Locale        string    `db:"locale"` // 如 "en", "de"
	CreatedAt     time.Time `db:"created_at"`
}

// Validate 校验 User 不变式
func (u *User) Validate() error {
	if !ValidEmail(u.Email) {
		return BadRequestError("invalid email: %s", u.Email)
	}
	return nil
}
