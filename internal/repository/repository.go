package repository

import (
	"context"
	"database/sql"
)

// DBTX Repository 使用的数据库句柄抽象
// *sql.DB 和 *sql.Tx 都满足此接口，Postgres Repository 可在事务内外复用
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Order 列表排序方向
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Repositories 绑定到同一数据源（或同一事务）的 Repository 集合
// UnitOfWork.Execute 每次回调都会构造一套新的实例，不跨事务共享
type Repositories struct {
	Households     HouseholdsRepository
	HouseholdUsers HouseholdUsersRepository
	Tags           TagsRepository
	Events         EventsRepository
	Users          UsersRepository
	Invitations    InvitationsRepository
	Consumption    ConsumptionRepository
}

// UnitOfWork 单层事务作用域
// Execute 打开一个事务，把绑定到该事务的 Repositories 交给回调；
// 回调正常返回则提交，返回错误则回滚并透传错误。不支持嵌套。
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(r *Repositories) error) error
}
