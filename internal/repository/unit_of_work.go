package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresUnitOfWork 基于 database/sql 事务的 UnitOfWork 实现
// 每次 Execute 构造一套绑定到该事务的 Repository，不跨事务共享；不支持嵌套
type PostgresUnitOfWork struct {
	db *sql.DB
}

// NewPostgresUnitOfWork 创建 UnitOfWork
func NewPostgresUnitOfWork(db *sql.DB) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db}
}

// 确保实现了接口
var _ UnitOfWork = (*PostgresUnitOfWork)(nil)

// Execute 打开事务执行回调，正常返回提交，出错回滚并透传错误
func (u *PostgresUnitOfWork) Execute(ctx context.Context, fn func(r *Repositories) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	repos := NewPostgresRepositories(tx)
	if err := fn(repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// NewPostgresRepositories 构造绑定到同一句柄（连接池或事务）的 Repository 集合
func NewPostgresRepositories(db DBTX) *Repositories {
	return &Repositories{
		Households:     NewPostgresHouseholdsRepository(db),
		HouseholdUsers: NewPostgresHouseholdUsersRepository(db),
		Tags:           NewPostgresTagsRepository(db),
		Events:         NewPostgresEventsRepository(db),
		Users:          NewPostgresUsersRepository(db),
		Invitations:    NewPostgresInvitationsRepository(db),
		Consumption:    NewPostgresConsumptionRepository(db),
	}
}

// MemoryUnitOfWork 测试用 UnitOfWork：出错时恢复快照，模拟回滚语义
// 快照-恢复对并发读不是原子的，仅用于测试/演示（与 Memory Repository 同一定位）
type MemoryUnitOfWork struct {
	store *MemoryStore
}

// NewMemoryUnitOfWork 创建内存 UnitOfWork
func NewMemoryUnitOfWork(store *MemoryStore) *MemoryUnitOfWork {
	return &MemoryUnitOfWork{store: store}
}

var _ UnitOfWork = (*MemoryUnitOfWork)(nil)

// Execute 执行回调，出错时恢复执行前快照
func (u *MemoryUnitOfWork) Execute(_ context.Context, fn func(r *Repositories) error) error {
	snap := u.store.snapshot()
	if err := fn(NewMemoryRepositories(u.store)); err != nil {
		u.store.restore(snap)
		return err
	}
	return nil
}
