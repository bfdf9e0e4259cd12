package dao

import (
	"context"
	"errors"

	"account-service/pkg/core/account/model"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateEntry   = errors.New("duplicate account entry")
	ErrDatabaseInternal = errors.New("database internal error")
)

// AccountRepository 账户存储接口。实现必须自行保证 email 与 username 唯一，冲突时返回 ErrDuplicateEntry
type AccountRepository interface {
	FindByEmailOrUsername(ctx context.Context, email, username string) (model.Account, error)
	// FindByUsername 唯一加载 PasswordHash 的查询
	FindByUsername(ctx context.Context, username string) (model.Account, error)
	FindByID(ctx context.Context, id string) (model.Account, error)
	// List 按创建时间排序
	List(ctx context.Context) ([]model.Account, error)
	// Create 分配 ID 并写入
	Create(ctx context.Context, acc *model.Account) error
}
