package dao

import (
	"context"
	"sync"

	"account-service/pkg/core/account/model"
	"account-service/pkg/core/account/repository/dao"

	"github.com/google/uuid"
)

// MemoryAccountRepository 进程内存储，Create 在同一把锁内检查唯一键并写入
type MemoryAccountRepository struct {
	mu         sync.RWMutex
	byID       map[string]model.Account
	byEmail    map[string]string
	byUsername map[string]string
	order      []string
}

var _ dao.AccountRepository = (*MemoryAccountRepository)(nil)

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		byID:       make(map[string]model.Account),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func (r *MemoryAccountRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.byEmail[email]; ok {
		return r.byID[id].Public(), nil
	}
	if id, ok := r.byUsername[username]; ok {
		return r.byID[id].Public(), nil
	}
	return model.Account{}, dao.ErrAccountNotFound
}

func (r *MemoryAccountRepository) FindByUsername(ctx context.Context, username string) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return model.Account{}, dao.ErrAccountNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryAccountRepository) FindByID(ctx context.Context, id string) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.byID[id]
	if !ok {
		return model.Account{}, dao.ErrAccountNotFound
	}
	return acc.Public(), nil
}

func (r *MemoryAccountRepository) List(ctx context.Context) ([]model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accs := make([]model.Account, 0, len(r.order))
	for _, id := range r.order {
		accs = append(accs, r.byID[id].Public())
	}
	return accs, nil
}

func (r *MemoryAccountRepository) Create(ctx context.Context, acc *model.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[acc.Email]; taken {
		return dao.ErrDuplicateEntry
	}
	if _, taken := r.byUsername[acc.Username]; taken {
		return dao.ErrDuplicateEntry
	}

	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	r.byID[acc.ID] = *acc
	r.byEmail[acc.Email] = acc.ID
	r.byUsername[acc.Username] = acc.ID
	r.order = append(r.order, acc.ID)
	return nil
}

// Delete 删除账户，服务本身不删除账户，仅供测试与本地工具使用
func (r *MemoryAccountRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	delete(r.byEmail, acc.Email)
	delete(r.byUsername, acc.Username)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
