package dao

import (
	"context"
	"errors"
	"fmt"

	"account-service/pkg/core/account/model"
	"account-service/pkg/core/account/repository/dao"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// publicColumns 不含 password_hash
var publicColumns = []string{"id", "email", "username", "field", "created_at"}

type GormAccountRepository struct {
	db *gorm.DB
}

var _ dao.AccountRepository = (*GormAccountRepository)(nil)

func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

func (r *GormAccountRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (model.Account, error) {
	var acc model.Account
	err := r.db.WithContext(ctx).
		Select(publicColumns).
		Where("email = ? OR username = ?", email, username).
		Take(&acc).Error
	if err != nil {
		return model.Account{}, fmt.Errorf("%w: uniqueness lookup failed", wrapGormError(err))
	}
	return acc, nil
}

// 登录校验用，唯一查询 password_hash 的方法
func (r *GormAccountRepository) FindByUsername(ctx context.Context, username string) (model.Account, error) {
	var acc model.Account
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Take(&acc).Error
	if err != nil {
		return model.Account{}, fmt.Errorf("%w: credentials lookup failed", wrapGormError(err))
	}
	return acc, nil
}

func (r *GormAccountRepository) FindByID(ctx context.Context, id string) (model.Account, error) {
	var acc model.Account
	err := r.db.WithContext(ctx).
		Select(publicColumns).
		Where("id = ?", id).
		Take(&acc).Error
	if err != nil {
		return model.Account{}, fmt.Errorf("%w: account query failed", wrapGormError(err))
	}
	return acc, nil
}

func (r *GormAccountRepository) List(ctx context.Context) ([]model.Account, error) {
	var accs []model.Account
	err := r.db.WithContext(ctx).
		Select(publicColumns).
		Order("created_at ASC").
		Find(&accs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: account listing failed", wrapGormError(err))
	}
	return accs, nil
}

func (r *GormAccountRepository) Create(ctx context.Context, acc *model.Account) error {
	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(acc).Error; err != nil {
		if isDuplicateError(err) {
			return dao.ErrDuplicateEntry
		}
		return fmt.Errorf("%w: account creation failed", wrapGormError(err))
	}
	return nil
}

func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func wrapGormError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dao.ErrAccountNotFound
	}

	if isDuplicateError(err) {
		return dao.ErrDuplicateEntry
	}

	return fmt.Errorf("%w: %v", dao.ErrDatabaseInternal, err)
}
