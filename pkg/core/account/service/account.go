package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "account-service/pkg/common/errors"
	"account-service/pkg/core/account/model"
	"account-service/pkg/core/account/repository/dao"
	"account-service/pkg/core/credential"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 30
	MinPasswordLen = 6
)

var emailRegex = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// Store 负责校验、密码加密与持久化
type Store struct {
	repo   dao.AccountRepository
	hasher credential.Hasher
	now    func() time.Time
}

func NewStore(repo dao.AccountRepository, hasher credential.Hasher) *Store {
	return &Store{repo: repo, hasher: hasher, now: time.Now}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) FindByEmailOrUsername(ctx context.Context, email, username string) (model.Account, error) {
	acc, err := s.repo.FindByEmailOrUsername(ctx, NormalizeEmail(email), username)
	return acc, translate(err)
}

// FindByUsername 返回值包含密码哈希
func (s *Store) FindByUsername(ctx context.Context, username string) (model.Account, error) {
	acc, err := s.repo.FindByUsername(ctx, username)
	return acc, translate(err)
}

func (s *Store) FindByID(ctx context.Context, id string) (model.Account, error) {
	acc, err := s.repo.FindByID(ctx, id)
	return acc.Public(), translate(err)
}

func (s *Store) ListAll(ctx context.Context) ([]model.Account, error) {
	accs, err := s.repo.List(ctx)
	if err != nil {
		return nil, translate(err)
	}
	for i := range accs {
		accs[i] = accs[i].Public()
	}
	return accs, nil
}

// Insert 注册新账户。预检查只是快速路径，并发注册时以存储层唯一约束为准
func (s *Store) Insert(ctx context.Context, draft model.Draft) (model.Account, error) {
	acc, err := s.validate(draft)
	if err != nil {
		return model.Account{}, err
	}

	if err := s.checkAvailable(ctx, acc.Email, acc.Username); err != nil {
		return model.Account{}, err
	}

	hash, err := s.hasher.Hash(draft.Password)
	if err != nil {
		if errors.Is(err, credential.ErrPasswordTooLong) {
			return model.Account{}, apperrors.ErrLongPassword
		}
		return model.Account{}, apperrors.StoreFault(err)
	}
	acc.PasswordHash = hash

	if err := s.repo.Create(ctx, &acc); err != nil {
		if errors.Is(err, dao.ErrDuplicateEntry) {
			hlog.CtxInfof(ctx, "registration lost uniqueness race username=%s", acc.Username)
			return model.Account{}, s.classifyDuplicate(ctx, acc.Email, acc.Username)
		}
		return model.Account{}, apperrors.StoreFault(err)
	}

	return acc.Public(), nil
}

func (s *Store) validate(draft model.Draft) (model.Account, error) {
	email := NormalizeEmail(draft.Email)
	if !emailRegex.MatchString(email) {
		return model.Account{}, apperrors.ErrInvalidEmail
	}

	if n := utf8.RuneCountInString(draft.Username); n < MinUsernameLen || n > MaxUsernameLen {
		return model.Account{}, apperrors.ErrInvalidUsername
	}

	if utf8.RuneCountInString(draft.Password) < MinPasswordLen {
		return model.Account{}, apperrors.ErrShortPassword
	}

	field := draft.Field
	if field == "" {
		field = model.FieldOther
	}
	if !model.IsValidField(field) {
		return model.Account{}, apperrors.ErrInvalidField
	}

	return model.Account{
		Email:     email,
		Username:  draft.Username,
		Field:     field,
		CreatedAt: s.now().UTC(),
	}, nil
}

func (s *Store) checkAvailable(ctx context.Context, email, username string) error {
	existing, err := s.repo.FindByEmailOrUsername(ctx, email, username)
	switch {
	case errors.Is(err, dao.ErrAccountNotFound):
		return nil
	case err != nil:
		return apperrors.StoreFault(err)
	case existing.Email == email:
		return apperrors.ErrDuplicateEmail
	default:
		return apperrors.ErrDuplicateUsername
	}
}

// classifyDuplicate 唯一约束冲突后重新查询，判断冲突字段
func (s *Store) classifyDuplicate(ctx context.Context, email, username string) error {
	err := s.checkAvailable(ctx, email, username)
	if err == nil || apperrors.IsStoreFault(err) {
		return apperrors.ErrDuplicateAccount
	}
	return err
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dao.ErrAccountNotFound):
		return apperrors.ErrAccountNotFound
	default:
		return apperrors.StoreFault(err)
	}
}
