package dao

import (
	"context"
	"errors"
	"testing"
	"time"

	"account-service/pkg/core/account/repository/dao"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormRepoWithMock(t *testing.T) (*GormAccountRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open error: %v", err)
	}

	return NewGormAccountRepository(db), mock
}

var accountColumns = []string{"id", "email", "username", "field", "created_at"}

func TestGormRepository_FindByEmailOrUsername(t *testing.T) {
	repo, mock := newGormRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT `id`,`email`,`username`,`field`,`created_at` FROM `accounts` WHERE .*email = \\? OR username = \\?").
		WillReturnRows(sqlmock.NewRows(accountColumns).AddRow("id-1", "a@x.com", "alice", "Other", now))

	acc, err := repo.FindByEmailOrUsername(context.Background(), "a@x.com", "alice")
	require.NoError(t, err)
	assert.Equal(t, "id-1", acc.ID)
	assert.Equal(t, "alice", acc.Username)
	assert.Empty(t, acc.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_FindByUsernameLoadsHash(t *testing.T) {
	repo, mock := newGormRepoWithMock(t)

	mock.ExpectQuery("SELECT \\* FROM `accounts` WHERE username = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "password_hash", "field", "created_at"}).
			AddRow("id-1", "a@x.com", "alice", "$2a$10$hash", "Other", time.Now()))

	acc, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", acc.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_FindByIDNotFound(t *testing.T) {
	repo, mock := newGormRepoWithMock(t)

	mock.ExpectQuery("FROM `accounts` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows(accountColumns))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, dao.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_QueryFailureIsInternal(t *testing.T) {
	repo, mock := newGormRepoWithMock(t)

	mock.ExpectQuery("FROM `accounts` WHERE id = \\?").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.FindByID(context.Background(), "id-1")
	assert.ErrorIs(t, err, dao.ErrDatabaseInternal)
	assert.NotErrorIs(t, err, dao.ErrAccountNotFound)
}

func TestGormRepository_List(t *testing.T) {
	repo, mock := newGormRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM `accounts` ORDER BY created_at ASC").
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow("id-1", "a@x.com", "alice", "Other", now).
			AddRow("id-2", "b@x.com", "bob", "GenAI", now.Add(time.Second)))

	accs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accs, 2)
	assert.Equal(t, "bob", accs[1].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_CreateAssignsID(t *testing.T) {
	repo, mock := newGormRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `accounts`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	acc := newAccount("a@x.com", "alice")
	require.NoError(t, repo.Create(context.Background(), acc))
	assert.Len(t, acc.ID, 36)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_CreateDuplicate(t *testing.T) {
	repo, mock := newGormRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `accounts`").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'accounts.idx_accounts_username'"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newAccount("a@x.com", "alice"))
	assert.ErrorIs(t, err, dao.ErrDuplicateEntry)
	assert.NoError(t, mock.ExpectationsWereMet())
}
