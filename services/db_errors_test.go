package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-ops/apperrors"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestStorageFailuresSurfaceAsDBError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

	rooms := NewRoomService(db, NewBlockageService(db, nil, quietLogger(), nil), quietLogger(), nil)
	_, err := rooms.ListRooms(context.Background(), "est-1", RoomFilter{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDB, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDuplicateEntryIsDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.fr' for key 'email'"})
	mock.ExpectRollback()

	users := NewUserService(db, quietLogger())
	_, err := users.CreateUser(context.Background(), UserInput{Email: "a@b.fr", Password: "secret1"})
	assert.True(t, apperrors.Is(err, apperrors.CodeDuplicate), "got %v", err)
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, isDuplicate(nil))
	assert.True(t, isDuplicate(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicate(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, isDuplicate(errors.New(`pq: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.False(t, isDuplicate(errors.New("connection refused")))
}
