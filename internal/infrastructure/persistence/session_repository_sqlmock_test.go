package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/portal/backend/internal/domain/shared"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestSessionSaveWithLockSQL(t *testing.T) {
	ctx := context.Background()

	t.Run("guards the update with the version", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewSessionRepository(db)
		session := newTestSession(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "checkout_sessions" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.SaveWithLock(ctx, session))
		assert.Equal(t, 2, session.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows means a concurrent writer won", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewSessionRepository(db)
		session := newTestSession(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "checkout_sessions" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.SaveWithLock(ctx, session)
		assert.ErrorIs(t, err, shared.ErrConcurrentModification)
		assert.Equal(t, 1, session.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
