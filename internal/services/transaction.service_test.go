package services

import (
	"context"
	"errors"
	"testing"
	"turnover/internal/database"
	"turnover/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTransactionTest(t *testing.T) database.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := database.DB{SQL: gormDB}
	require.NoError(t, db.MigrateModels())

	return db
}

func createWorkerInTx(tx *gorm.DB) error {
	return tx.Create(&models.Worker{
		FirstName: "Tx",
		LastName:  "Worker",
		Email:     uuid.NewString() + "@example.com",
		Active:    true,
	}).Error
}

func countWorkers(t *testing.T, db database.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.SQL.Model(&models.Worker{}).Count(&count).Error)
	return count
}

func TestTransactionService_Execute_Commits(t *testing.T) {
	db := setupTransactionTest(t)
	service := NewTransactionService(db)

	err := service.Execute(context.Background(), func(ctx context.Context, tx *gorm.DB) error {
		return createWorkerInTx(tx)
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), countWorkers(t, db))
}

func TestTransactionService_Execute_RollsBackOnError(t *testing.T) {
	db := setupTransactionTest(t)
	service := NewTransactionService(db)

	expected := errors.New("boom")
	err := service.Execute(context.Background(), func(ctx context.Context, tx *gorm.DB) error {
		if err := createWorkerInTx(tx); err != nil {
			return err
		}
		return expected
	})

	assert.ErrorIs(t, err, expected)
	assert.Equal(t, int64(0), countWorkers(t, db))
}

func TestTransactionService_Execute_RollsBackOnPanic(t *testing.T) {
	db := setupTransactionTest(t)
	service := NewTransactionService(db)

	err := service.Execute(context.Background(), func(ctx context.Context, tx *gorm.DB) error {
		if err := createWorkerInTx(tx); err != nil {
			return err
		}
		panic("mid-transaction panic")
	})

	assert.Error(t, err)
	assert.Equal(t, int64(0), countWorkers(t, db))
}
