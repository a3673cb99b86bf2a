package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type txRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&txRow{}))
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return gdb
}

func TestRunInTransaction_CommitsAndRollsBack(t *testing.T) {
	gdb := setupTestDB(t)
	tm := NewTransactionManager(gdb, true)
	ctx := context.Background()

	err := tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		return GetTxFromContext(txCtx, gdb).Create(&txRow{Name: "kept"}).Error
	})
	require.NoError(t, err)

	err = tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := GetTxFromContext(txCtx, gdb).Create(&txRow{Name: "dropped"}).Error; err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, gdb.Model(&txRow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRunInTransaction_Disabled(t *testing.T) {
	tm := NewTransactionManager(setupTestDB(t), false)
	called := false

	err := tm.RunInTransaction(context.Background(), func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrTransactionsUnsupported)
	assert.True(t, IsTransactionUnsupported(err))
	assert.False(t, called)
}

func TestIsTransactionUnsupported(t *testing.T) {
	assert.False(t, IsTransactionUnsupported(nil))
	assert.True(t, IsTransactionUnsupported(fmt.Errorf("wrap: %w", ErrTransactionsUnsupported)))
	assert.True(t, IsTransactionUnsupported(fmt.Errorf("Transaction numbers are only allowed on a replica set member or mongos")))
	assert.False(t, IsTransactionUnsupported(fmt.Errorf("duplicate key")))
}
