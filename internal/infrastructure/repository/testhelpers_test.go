package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(models.All()...))
	return gdb
}

func testBucket(t *testing.T, mode, region string, size int) vo.Bucket {
	t.Helper()
	b, err := vo.NewBucket(mode, region, size)
	require.NoError(t, err)
	return b
}

func newTicket(t *testing.T, playerID string, bucket vo.Bucket, enqueuedAt time.Time) *matchmaking.QueueTicket {
	t.Helper()
	tk, err := matchmaking.NewQueueTicket(playerID, bucket, enqueuedAt)
	require.NoError(t, err)
	return tk
}
