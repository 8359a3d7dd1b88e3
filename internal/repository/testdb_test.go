package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-backend/internal/migration"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB spins up an in-memory sqlite database with the production
// schema. TranslateError is on, as in production, so unique-index
// violations surface as gorm.ErrDuplicatedKey.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))
	return db
}
