package database

import (
	"path/filepath"
	"testing"

	"campus_desk_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type migrateSample struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestNewGORM_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:       "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "test.db"),
		DBMaxIdleConns: 1,
		DBMaxOpenConns: 1,
		LogLevel:       "silent",
	}
	logger := zap.NewNop()

	db, err := NewGORM(cfg, logger)
	require.NoError(t, err)
	defer CloseGORMDB(db, logger)

	require.NoError(t, AutoMigrate(db, &migrateSample{}))
	require.NoError(t, db.Create(&migrateSample{Name: "sample"}).Error)

	var count int64
	require.NoError(t, db.Model(&migrateSample{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
