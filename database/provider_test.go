package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/stepup/config"
)

type migratedModel struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	CreatedAt time.Time
}

func createTestConfig(driver, dsn string, autoMigrate bool) config.Config {
	return config.Config{
		Database: config.DatabaseConfig{
			Driver:      driver,
			DSN:         dsn,
			AutoMigrate: autoMigrate,
		},
	}
}

func TestProvideDatabase(t *testing.T) {
	t.Run("opens sqlite database", func(t *testing.T) {
		cfg := createTestConfig("sqlite", ":memory:", false)

		db, err := ProvideDatabase(cfg, nil, nil)

		require.NoError(t, err)
		assert.NotNil(t, db)
	})

	t.Run("auto-migrates registered models", func(t *testing.T) {
		cfg := createTestConfig("sqlite", ":memory:", true)

		db, err := ProvideDatabase(cfg, WithModels(&migratedModel{}), nil)

		require.NoError(t, err)
		assert.True(t, db.Migrator().HasTable(&migratedModel{}))
	})

	t.Run("skips migration when disabled", func(t *testing.T) {
		cfg := createTestConfig("sqlite", ":memory:", false)

		db, err := ProvideDatabase(cfg, WithModels(&migratedModel{}), nil)

		require.NoError(t, err)
		assert.False(t, db.Migrator().HasTable(&migratedModel{}))
	})

	t.Run("rejects unsupported driver", func(t *testing.T) {
		cfg := createTestConfig("oracle", "dsn", false)

		db, err := ProvideDatabase(cfg, nil, nil)

		require.Error(t, err)
		assert.Nil(t, db)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}
