package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewService(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		service, err := NewService(Config{
			Level:      Info,
			Format:     "json",
			OutputPath: "stdout",
		})

		require.NoError(t, err)
		assert.NotNil(t, service)
		assert.NotNil(t, service.logger)
		assert.NotNil(t, service.sugar)
	})

	t.Run("console format", func(t *testing.T) {
		service, err := NewService(Config{
			Level:      Debug,
			Format:     "console",
			OutputPath: "stdout",
		})

		require.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("file output", func(t *testing.T) {
		dir := t.TempDir()
		logPath := filepath.Join(dir, "stepup.log")

		service, err := NewService(Config{
			Level:      Info,
			Format:     "json",
			OutputPath: logPath,
		})

		require.NoError(t, err)
		service.Info("written to file")
		require.NoError(t, service.Sync())

		info, err := os.Stat(logPath)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})
}

func TestService_NilSafety(t *testing.T) {
	var service *Service

	assert.NotPanics(t, func() {
		service.Debug("debug")
		service.Info("info")
		service.Warn("warn")
		service.Error("error")
	})
	assert.Nil(t, service.Logger())
	assert.Nil(t, service.Sugar())
	assert.NoError(t, service.Sync())
}

func TestService_LevelFiltering(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	service := &Service{logger: logger, sugar: logger.Sugar()}

	service.Debug("debug message")
	service.Info("info message")
	service.Warn("warn message")
	service.Error("error message", zap.String("key", "value"))

	entries := observed.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "warn message", entries[0].Message)
	assert.Equal(t, "error message", entries[1].Message)
	assert.Equal(t, "value", entries[1].ContextMap()["key"])
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel(Debug))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel(Info))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel(Warn))
	assert.Equal(t, zapcore.ErrorLevel, parseLogLevel(Error))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel(LogLevel("bogus")))
}
