package logger_test

import (
	"arbitrage/pkg/logger"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup(t *testing.T) {
	for _, env := range []string{logger.DevelopmentEnvironment, logger.ProductionEnvironment} {
		t.Run(env, func(t *testing.T) {
			require.NotPanics(t, func() { logger.Setup(env) })
			require.NotNil(t, logger.Get(context.Background()))
		})
	}
}

func TestSetup_LevelOverride(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment, "warn")
	require.False(t, logger.IsDebug(context.Background()))

	logger.Setup(logger.ProductionEnvironment, "debug")
	require.True(t, logger.IsDebug(context.Background()))

	// unknown levels keep the environment default
	logger.Setup(logger.DevelopmentEnvironment, "loud")
	require.True(t, logger.IsDebug(context.Background()))
}

func TestGetAndWithLogger(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)
	ctx := context.Background()
	require.NotNil(t, logger.Get(ctx))

	custom, _ := zap.NewDevelopment()
	require.Equal(t, custom, logger.Get(logger.WithLogger(ctx, custom)))
}

func TestWithFieldsAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	ctx = logger.WithFields(ctx, zap.String("category", "sneakers"))
	ctx = logger.Named(ctx, "scanner")
	logger.Info(ctx, "category scanned", zap.Int("deals", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "scanner", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	require.Equal(t, "sneakers", fields["category"])
	require.EqualValues(t, 3, fields["deals"])
}

func TestLoggingFunctions(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)
	ctx := context.Background()

	require.NotPanics(t, func() {
		logger.Debug(ctx, "debug message", zap.String("key", "value"))
		logger.Info(ctx, "info message", zap.String("key", "value"))
		logger.Warn(ctx, "warn message", zap.String("key", "value"))
		logger.Error(ctx, "error message", zap.String("key", "value"))
	})
}
