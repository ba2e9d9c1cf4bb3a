package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the structured logger used by the background engines and
// application wiring. LOG_LEVEL selects debug/info/warn/error, default info.
func NewLogger(level string) (*zap.Logger, error) {
	var zlevel zapcore.Level
	if err := zlevel.Set(level); err != nil {
		zlevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zlevel)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
