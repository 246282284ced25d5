package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger builds the console logger. Info and below go to stderr as well so
// stdout stays free for generated output.
func (c *LoggingConfig) Logger() (*zap.Logger, error) {
	var level zapcore.Level
	switch c.Level {
	case "none":
		return zap.NewNop(), nil
	case "debug":
		level = zapcore.DebugLevel
	default:
		level = zapcore.InfoLevel
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), level)
	return zap.New(core), nil
}
