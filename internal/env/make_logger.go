package env

import (
	zap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// MakeLogger builds a JSON logger at the configured level. Logs go to stderr,
// or to a size rotated file when LogFile is set.
func MakeLogger(config *Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zap.WarnLevel)
	if config.LogLevel != "" {
		if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
			return nil, err
		}
	}

	if config.LogFile == "" {
		logConfig := zap.NewProductionConfig()
		logConfig.Level = level
		logConfig.Encoding = "json"

		return logConfig.Build()
	}

	logFile := &lumberjack.Logger{
		Filename:   config.LogFile,
		MaxSize:    config.LogMaxSizeMB,
		MaxBackups: config.LogMaxBackups,
		MaxAge:     config.LogMaxAgeDays,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(logFile),
		level,
	)

	return zap.New(core, zap.AddCaller()), nil
}
