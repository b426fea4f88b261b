package log

import (
	"fmt"
	"time"

	"github.com/webhookx-io/showgate/config/modules"
	"github.com/webhookx-io/showgate/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006/01/02 15:04:05.000"

func encoderConfig(cfg *modules.LogConfig) zapcore.EncoderConfig {
	if cfg.Format == modules.LogFormatJson {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
		return c
	}

	c := zap.NewDevelopmentEncoderConfig()
	c.EncodeName = func(loggerName string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(fmt.Sprintf("%-10s", "["+loggerName+"]"))
	}
	c.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(utils.Colorize(t.Format(timeLayout), utils.ColorDarkGray, cfg.Colored))
	}
	if cfg.Colored {
		c.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return c
}

// NewZapLogger builds the process logger and installs it as the zap global.
func NewZapLogger(cfg *modules.LogConfig) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(string(cfg.Level))
	if err != nil {
		return nil, err
	}

	encoding := "console"
	if cfg.Format == modules.LogFormatJson {
		encoding = "json"
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderConfig(cfg),
		OutputPaths:       []string{utils.DefaultIfZero(cfg.File, "stderr")},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(logger)

	return logger.Sugar(), nil
}
