package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. format is "console" or "json".
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var encoder zapcore.Encoder
	switch format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case "console", "":
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lvl)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// WithComponent names a child logger after the component using it.
func WithComponent(log *zap.Logger, component string) *zap.Logger {
	return log.Named(component)
}

// BotAPILogger routes telegram-bot-api's internal logging through zap.
type BotAPILogger struct {
	s *zap.SugaredLogger
}

func NewBotAPILogger(log *zap.Logger) BotAPILogger {
	return BotAPILogger{s: log.Sugar()}
}

func (l BotAPILogger) Println(v ...interface{}) {
	l.s.Info(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l BotAPILogger) Printf(format string, v ...interface{}) {
	l.s.Infof(format, v...)
}
