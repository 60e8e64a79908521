package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger emits JSON log lines through go.uber.org/zap.
// Verbose maps to the debug level and is enabled only in verbose mode.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger creates a JSON logger writing to out.
func NewZapLogger(out io.Writer, verbose bool) *ZapLogger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		level.SetLevel(zap.DebugLevel)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(out), level)
	return &ZapLogger{sugar: zap.New(core).Sugar()}
}

// With returns a logger that adds the given key/value pair to every entry.
func (l *ZapLogger) With(key string, value interface{}) *ZapLogger {
	return &ZapLogger{sugar: l.sugar.With(key, value)}
}

func (l *ZapLogger) Verbose(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *ZapLogger) Info(format string, args ...interface{})    { l.sugar.Infof(format, args...) }
func (l *ZapLogger) Warn(format string, args ...interface{})    { l.sugar.Warnf(format, args...) }
func (l *ZapLogger) Error(format string, args ...interface{})   { l.sugar.Errorf(format, args...) }

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
