package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger логгер сервиса в printf-стиле поверх zap
type Logger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

// Options параметры логгера
type Options struct {
	File   string // путь к файлу логов, пусто - только stdout
	Level  string // debug, info, warn, error
	Format string // json или console
}

// New создает логгер, пишущий в stdout и (если указан) в файл
func New(file, level string) (*Logger, error) {
	return NewWithOptions(Options{File: file, Level: level, Format: "json"})
}

// NewWithOptions создает логгер с расширенными параметрами
func NewWithOptions(opts Options) (*Logger, error) {
	cfg := zap.NewProductionConfig()

	switch strings.ToLower(opts.Format) {
	case "console":
		cfg.Encoding = "console"
	default:
		cfg.Encoding = "json"
	}

	if opts.Level != "" {
		if err := cfg.Level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if opts.File != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &Logger{base: base, sugar: base.Sugar()}, nil
}

// NewNop создает логгер, который ничего не пишет (для тестов)
func NewNop() *Logger {
	base := zap.NewNop()
	return &Logger{base: base, sugar: base.Sugar()}
}

// Debug пишет отладочное сообщение
func (l *Logger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Info пишет информационное сообщение
func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warn пишет предупреждение
func (l *Logger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error пишет ошибку
func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Fatal пишет ошибку и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
	_ = l.base.Sync()
	os.Exit(1)
}

// Zap возвращает базовый zap.Logger для библиотек со структурным логированием
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

// Close сбрасывает буферы логгера
func (l *Logger) Close() error {
	// Sync для stdout на linux возвращает EINVAL, это не ошибка
	_ = l.base.Sync()
	return nil
}
