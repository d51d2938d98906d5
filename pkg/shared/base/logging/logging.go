// 指示: miu200521358
// Package logging はログ出力の共通契約と既定ロガーを提供する。
package logging

import (
	"fmt"
	"log"
	"sync"
)

// LogLevel はログレベルを表す。
type LogLevel int

const (
	LOG_LEVEL_DEBUG LogLevel = 10
	LOG_LEVEL_INFO  LogLevel = 20
	LOG_LEVEL_WARN  LogLevel = 30
	LOG_LEVEL_ERROR LogLevel = 40
)

// String はログレベルの表示名を返す。
func (l LogLevel) String() string {
	switch l {
	case LOG_LEVEL_DEBUG:
		return "DEBUG"
	case LOG_LEVEL_INFO:
		return "INFO"
	case LOG_LEVEL_WARN:
		return "WARN"
	case LOG_LEVEL_ERROR:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ILogger はログ出力契約を表す。
type ILogger interface {
	Debug(format string, params ...any)
	Info(format string, params ...any)
	Warn(format string, params ...any)
	Error(format string, params ...any)
	Level() LogLevel
	SetLevel(level LogLevel)
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   ILogger = &stdLogger{level: LOG_LEVEL_INFO}
)

// DefaultLogger は既定ロガーを返す。
func DefaultLogger() ILogger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger は既定ロガーを差し替える。nil は無視する。
func SetDefaultLogger(logger ILogger) {
	if logger == nil {
		return
	}
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}

// stdLogger は標準 log パッケージへ出力する最小ロガー。
type stdLogger struct {
	mu    sync.Mutex
	level LogLevel
}

func (l *stdLogger) output(level LogLevel, format string, params ...any) {
	if level < l.Level() {
		return
	}
	log.Printf("[%s] "+format, append([]any{level}, params...)...)
}

func (l *stdLogger) Debug(format string, params ...any) { l.output(LOG_LEVEL_DEBUG, format, params...) }
func (l *stdLogger) Info(format string, params ...any)  { l.output(LOG_LEVEL_INFO, format, params...) }
func (l *stdLogger) Warn(format string, params ...any)  { l.output(LOG_LEVEL_WARN, format, params...) }
func (l *stdLogger) Error(format string, params ...any) { l.output(LOG_LEVEL_ERROR, format, params...) }

func (l *stdLogger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *stdLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}
