// 指示: miu200521358
package mlogging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
)

const defaultMessageBufferLimit = 1000

// MessageBuffer は直近のログ行を保持する。
type MessageBuffer struct {
	mu    sync.Mutex
	lines []string
	limit int
}

// Append はログ行を追加する。上限を超えた古い行は捨てる。
func (b *MessageBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if b.limit > 0 && len(b.lines) > b.limit {
		b.lines = append([]string(nil), b.lines[len(b.lines)-b.limit:]...)
	}
}

// Lines は保持中のログ行の複製を返す。
func (b *MessageBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Clear は保持中のログ行を破棄する。
func (b *MessageBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}

// Logger は io.Writer とメッセージバッファへ出力するロガー。
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  logging.LogLevel
	buffer *MessageBuffer
	now    func() time.Time
}

// NewLogger はロガーを生成する。out が nil の場合はバッファのみへ出力する。
func NewLogger(out io.Writer) *Logger {
	return &Logger{
		out:    out,
		level:  logging.LOG_LEVEL_INFO,
		buffer: &MessageBuffer{limit: defaultMessageBufferLimit},
		now:    time.Now,
	}
}

// MessageBuffer はメッセージバッファを返す。
func (l *Logger) MessageBuffer() *MessageBuffer {
	return l.buffer
}

// Level は現在のログレベルを返す。
func (l *Logger) Level() logging.LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetLevel はログレベルを設定する。
func (l *Logger) SetLevel(level logging.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Debug はDEBUGログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.write(logging.LOG_LEVEL_DEBUG, format, params...)
}

// Info はINFOログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.write(logging.LOG_LEVEL_INFO, format, params...)
}

// Warn はWARNログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.write(logging.LOG_LEVEL_WARN, format, params...)
}

// Error はERRORログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.write(logging.LOG_LEVEL_ERROR, format, params...)
}

func (l *Logger) write(level logging.LogLevel, format string, params ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	message := strings.TrimRight(fmt.Sprintf(format, params...), "\n")
	line := fmt.Sprintf("[%s] %s", level, message)
	l.buffer.Append(line)
	if l.out == nil {
		return
	}
	fmt.Fprintf(l.out, "%s %s\n", l.now().Format("15:04:05.000"), line)
}
