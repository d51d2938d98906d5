// 指示: miu200521358
package mlogging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
)

func TestLoggerFiltersByLevelAndBuffersLines(t *testing.T) {
	out := bytes.NewBuffer(nil)
	logger := NewLogger(out)
	logger.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	logger.SetLevel(logging.LOG_LEVEL_WARN)

	logger.Info("スキップされる: %d", 1)
	logger.Warn("ボーン未設定: %s", "Head")

	lines := logger.MessageBuffer().Lines()
	if len(lines) != 1 {
		t.Fatalf("line count mismatch: got=%d want=1 lines=%v", len(lines), lines)
	}
	if lines[0] != "[WARN] ボーン未設定: Head" {
		t.Fatalf("line mismatch: got=%s", lines[0])
	}
	if !strings.HasPrefix(out.String(), "03:04:05.000 [WARN]") {
		t.Fatalf("writer output mismatch: got=%q", out.String())
	}

	logger.MessageBuffer().Clear()
	if got := len(logger.MessageBuffer().Lines()); got != 0 {
		t.Fatalf("buffer should be empty after clear: got=%d", got)
	}
}

func TestMessageBufferDropsOldestLinesOverLimit(t *testing.T) {
	buffer := &MessageBuffer{limit: 2}
	buffer.Append("a")
	buffer.Append("b")
	buffer.Append("c")

	lines := buffer.Lines()
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("buffer lines mismatch: got=%v", lines)
	}
}

func TestSetDefaultLoggerIgnoresNil(t *testing.T) {
	logger := NewLogger(nil)
	prevLogger := logging.DefaultLogger()
	logging.SetDefaultLogger(logger)
	t.Cleanup(func() {
		logging.SetDefaultLogger(prevLogger)
	})

	logging.SetDefaultLogger(nil)
	if logging.DefaultLogger() != logger {
		t.Fatalf("default logger should not be replaced by nil")
	}
}
