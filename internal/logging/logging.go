package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName  = "run.log"
	maxLogSizeMB = 100
)

// New creates a console slog.Logger with provided level string.
func New(level string) *slog.Logger {
	return newLogger(os.Stdout, level)
}

// Setup builds the process logger once at startup. When dir is set, records are also
// appended to dir/run.log, which is rotated every ISO week; the returned closer
// releases that file.
func Setup(level, dir string) (*slog.Logger, io.Closer, error) {
	if strings.TrimSpace(dir) == "" {
		return New(level), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file := newWeeklyFile(filepath.Join(dir, logFileName), time.Now)

	return newLogger(io.MultiWriter(os.Stdout, file), level), file, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: levelFromString(level),
	})
	return slog.New(handler)
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// weeklyFile rotates the underlying lumberjack file on the first write of a new week.
type weeklyFile struct {
	out *lumberjack.Logger
	now func() time.Time

	mu   sync.Mutex
	week int
}

func newWeeklyFile(path string, now func() time.Time) *weeklyFile {
	w := &weeklyFile{
		out: &lumberjack.Logger{Filename: path, MaxSize: maxLogSizeMB, LocalTime: true},
		now: now,
	}
	// An existing file belongs to the week it was last written in.
	if info, err := os.Stat(path); err == nil {
		w.week = weekKey(info.ModTime())
	} else {
		w.week = weekKey(now())
	}
	return w
}

func (w *weeklyFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if week := weekKey(w.now()); week != w.week {
		if err := w.out.Rotate(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
		w.week = week
	}
	return w.out.Write(p)
}

func (w *weeklyFile) Close() error {
	return w.out.Close()
}

func weekKey(t time.Time) int {
	year, week := t.ISOWeek()
	return year*100 + week
}
