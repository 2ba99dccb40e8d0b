package logger

import (
	"io"
	"os"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"
)

const name = "session-gatekeeper"

var (
	mu   sync.RWMutex
	base = newLogger(os.Stdout, hclog.Info)
)

func newLogger(w io.Writer, level hclog.Level) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     w,
		JSONFormat: true,
	})
}

// Init builds the process logger. Unknown levels fall back to info.
func Init(level string) {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}

	mu.Lock()
	base = newLogger(os.Stdout, lvl)
	mu.Unlock()

	Info("logger initialized", map[string]any{"level": lvl.String()})
}

// SetOutput redirects log output, keeping the current level.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = newLogger(w, base.GetLevel())
}

func current() hclog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Debug(msg string, fields map[string]any) {
	current().Debug(msg, pairs(fields)...)
}

func Info(msg string, fields map[string]any) {
	current().Info(msg, pairs(fields)...)
}

func Warn(msg string, fields map[string]any) {
	current().Warn(msg, pairs(fields)...)
}

func Error(msg string, fields map[string]any) {
	current().Error(msg, pairs(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	current().Error(msg, pairs(fields)...)
	os.Exit(1)
}

// pairs flattens fields into hclog's alternating key/value form,
// sorted so output is stable.
func pairs(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, k, fields[k])
	}
	return out
}
