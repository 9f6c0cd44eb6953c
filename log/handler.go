package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// formatterHandler adapts a LogFormatter to the slog.Handler interface,
// translating slog.Record values into the package's LogEntry shape before
// handing them to the formatter. It exists so that New/NewWithFormatter can
// offer TextFormatter/ColorFormatter as alternatives to slog's built-in JSON
// handler without every call site needing to know about LogEntry at all.
type formatterHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	formatter LogFormatter
	level     slog.Leveler
	attrs     []slog.Attr
	groups    []string
}

func newFormatterHandler(w io.Writer, formatter LogFormatter, level slog.Leveler) *formatterHandler {
	return &formatterHandler{
		mu:        &sync.Mutex{},
		w:         w,
		formatter: formatter,
		level:     level,
	}
}

// Enabled reports whether records at the given level should be handled.
func (h *formatterHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.level != nil {
		minLevel = h.level.Level()
	}
	return level >= minLevel
}

// slogToLogLevel maps slog's level scale onto the package's LogLevel.
func slogToLogLevel(level slog.Level) LogLevel {
	switch {
	case level >= slog.LevelError:
		return ERROR
	case level >= slog.LevelWarn:
		return WARN
	case level >= slog.LevelInfo:
		return INFO
	default:
		return DEBUG
	}
}

// Handle renders record through h.formatter and writes the result as a
// single line.
func (h *formatterHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make(map[string]interface{}, record.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[h.qualify(a.Key)] = a.Value.Any()
	}
	record.Attrs(func(a slog.Attr) bool {
		fields[h.qualify(a.Key)] = a.Value.Any()
		return true
	})

	entry := LogEntry{
		Timestamp: record.Time,
		Level:     slogToLogLevel(record.Level),
		Message:   record.Message,
		Fields:    fields,
	}

	line := h.formatter.Format(entry)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, line)
	return err
}

func (h *formatterHandler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

// WithAttrs returns a handler whose records carry the given attributes.
func (h *formatterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

// WithGroup returns a handler that qualifies subsequent attribute keys with
// the given group name.
func (h *formatterHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}
