package logger

import (
	"context"
	"log/slog"
	"runtime"
)

type conditionalSourceHandler struct {
	handler   slog.Handler
	minSource slog.Level
}

// NewConditionalSourceHandler wraps a handler so that records at or above minSource
// carry a source attribute. The wrapped handler should have AddSource: false.
//
//	handler := NewConditionalSourceHandler(tint.NewHandler(os.Stdout, opts), slog.LevelWarn)
func NewConditionalSourceHandler(handler slog.Handler, minSource slog.Level) slog.Handler {
	return &conditionalSourceHandler{
		handler:   handler,
		minSource: minSource,
	}
}

func (h *conditionalSourceHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.minSource {
		pc := r.PC
		if pc == 0 {
			var pcs [1]uintptr
			runtime.Callers(3, pcs[:])
			pc = pcs[0]
		}
		f, _ := runtime.CallersFrames([]uintptr{pc}).Next()
		r.AddAttrs(slog.Any(slog.SourceKey, &slog.Source{
			Function: f.Function,
			File:     f.File,
			Line:     f.Line,
		}))
	}

	return h.handler.Handle(ctx, r)
}

func (h *conditionalSourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &conditionalSourceHandler{
		handler:   h.handler.WithAttrs(attrs),
		minSource: h.minSource,
	}
}

func (h *conditionalSourceHandler) WithGroup(name string) slog.Handler {
	return &conditionalSourceHandler{
		handler:   h.handler.WithGroup(name),
		minSource: h.minSource,
	}
}

func (h *conditionalSourceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}
