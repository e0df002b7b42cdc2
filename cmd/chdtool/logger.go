package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
)

type loggerCtxKey struct{}

func newLogger(w io.Writer, level string, json bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if json {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: "[15:04:05.000]", // millisecond
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if l, ok := a.Value.Any().(slog.Level); ok && l == slog.LevelDebug {
					return tint.Attr(3, slog.String(a.Key, "DBG"))
				}
			}
			return a
		},
	})), nil
}

func withLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, log)
}

// loggerFrom returns the logger stored by the root command, or the default
// logger when none is set.
func loggerFrom(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(loggerCtxKey{}).(*slog.Logger); ok {
		return log
	}
	return slog.Default()
}
