package logger

import (
	"log"
	"log/slog"
)

// Printf adapts a slog.Logger to libraries that expect a Printf-style logger.
// Lines are emitted at the given level with a component attribute.
func Printf(base *slog.Logger, component string, level slog.Level) *log.Logger {
	if base == nil {
		base = slog.Default()
	}
	return slog.NewLogLogger(base.With("component", component).Handler(), level)
}
