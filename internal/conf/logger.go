package conf

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process logger and installs it as the default
func NewLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	// stdout belongs to the MCP protocol in relay-mcp, so logs go to stderr
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})

	log := slog.New(h)
	slog.SetDefault(log)
	return log
}
