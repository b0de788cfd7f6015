package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Setup installs a JSON slog logger as the process default and sizes
// GOMAXPROCS to the container quota.
func Setup(process string, debug bool) (*slog.Logger, error) {
	logger := New(os.Stdout, debug).With("process", process)
	slog.SetDefault(logger)

	_, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...),
			"event", "maxprocs_set",
			"module", "internal/platform/logging",
			"layer", "platform",
		)
	}))
	if err != nil {
		return nil, fmt.Errorf("set maxprocs: %w", err)
	}
	return logger, nil
}

func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: debug,
		Level:     level,
	}))
}
