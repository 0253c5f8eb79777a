// Package logging builds the diagnostic logger. The terminal belongs to the
// UI, so diagnostics go to a file and only when a level is requested.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFile is where diagnostics go when no file is configured.
const DefaultFile = ".sbsearch.log"

// New returns a logger writing at level to path and a func closing the file.
// An empty level returns a no-op logger.
func New(path, level string) (*zap.Logger, func() error, error) {
	if strings.TrimSpace(level) == "" {
		return zap.NewNop(), func() error { return nil }, nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if path == "" {
		path = DefaultFile
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), lvl)
	logger := zap.New(core).With(zap.Int("pid", os.Getpid()))

	closeFn := func() error {
		_ = logger.Sync()
		return f.Close()
	}
	return logger, closeFn, nil
}
