// Package logging builds the zap logger used across locomplete. The
// terminal belongs to the TUI, so logs go to a rotating file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// File is the log file. Empty disables logging.
	File  string
	Debug bool
	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB  int
	MaxBackups int
}

// New returns a JSON file logger, or a no-op logger when no file is set.
func New(opts Options) (*zap.Logger, error) {
	if opts.File == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 3
	}

	cfg := zap.NewProductionConfig()
	if opts.Debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.Development = true
	}
	encoderCfg := cfg.EncoderConfig
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotator), cfg.Level)

	zopts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		zopts = append(zopts, zap.Development())
	}
	return zap.New(core, zopts...), nil
}
