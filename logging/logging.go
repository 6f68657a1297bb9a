// Package logging builds the logger of a relay node from its
// configuration.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/XC-/relay/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger at cfg.Level, defaulting to info. RELAY_LOG_LEVEL
// is applied by config.Load, not here. The logger writes to stderr unless
// cfg.File names a file, which is then rotated by size.
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	lvl := cfg.Level
	if lvl == "" {
		lvl = "info"
	}
	level, err := logrus.ParseLevel(strings.ToLower(lvl))
	if err != nil {
		return nil, err
	}

	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetOutput(output(cfg))
	return l, nil
}

func output(cfg config.LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
