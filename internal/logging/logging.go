// Package logging builds the service's logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Clark-Hu/gamestore-catalogue/internal/config"
)

const timestampFormat = "2006-01-02 15:04:05"

// Rotation limits for LOG_FILE.
const (
	maxSizeMB  = 10
	maxBackups = 5
	maxAgeDays = 30
)

// New configures a logger from cfg writing to stdout. When cfg.LogFile is
// set, entries also go to a rotating file; the returned close func flushes
// and closes it.
func New(cfg config.Config) (*logrus.Logger, func() error, error) {
	return newWithOutput(cfg, os.Stdout)
}

func newWithOutput(cfg config.Config, stdout io.Writer) (*logrus.Logger, func() error, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	}

	closeFn := func() error { return nil }
	out := stdout
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, nil, err
		}
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(stdout, file)
		closeFn = file.Close
	}
	logger.SetOutput(out)

	return logger, closeFn, nil
}
