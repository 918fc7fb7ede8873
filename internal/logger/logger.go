// Package logger initializes the process-wide logrus logger from the
// `logging` config section.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"
)

// Conf holds configuration related to logging
//
// YAML example:
//
//	logging:
//	  dir: /var/log/sheetauth
//	  stderr: true
//	  level: INFO
type Conf struct {
	Dir    string `yaml:"dir"`
	StdErr bool   `yaml:"stderr"`
	Level  string `yaml:"level"`
}

// Validate checks that a configured logging directory exists.
func (c *Conf) Validate() error {
	if c.Level == "" {
		c.Level = "INFO"
	}
	if c.Dir != "" && !fileutils.FileExists(c.Dir) {
		return errors.Errorf("logging directory '%s' does not exist", c.Dir)
	}
	return nil
}

// Init configures the global logrus logger. When a directory is set, logs go
// to sheetauth.log inside it, optionally duplicated to stderr.
func Init(c Conf) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		level = log.InfoLevel
		log.WithField("level", c.Level).Warn("unknown log level, falling back to INFO")
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	var writers []io.Writer
	if c.Dir != "" {
		f, err := os.OpenFile(
			filepath.Join(c.Dir, "sheetauth.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644,
		)
		if err != nil {
			log.WithError(err).Error("could not open log file, logging to stderr only")
		} else {
			writers = append(writers, f)
		}
	}
	if c.StdErr || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}
	log.SetOutput(io.MultiWriter(writers...))
}
