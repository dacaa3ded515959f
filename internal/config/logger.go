package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger from the log section. Output goes to
// stderr so command output on stdout stays clean.
func NewLogger(c Log) (*logrus.Logger, error) {
	return newLogger(c, os.Stderr)
}

func newLogger(c Log, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	if c.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level := logrus.InfoLevel
	if c.Level != "" {
		var err error
		if level, err = logrus.ParseLevel(c.Level); err != nil {
			return nil, err
		}
	}
	log.SetLevel(level)
	return log, nil
}
