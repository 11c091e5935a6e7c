// Package logger provides structured logging (logrus-based).
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a stderr logger configured for the given environment.
func New(env string) *logrus.Logger {
	return NewWithWriter(env, os.Stderr)
}

// NewWithWriter is New with an explicit destination.
// dev logs debug lines as text, prod logs JSON, everything else only warnings and up.
func NewWithWriter(env string, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev":
		log.SetLevel(logrus.DebugLevel)
	case "prod":
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
