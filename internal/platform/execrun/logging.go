package execrun

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingRunner wraps a Runner and traces every command it runs.
type LoggingRunner struct {
	Delegate Runner
	Log      logrus.FieldLogger
}

// NewLoggingRunner decorates delegate with command logging.
func NewLoggingRunner(delegate Runner, log logrus.FieldLogger) LoggingRunner {
	if delegate == nil {
		delegate = ExecRunner{}
	}
	return LoggingRunner{Delegate: delegate, Log: log}
}

// Run delegates and logs start, outcome and duration.
func (r LoggingRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) (Result, error) {
	command := CommandLine(name, args...)
	startedAt := time.Now()
	entry := r.entry().WithField("command", command)
	entry.WithField("stdin_bytes", len(stdin)).Debug("command start")

	res, err := r.Delegate.Run(ctx, stdin, name, args...)
	duration := time.Since(startedAt).Round(time.Millisecond)
	entry = entry.WithField("duration", duration.String())
	if out := strings.TrimSpace(res.Stdout); out != "" {
		entry = entry.WithField("stdout", out)
	}
	if err != nil {
		entry.WithError(err).Debug("command failed")
		return res, fmt.Errorf("command %q failed after %s: %w", command, duration, err)
	}
	entry.Debug("command ok")
	return res, nil
}

func (r LoggingRunner) entry() logrus.FieldLogger {
	if r.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		return l
	}
	return r.Log
}
