package provision

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robsonek/webcat-setup/internal/platform/execrun"
	"github.com/robsonek/webcat-setup/internal/platform/notify"
)

const (
	// DefaultScriptPath is where the script is written for the client to source.
	DefaultScriptPath = "/tmp/webcat_setup.sql"

	bannerTitle = "WebCat MySQL Setup Helper"
	bannerRule  = "========================"
)

// Verifier checks the provisioned account once a method has succeeded.
type Verifier interface {
	Verify(ctx context.Context) (string, error)
}

// Options controls where the script goes and how the client is invoked.
type Options struct {
	ScriptPath string
	Methods    []Method
	// Timeout bounds each client invocation. Zero means no deadline.
	Timeout  time.Duration
	Verifier Verifier
	// Out receives operator-facing output. Defaults to os.Stdout.
	Out io.Writer
	// DryRun reports the command the runner was handed instead of claiming
	// success, and skips verification. The runner itself must not execute;
	// a nil runner becomes execrun.ExecRunner{DryRun: true}.
	DryRun bool
}

// Attempt records one method invocation.
type Attempt struct {
	Method    string
	Succeeded bool
	Err       error
}

// Outcome summarises a provisioning run.
type Outcome struct {
	Succeeded bool
	DryRun    bool
	Method    string
	Attempts  []Attempt
}

// Provisioner writes the setup script and runs it with the first method that works.
type Provisioner struct {
	script Script
	runner execrun.Runner
	log    logrus.FieldLogger
	opts   Options
}

// New returns a configured provisioner.
func New(script Script, runner execrun.Runner, log logrus.FieldLogger, opts Options) *Provisioner {
	if runner == nil {
		runner = execrun.ExecRunner{DryRun: opts.DryRun}
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if strings.TrimSpace(opts.ScriptPath) == "" {
		opts.ScriptPath = DefaultScriptPath
	}
	if opts.Methods == nil {
		opts.Methods = DefaultMethods("mysql", "root")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Provisioner{
		script: script,
		runner: runner,
		log:    log,
		opts:   opts,
	}
}

// Run writes the script and tries each method in order, stopping at the
// first one whose client invocation exits zero. Failed methods are reported
// and skipped. When every method fails the SQL is printed for manual use.
// Only a failure to write the script is returned as an error.
func (p *Provisioner) Run(ctx context.Context) (Outcome, error) {
	out := p.opts.Out
	notify.Titlef(out, bannerRule, bannerTitle)

	if err := p.writeScript(); err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{Attempts: make([]Attempt, 0, len(p.opts.Methods))}
	for _, m := range p.opts.Methods {
		notify.Activityf(out, "Trying: %s", m.Label)

		res, err := p.attempt(ctx, m)
		outcome.Attempts = append(outcome.Attempts, Attempt{Method: m.Label, Succeeded: err == nil && !p.opts.DryRun, Err: err})
		if err == nil && p.opts.DryRun {
			p.reportDryRun(m, res)
			outcome.DryRun = true
			outcome.Method = m.Label
			return outcome, nil
		}
		if err == nil {
			notify.Successf(out, "Success!")
			notify.Raw(out, "Database and user created successfully.\n")
			outcome.Succeeded = true
			outcome.Method = m.Label
			p.verify(ctx)
			return outcome, nil
		}

		p.log.WithField("method", m.Label).WithError(err).Info("provisioning method failed")
		if exitErr, ok := execrun.IsExitError(err); ok {
			detail := strings.TrimRight(exitErr.Stderr, "\r\n")
			if strings.TrimSpace(detail) == "" {
				detail = exitErr.Error()
			}
			notify.WriteMessage(notify.Message{
				Type:     notify.ErrorType,
				Content:  "Failed: %s",
				Args:     []any{detail},
				Writer:   out,
				Verbatim: true,
			})
			continue
		}
		notify.Errorf(out, "Error: %v", execrun.Cause(err))
	}

	notify.Blank(out)
	notify.Raw(out, "All automated methods failed.\n")
	notify.Blank(out)
	notify.Raw(out, "Please run MySQL manually and execute:\n")
	notify.Raw(out, p.script.String())
	notify.Blank(out)
	return outcome, nil
}

func (p *Provisioner) writeScript() error {
	// Overwrites any previous content; the file is left in place afterwards.
	//nolint:gosec // G306
	if err := os.WriteFile(p.opts.ScriptPath, []byte(p.script.String()), 0o644); err != nil {
		return fmt.Errorf("write setup script %s: %w", p.opts.ScriptPath, err)
	}
	p.log.WithField("path", p.opts.ScriptPath).Debug("setup script written")
	return nil
}

func (p *Provisioner) attempt(ctx context.Context, m Method) (execrun.Result, error) {
	name, args := m.Command(p.opts.ScriptPath)
	if name == "" {
		return execrun.Result{}, fmt.Errorf("method %q has no command", m.Label)
	}
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}
	return p.runner.Run(ctx, m.Stdin(), name, args...)
}

func (p *Provisioner) reportDryRun(m Method, res execrun.Result) {
	line := strings.TrimSpace(res.Stdout)
	if line == "" {
		name, args := m.Command(p.opts.ScriptPath)
		line = "dry-run: " + execrun.CommandLine(name, args...)
	}
	notify.Infof(p.opts.Out, "%s", line)
	if m.NeedsPasswordInput() {
		notify.Infof(p.opts.Out, "dry-run: stdin would receive one empty line")
	}
	notify.Warningf(p.opts.Out, "Dry run: nothing was executed, %s was written", p.opts.ScriptPath)
}

func (p *Provisioner) verify(ctx context.Context) {
	if p.opts.Verifier == nil {
		return
	}
	db, err := p.opts.Verifier.Verify(ctx)
	if err != nil {
		notify.Warningf(p.opts.Out, "Verification failed: %v", err)
		return
	}
	params := p.script.Params()
	notify.Infof(p.opts.Out, "Verified: %s can connect to %s", params.User, db)
}
