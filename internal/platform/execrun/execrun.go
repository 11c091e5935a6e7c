// Package execrun provides exec wrappers used to drive database client binaries.
package execrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// Runner abstracts command execution to support tests and dry-run flows.
// stdin is fed to the child verbatim; nil means an empty stdin.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (Result, error)
}

// Result holds the captured streams of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExitError is returned when a command started but exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("exec %s: exit status %d", e.Command, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += " (" + s + ")"
	}
	return msg
}

// IsExitError reports whether err is (or wraps) an *ExitError.
func IsExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}

// Cause strips command and logging wrappers from err and returns the error
// the OS reported, such as a missing binary or a permission failure.
func Cause(err error) error {
	if err == nil {
		return nil
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return execErr
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr
	}
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err
		}
		err = inner
	}
}

// ExecRunner executes commands using os/exec.
type ExecRunner struct {
	DryRun bool
}

// Run executes a command, capturing stdout and stderr separately.
func (r ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) (Result, error) {
	if r.DryRun {
		return Result{Stdout: "dry-run: " + CommandLine(name, args...)}, nil
	}
	// Command name and args come from the configured method list.
	//nolint:gosec // G204
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, &ExitError{Command: CommandLine(name, args...), Code: res.ExitCode, Stderr: res.Stderr}
		}
		return res, fmt.Errorf("exec %s: %w", CommandLine(name, args...), err)
	}
	return res, nil
}

// CommandLine renders name and args as a single space separated line.
func CommandLine(name string, args ...string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
