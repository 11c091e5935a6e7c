package execrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerRun_PipesStdin(t *testing.T) {
	t.Parallel()

	res, err := ExecRunner{}.Run(context.Background(), []byte("\n"), "sh", "-c", "cat")
	require.NoError(t, err)
	assert.Equal(t, "\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}

func TestExecRunnerRun_NilStdinIsEmpty(t *testing.T) {
	t.Parallel()

	res, err := ExecRunner{}.Run(context.Background(), nil, "sh", "-c", "cat")
	require.NoError(t, err)
	assert.Empty(t, res.Stdout)
}

func TestExecRunnerRun_NonZeroExit(t *testing.T) {
	t.Parallel()

	res, err := ExecRunner{}.Run(context.Background(), nil, "sh", "-c", "echo access denied >&2; exit 3")
	require.Error(t, err)

	exitErr, ok := IsExitError(err)
	require.True(t, ok, "expected ExitError, got %T", err)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "access denied\n", exitErr.Stderr)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, err.Error(), "exit status 3 (access denied)")
}

func TestExecRunnerRun_MissingBinary(t *testing.T) {
	t.Parallel()

	_, err := ExecRunner{}.Run(context.Background(), nil, "webcat-definitely-missing-binary")
	require.Error(t, err)

	_, ok := IsExitError(err)
	assert.False(t, ok)
	assert.Equal(t, `exec: "webcat-definitely-missing-binary": executable file not found in $PATH`, Cause(err).Error())
}

func TestCause(t *testing.T) {
	t.Parallel()

	root := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: root, want: "boom"},
		{name: "wrapped twice", err: fmt.Errorf("command failed after 0s: %w", fmt.Errorf("exec x: %w", root)), want: "boom"},
		{
			name: "exec error keeps binary name",
			err:  fmt.Errorf("command failed: %w", &exec.Error{Name: "mysql", Err: exec.ErrNotFound}),
			want: `exec: "mysql": executable file not found in $PATH`,
		},
		{
			name: "path error keeps path",
			err:  fmt.Errorf("exec /opt/mysql: %w", &fs.PathError{Op: "fork/exec", Path: "/opt/mysql", Err: fs.ErrPermission}),
			want: "fork/exec /opt/mysql: permission denied",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Cause(tt.err)
			if tt.want == "" {
				assert.NoError(t, got)
				return
			}
			require.Error(t, got)
			assert.Equal(t, tt.want, got.Error())
		})
	}
}

func TestLoggingRunner_CauseDropsWrappers(t *testing.T) {
	t.Parallel()

	r := NewLoggingRunner(ExecRunner{}, nil)
	_, err := r.Run(context.Background(), nil, "webcat-definitely-missing-binary", "-u", "root")
	require.Error(t, err)
	assert.Equal(t, `exec: "webcat-definitely-missing-binary": executable file not found in $PATH`, Cause(err).Error())
}

func TestExecRunnerRun_DryRun(t *testing.T) {
	t.Parallel()

	res, err := ExecRunner{DryRun: true}.Run(context.Background(), nil, "mysql", "-u", "root")
	require.NoError(t, err)
	assert.Equal(t, "dry-run: mysql -u root", res.Stdout)
}

type stubRunner struct {
	res Result
	err error
}

func (s stubRunner) Run(context.Context, []byte, string, ...string) (Result, error) {
	return s.res, s.err
}

func TestLoggingRunner_KeepsExitError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	inner := &ExitError{Command: "mysql -u root", Code: 1, Stderr: "denied"}
	r := NewLoggingRunner(stubRunner{err: inner}, log)

	_, err := r.Run(context.Background(), nil, "mysql", "-u", "root")
	require.Error(t, err)

	exitErr, ok := IsExitError(err)
	require.True(t, ok)
	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, "denied", exitErr.Stderr)
	assert.Contains(t, buf.String(), "command failed")
	assert.Contains(t, buf.String(), "mysql -u root")
}

func TestLoggingRunner_NilLogger(t *testing.T) {
	t.Parallel()

	r := NewLoggingRunner(stubRunner{res: Result{Stdout: "ok"}}, nil)
	res, err := r.Run(context.Background(), nil, "true")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Stdout)
}
