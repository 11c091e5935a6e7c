package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "/tmp/webcat_setup.sql", cfg.ScriptPath)
	assert.Equal(t, "mysql", cfg.ClientBinary)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ConfigFileAndEnvOverride(t *testing.T) {
	t.Setenv("WEBCAT_DATABASE", "webcat_env")
	t.Setenv("WEBCAT_TIMEOUT", "30s")

	dir := t.TempDir()
	path := filepath.Join(dir, "setup.yaml")
	err := os.WriteFile(path, []byte(`
database: "webcat_file"
user: "webcat_file_user"
client_binary: "mariadb"
verify: true
`), 0o600)
	require.NoError(t, err)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "webcat_env", cfg.Database, "env wins over file")
	assert.Equal(t, "webcat_file_user", cfg.User)
	assert.Equal(t, "mariadb", cfg.ClientBinary)
	assert.True(t, cfg.Verify)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoad_FlagsWinOverEnv(t *testing.T) {
	t.Setenv("WEBCAT_SCRIPT_PATH", "/tmp/from_env.sql")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("script-path", "", "")
	fs.Bool("dry-run", false, "")
	require.NoError(t, fs.Parse([]string{"--script-path", "/tmp/from_flag.sql", "--dry-run"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from_flag.sql", cfg.ScriptPath)
	assert.True(t, cfg.DryRun)
}

func TestLoad_UnchangedFlagKeepsEnv(t *testing.T) {
	t.Setenv("WEBCAT_SCRIPT_PATH", "/tmp/from_env.sql")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("script-path", "/tmp/flag_default.sql", "")
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from_env.sql", cfg.ScriptPath)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "empty binary", env: map[string]string{"WEBCAT_CLIENT_BINARY": " "}, want: "client_binary"},
		{name: "empty script path", env: map[string]string{"WEBCAT_SCRIPT_PATH": ""}, want: "script_path"},
		{name: "negative timeout", env: map[string]string{"WEBCAT_TIMEOUT": "-1s"}, want: "timeout"},
		{name: "verify without addr", env: map[string]string{"WEBCAT_VERIFY": "true", "WEBCAT_VERIFY_ADDR": ""}, want: "verify_addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
