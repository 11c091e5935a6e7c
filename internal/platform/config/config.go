// Package config handles app configuration loading (defaults, YAML file, env, flags).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. WEBCAT_SCRIPT_PATH.
const EnvPrefix = "WEBCAT"

// Config is the runtime configuration for the setup helper.
type Config struct {
	Env          string
	ClientBinary string
	AdminUser    string
	ScriptPath   string
	Database     string
	User         string
	Host         string
	Password     string
	Verify       bool
	VerifyAddr   string
	Timeout      time.Duration
	DryRun       bool
}

// Default returns the values the helper uses when nothing is configured.
func Default() Config {
	return Config{
		Env:          "",
		ClientBinary: "mysql",
		AdminUser:    "root",
		ScriptPath:   "/tmp/webcat_setup.sql",
		Database:     "webcat_db",
		User:         "webcat_dev",
		Host:         "localhost",
		Password:     "webcat123",
		Verify:       false,
		VerifyAddr:   "127.0.0.1:3306",
		Timeout:      0,
		DryRun:       false,
	}
}

// flag name -> config key
var flagKeys = map[string]string{
	"env":           "env",
	"client-binary": "client_binary",
	"admin-user":    "admin_user",
	"script-path":   "script_path",
	"database":      "database",
	"user":          "user",
	"host":          "host",
	"password":      "password",
	"verify":        "verify",
	"verify-addr":   "verify_addr",
	"timeout":       "timeout",
	"dry-run":       "dry_run",
}

// Load merges defaults, an optional YAML file at path, WEBCAT_* env overrides
// and any changed flags, in increasing order of precedence. A missing file is
// not an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := Config{
		Env:          strings.TrimSpace(v.GetString("env")),
		ClientBinary: strings.TrimSpace(v.GetString("client_binary")),
		AdminUser:    strings.TrimSpace(v.GetString("admin_user")),
		ScriptPath:   strings.TrimSpace(v.GetString("script_path")),
		Database:     strings.TrimSpace(v.GetString("database")),
		User:         strings.TrimSpace(v.GetString("user")),
		Host:         strings.TrimSpace(v.GetString("host")),
		Password:     v.GetString("password"),
		Verify:       v.GetBool("verify"),
		VerifyAddr:   strings.TrimSpace(v.GetString("verify_addr")),
		Timeout:      v.GetDuration("timeout"),
		DryRun:       v.GetBool("dry_run"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("env", d.Env)
	v.SetDefault("client_binary", d.ClientBinary)
	v.SetDefault("admin_user", d.AdminUser)
	v.SetDefault("script_path", d.ScriptPath)
	v.SetDefault("database", d.Database)
	v.SetDefault("user", d.User)
	v.SetDefault("host", d.Host)
	v.SetDefault("password", d.Password)
	v.SetDefault("verify", d.Verify)
	v.SetDefault("verify_addr", d.VerifyAddr)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("dry_run", d.DryRun)
}

func (c Config) validate() error {
	if c.ClientBinary == "" {
		return fmt.Errorf("client_binary cannot be empty")
	}
	if c.AdminUser == "" {
		return fmt.Errorf("admin_user cannot be empty")
	}
	if c.ScriptPath == "" {
		return fmt.Errorf("script_path cannot be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	if c.Verify && c.VerifyAddr == "" {
		return fmt.Errorf("verify_addr cannot be empty when verify is enabled")
	}
	return nil
}
