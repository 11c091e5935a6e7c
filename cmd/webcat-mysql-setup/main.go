package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"

	"github.com/robsonek/webcat-setup/internal/modules/provision"
	"github.com/robsonek/webcat-setup/internal/platform/config"
	"github.com/robsonek/webcat-setup/internal/platform/execrun"
	"github.com/robsonek/webcat-setup/internal/platform/logger"
	"github.com/robsonek/webcat-setup/internal/platform/notify"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		notify.Errorf(stderr, "%v", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "webcat-mysql-setup",
		Short:         "Create the webcat database, user and grants on a local MySQL server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	d := config.Default()
	flags := cmd.PersistentFlags()
	flags.String("config", "", "optional YAML config file")
	flags.String("env", d.Env, "logging environment (dev enables debug logs, prod logs JSON)")
	flags.String("client-binary", d.ClientBinary, "MySQL client binary")
	flags.String("admin-user", d.AdminUser, "administrative user the client logs in as")
	flags.String("script-path", d.ScriptPath, "where the generated SQL script is written")
	flags.String("database", d.Database, "database to create")
	flags.String("user", d.User, "application user to create")
	flags.String("host", d.Host, "host part of the application account")
	flags.String("password", d.Password, "application user password")
	flags.Bool("verify", d.Verify, "log in as the new user after provisioning")
	flags.String("verify-addr", d.VerifyAddr, "server address used by --verify")
	flags.Duration("timeout", d.Timeout, "deadline for each client invocation (0 disables)")
	flags.Bool("dry-run", d.DryRun, "print client commands instead of running them")

	cmd.AddCommand(newSQLCmd(stdout))
	return cmd
}

func newSQLCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "sql",
		Short: "Print the provisioning SQL and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			script, err := provision.NewScript(scriptParams(cfg))
			if err != nil {
				return err
			}
			notify.Raw(stdout, script.String())
			return nil
		},
	}
}

func runSetup(cmd *cobra.Command, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(cfg.Env, stderr)
	_ = mysql.SetLogger(log)

	script, err := provision.NewScript(scriptParams(cfg))
	if err != nil {
		return err
	}

	opts := provision.Options{
		ScriptPath: cfg.ScriptPath,
		Methods:    provision.DefaultMethods(cfg.ClientBinary, cfg.AdminUser),
		Timeout:    cfg.Timeout,
		Out:        stdout,
		DryRun:     cfg.DryRun,
	}
	if cfg.Verify {
		opts.Verifier = provision.NewMySQLVerifier(script.Params(), cfg.VerifyAddr)
	}
	runner := execrun.NewLoggingRunner(execrun.ExecRunner{DryRun: cfg.DryRun}, log)

	outcome, err := provision.New(script, runner, log, opts).Run(cmd.Context())
	if err != nil {
		return err
	}
	log.WithField("succeeded", outcome.Succeeded).
		WithField("method", outcome.Method).
		WithField("attempts", len(outcome.Attempts)).
		Debug("provisioning finished")
	return nil
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, cmd.Flags())
}

func scriptParams(cfg config.Config) provision.ScriptParams {
	return provision.ScriptParams{
		Database: cfg.Database,
		User:     cfg.User,
		Host:     cfg.Host,
		Password: cfg.Password,
	}
}
