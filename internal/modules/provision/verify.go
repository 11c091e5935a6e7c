package provision

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

const verifyDialTimeout = 5 * time.Second

// MySQLVerifier logs in as the provisioned user over TCP and asks the
// server which database the session is bound to.
type MySQLVerifier struct {
	cfg *mysql.Config
}

// NewMySQLVerifier builds a verifier for the account described by params.
func NewMySQLVerifier(params ScriptParams, addr string) *MySQLVerifier {
	cfg := mysql.NewConfig()
	cfg.User = params.User
	cfg.Passwd = params.Password
	cfg.Net = "tcp"
	cfg.Addr = addr
	cfg.DBName = params.Database
	cfg.Timeout = verifyDialTimeout
	return &MySQLVerifier{cfg: cfg}
}

// DSN returns the driver data source name used for the check.
func (v *MySQLVerifier) DSN() string {
	return v.cfg.FormatDSN()
}

// Verify connects and returns the current database name.
func (v *MySQLVerifier) Verify(ctx context.Context) (string, error) {
	connector, err := mysql.NewConnector(v.cfg)
	if err != nil {
		return "", fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	defer func() {
		_ = db.Close()
	}()

	var name sql.NullString
	if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return "", fmt.Errorf("verify %s@%s: %w", v.cfg.User, v.cfg.Addr, err)
	}
	if !name.Valid || name.String == "" {
		return "", fmt.Errorf("verify %s@%s: no database selected", v.cfg.User, v.cfg.Addr)
	}
	return name.String, nil
}
