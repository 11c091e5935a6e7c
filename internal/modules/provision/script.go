// Package provision creates the webcat database, its user and grants by
// running a generated SQL script through the MySQL command-line client.
package provision

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

var (
	identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	hostPattern       = regexp.MustCompile(`^[a-zA-Z0-9_.%:-]+$`)
)

const scriptSource = `
CREATE DATABASE IF NOT EXISTS {{.Database}} CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci;
DROP USER IF EXISTS '{{.User}}'@'{{.Host}}';
CREATE USER '{{.User}}'@'{{.Host}}' IDENTIFIED BY '{{.Password}}';
GRANT ALL PRIVILEGES ON {{.Database}}.* TO '{{.User}}'@'{{.Host}}';
FLUSH PRIVILEGES;
SELECT 'Database setup complete!' as Status;
`

var scriptTemplate = template.Must(template.New("setup.sql").Parse(scriptSource))

// ScriptParams names the objects the script creates.
type ScriptParams struct {
	Database string
	User     string
	Host     string
	Password string
}

// DefaultScriptParams returns the webcat development database settings.
func DefaultScriptParams() ScriptParams {
	return ScriptParams{
		Database: "webcat_db",
		User:     "webcat_dev",
		Host:     "localhost",
		Password: "webcat123",
	}
}

// Script is the rendered provisioning SQL. It is immutable once built.
type Script struct {
	params ScriptParams
	text   string
}

// NewScript validates params and renders the SQL.
func NewScript(params ScriptParams) (Script, error) {
	params.Database = strings.TrimSpace(params.Database)
	params.User = strings.TrimSpace(params.User)
	params.Host = strings.TrimSpace(params.Host)

	if !identifierPattern.MatchString(params.Database) {
		return Script{}, fmt.Errorf("invalid database name %q", params.Database)
	}
	if !identifierPattern.MatchString(params.User) {
		return Script{}, fmt.Errorf("invalid username %q", params.User)
	}
	if !hostPattern.MatchString(params.Host) {
		return Script{}, fmt.Errorf("invalid host %q", params.Host)
	}
	if params.Password == "" {
		return Script{}, fmt.Errorf("password is required")
	}

	escaped := params
	escaped.Password = strings.ReplaceAll(escaped.Password, "\\", "\\\\")
	escaped.Password = strings.ReplaceAll(escaped.Password, "'", "''")

	var b strings.Builder
	if err := scriptTemplate.Execute(&b, escaped); err != nil {
		return Script{}, fmt.Errorf("render setup script: %w", err)
	}
	return Script{params: params, text: b.String()}, nil
}

// Params returns the unescaped values the script was built from.
func (s Script) Params() ScriptParams {
	return s.params
}

// String returns the SQL text.
func (s Script) String() string {
	return s.text
}
