package provision

import (
	"fmt"
	"slices"
)

// passwordInput answers the client's password prompt with a blank entry.
var passwordInput = []byte("\n")

// Method is one way of authenticating to the database client.
// Prefix holds the binary followed by its authentication arguments.
type Method struct {
	Label  string
	Prefix []string
}

// DefaultMethods returns the attempt order: admin user without a password,
// then admin user answering the password prompt with an empty line.
func DefaultMethods(binary, adminUser string) []Method {
	return []Method{
		{
			Label:  fmt.Sprintf("MySQL %s without password", adminUser),
			Prefix: []string{binary, "-u", adminUser},
		},
		{
			Label:  fmt.Sprintf("MySQL %s with empty password", adminUser),
			Prefix: []string{binary, "-u", adminUser, "-p"},
		},
	}
}

// NeedsPasswordInput reports whether the client will prompt for a password.
func (m Method) NeedsPasswordInput() bool {
	return slices.Contains(m.Prefix, "-p")
}

// Command returns the binary and arguments that source scriptPath.
func (m Method) Command(scriptPath string) (string, []string) {
	if len(m.Prefix) == 0 {
		return "", nil
	}
	args := make([]string, 0, len(m.Prefix)+1)
	args = append(args, m.Prefix[1:]...)
	args = append(args, "-e", "source "+scriptPath)
	return m.Prefix[0], args
}

// Stdin returns what is piped to the client for this method.
func (m Method) Stdin() []byte {
	if m.NeedsPasswordInput() {
		return slices.Clone(passwordInput)
	}
	return nil
}
