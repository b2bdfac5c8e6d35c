package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/session"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
}

// SetPassword sets the password (for testing).
func (c *LoginCmd) SetPassword(password string) {
	c.password = password
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authenticate with the store" }
func (c *LoginCmd) Usage() string     { return "tasksync login [common flags] [--password <pw>] <username>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Manager, args []string, out, errOut io.Writer) int {
	if sess == nil {
		fmt.Fprintln(errOut, "error: no remote store configured")
		return exitcode.BackendError
	}
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: username required")
		return exitcode.UserError
	}
	username := args[0]

	// Already holding a credential: nothing to do.
	if sess.IsAuthenticated() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	password := c.password
	if password == "" {
		var err error
		password, err = readPassword(errOut)
		if err != nil {
			fmt.Fprintf(errOut, "error: failed to read password: %v\n", err)
			return exitcode.UserError
		}
	}

	if err := sess.Login(ctx, username, password); err != nil {
		return writeFailure(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
