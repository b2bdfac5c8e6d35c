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
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	password string
}

// SetPassword sets the password (for testing).
func (c *RegisterCmd) SetPassword(password string) {
	c.password = password
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return nil }
func (c *RegisterCmd) Synopsis() string  { return "Create a new user" }
func (c *RegisterCmd) Usage() string     { return "tasksync register [common flags] [--password <pw>] <username>" }
func (c *RegisterCmd) NeedsAuth() bool   { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Manager, args []string, out, errOut io.Writer) int {
	if sess == nil {
		fmt.Fprintln(errOut, "error: no remote store configured")
		return exitcode.BackendError
	}
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: username required")
		return exitcode.UserError
	}
	username := args[0]

	password := c.password
	if password == "" {
		var err error
		password, err = readPassword(errOut)
		if err != nil {
			fmt.Fprintf(errOut, "error: failed to read password: %v\n", err)
			return exitcode.UserError
		}
	}

	profile, err := sess.Register(ctx, username, password)
	if err != nil {
		return writeFailure(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "registered %s\n", profile.Username)
	}
	return exitcode.Success
}
