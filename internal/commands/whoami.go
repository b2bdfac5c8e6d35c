package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/api"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/session"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the authenticated user" }
func (c *WhoamiCmd) Usage() string     { return "tasksync whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Manager, args []string, out, errOut io.Writer) int {
	if err := sess.Resume(ctx); err != nil {
		if api.IsUnauthorized(err) {
			// The persisted credential was stale; the session cleared it.
			fmt.Fprintln(errOut, "error: session expired (run: tasksync login)")
			return exitcode.AuthError
		}
		// Transient failure: fall back to what the token itself says.
		if username := sess.Username(); username != "" {
			fmt.Fprintln(out, username)
			return exitcode.Success
		}
		return writeFailure(errOut, err)
	}

	if profile := sess.Profile(); profile != nil {
		output.FormatProfile(out, *profile)
	} else if username := sess.Username(); username != "" {
		fmt.Fprintln(out, username)
	}
	return exitcode.Success
}
