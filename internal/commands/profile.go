package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/api"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/session"
)

func init() {
	Register(&ProfileCmd{})
}

// ProfileCmd implements the profile command (update display name/avatar).
type ProfileCmd struct {
	displayName string
	avatar      string
}

// SetDisplayName sets the display name (for testing).
func (c *ProfileCmd) SetDisplayName(name string) {
	c.displayName = name
}

// SetAvatar sets the avatar reference (for testing).
func (c *ProfileCmd) SetAvatar(avatar string) {
	c.avatar = avatar
}

func (c *ProfileCmd) Name() string      { return "profile" }
func (c *ProfileCmd) Aliases() []string { return nil }
func (c *ProfileCmd) Synopsis() string  { return "Update the user profile" }
func (c *ProfileCmd) Usage() string     { return "tasksync profile [common flags] [--name <display-name>] [--avatar <ref>]" }
func (c *ProfileCmd) NeedsAuth() bool   { return true }

func (c *ProfileCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.displayName, "name", "", "")
	fs.StringVar(&c.avatar, "avatar", "", "")
}

func (c *ProfileCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Manager, args []string, out, errOut io.Writer) int {
	if c.displayName == "" && c.avatar == "" {
		fmt.Fprintln(errOut, "error: nothing to update (use --name or --avatar)")
		return exitcode.UserError
	}

	var patch api.ProfilePatch
	if c.displayName != "" {
		patch.DisplayName = &c.displayName
	}
	if c.avatar != "" {
		patch.Avatar = &c.avatar
	}

	if err := sess.UpdateProfile(ctx, patch); err != nil {
		return writeFailure(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
