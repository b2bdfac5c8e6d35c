package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/session"
	"tasksync/internal/tasklist"
)

func init() {
	Register(&MvCmd{})
}

// MvCmd implements the mv command (move a task to a new position).
type MvCmd struct{}

func (c *MvCmd) Name() string      { return "mv" }
func (c *MvCmd) Aliases() []string { return []string{"move"} }
func (c *MvCmd) Synopsis() string  { return "Move a task to a new position" }
func (c *MvCmd) Usage() string     { return "tasksync mv [common flags] <from> <to>" }
func (c *MvCmd) NeedsAuth() bool   { return true }

func (c *MvCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MvCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Manager, args []string, out, errOut io.Writer) int {
	from, err := parsePosition(args)
	if err != nil {
		if err == ErrPositionRequired {
			fmt.Fprintln(errOut, "error: two positions required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}
	to, err := parsePosition(args[1:])
	if err != nil {
		if err == ErrPositionRequired {
			fmt.Fprintln(errOut, "error: two positions required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}

	syn, _ := loadList(ctx, sess)
	if err := syn.Reorder(ctx, from-1, to-1); err != nil {
		if errors.Is(err, tasklist.ErrIndexOutOfRange) {
			fmt.Fprintln(errOut, "error: position out of range")
			return exitcode.UserError
		}
		return writeFailure(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
