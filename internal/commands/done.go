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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	undo bool
}

// SetUndo sets the undo flag (for testing).
func (c *DoneCmd) SetUndo(undo bool) {
	c.undo = undo
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "tasksync done [common flags] [--undo] <position>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.undo, "undo", false, "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Manager, args []string, out, errOut io.Writer) int {
	pos, err := parsePosition(args)
	if err != nil {
		if err == ErrPositionRequired {
			fmt.Fprintln(errOut, "error: position required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}

	syn, items := loadList(ctx, sess)
	item, ok := resolvePosition(items, pos)
	if !ok {
		fmt.Fprintf(errOut, "error: position out of range: %d\n", pos)
		return exitcode.UserError
	}

	completed := !c.undo
	patch := api.ItemPatch{Completed: &completed}
	if err := syn.Update(ctx, item.ID, patch); err != nil {
		return writeFailure(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
