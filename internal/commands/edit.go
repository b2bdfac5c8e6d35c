package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasksync/internal/api"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/session"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command (rename a task).
type EditCmd struct{}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"rename"} }
func (c *EditCmd) Synopsis() string  { return "Rename a task" }
func (c *EditCmd) Usage() string     { return "tasksync edit [common flags] <position> <title...>" }
func (c *EditCmd) NeedsAuth() bool   { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Manager, args []string, out, errOut io.Writer) int {
	pos, err := parsePosition(args)
	if err != nil {
		if err == ErrPositionRequired {
			fmt.Fprintln(errOut, "error: position required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}

	title := strings.TrimSpace(strings.Join(args[1:], " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	syn, items := loadList(ctx, sess)
	item, ok := resolvePosition(items, pos)
	if !ok {
		fmt.Fprintf(errOut, "error: position out of range: %d\n", pos)
		return exitcode.UserError
	}

	patch := api.ItemPatch{Title: &title}
	if err := syn.Update(ctx, item.ID, patch); err != nil {
		return writeFailure(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
