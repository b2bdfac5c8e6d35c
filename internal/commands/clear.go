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
	Register(&ClearCmd{})
}

// ClearCmd implements the clear command (delete all completed tasks).
type ClearCmd struct{}

func (c *ClearCmd) Name() string      { return "clear" }
func (c *ClearCmd) Aliases() []string { return nil }
func (c *ClearCmd) Synopsis() string  { return "Delete all completed tasks" }
func (c *ClearCmd) Usage() string     { return "tasksync clear [common flags]" }
func (c *ClearCmd) NeedsAuth() bool   { return true }

func (c *ClearCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ClearCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Manager, args []string, out, errOut io.Writer) int {
	syn, items := loadList(ctx, sess)

	cleared := 0
	for _, item := range items {
		if !item.Completed {
			continue
		}
		if err := syn.Delete(ctx, item.ID); err != nil {
			return writeFailure(errOut, err)
		}
		cleared++
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "cleared %d\n", cleared)
	}
	return exitcode.Success
}
