package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/session"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `tasksync` (no args) and `tasksync list`.
type ListCmd struct {
	active    bool
	completed bool
}

// SetFilter sets the filter flags (for testing).
func (c *ListCmd) SetFilter(active, completed bool) {
	c.active = active
	c.completed = completed
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "tasksync list [common flags] [--active | --completed]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.active, "active", false, "")
	fs.BoolVar(&c.completed, "completed", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Manager, args []string, out, errOut io.Writer) int {
	if c.active && c.completed {
		fmt.Fprintln(errOut, "error: cannot use both --active and --completed")
		return exitcode.UserError
	}

	_, items := loadList(ctx, sess)

	// Positions stay stable across filters: numbering follows the full
	// ordered collection, not the filtered view.
	completedCount := 0
	for i, item := range items {
		if item.Completed {
			completedCount++
		}
		if c.active && item.Completed {
			continue
		}
		if c.completed && !item.Completed {
			continue
		}
		output.FormatItem(out, i+1, item)
	}

	if len(items) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks")
		}
		return exitcode.Success
	}

	if !cfg.Quiet {
		output.FormatProgress(out, completedCount, len(items))
	}
	return exitcode.Success
}
