package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasksync/internal/api"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/session"
	"tasksync/internal/tasklist"
)

func init() {
	Register(&AddCmd{})
}

// tagList collects repeated --tag flags.
type tagList []string

func (t *tagList) String() string {
	return strings.Join(*t, ",")
}

func (t *tagList) Set(value string) error {
	*t = append(*t, value)
	return nil
}

// AddCmd implements the add command.
type AddCmd struct {
	priority string
	tags     tagList
}

// SetPriority sets the priority (for testing).
func (c *AddCmd) SetPriority(priority string) {
	c.priority = priority
}

// SetTags sets the tags (for testing).
func (c *AddCmd) SetTags(tags []string) {
	c.tags = tags
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tasksync add [common flags] [--priority <p>] [--tag <t>]... <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "P", "", "")
	fs.Var(&c.tags, "tag", "")
	fs.Var(&c.tags, "t", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Manager, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	title := strings.Join(args, " ")

	var priority api.Priority
	if c.priority != "" {
		parsed, err := api.ParsePriority(c.priority)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		priority = parsed
	}

	var tags []api.Tag
	for _, raw := range c.tags {
		tag, err := api.ParseTag(raw)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		tags = append(tags, tag)
	}

	syn := tasklist.New(sess.Gateway(), sess)
	if _, err := syn.Add(ctx, title, priority, tags); err != nil {
		if errors.Is(err, tasklist.ErrEmptyTitle) {
			fmt.Fprintln(errOut, "error: title required")
			return exitcode.UserError
		}
		return writeFailure(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
