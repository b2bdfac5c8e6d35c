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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tasksync help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Manager, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  tasksync                                          List all tasks
  tasksync list [common flags] [--active | --completed]
  tasksync add [common flags] [--priority <p>] [--tag <t>]... <title...>
  tasksync done [common flags] [--undo] <position>
  tasksync edit [common flags] <position> <title...>
  tasksync rm [common flags] <position>
  tasksync mv [common flags] <from> <to>
  tasksync clear [common flags]
  tasksync register [common flags] [--password <p>] <username>
  tasksync login [common flags] [--password <p>] <username>
  tasksync logout [common flags]
  tasksync whoami [common flags]
  tasksync profile [common flags] [--name <n>] [--avatar <url>]
  tasksync help
  tasksync version

Common flags:
  --config <dir>   Override config directory
  --server <url>   Override server URL (or set TASKSYNC_SERVER)
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
