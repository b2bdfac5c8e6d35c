package commands

import (
	"context"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"tasksync/internal/api"
	"tasksync/internal/exitcode"
	"tasksync/internal/session"
	"tasksync/internal/tasklist"
)

// writeFailure prints a classified gateway failure and returns its exit
// code. The core only classifies; user-visible messaging happens here.
func writeFailure(errOut io.Writer, err error) int {
	switch api.KindOf(err) {
	case api.KindUnauthorized:
		fmt.Fprintf(errOut, "error: %s (run: tasksync login)\n", api.Reason(err))
		return exitcode.AuthError
	case api.KindRemoteRejected:
		fmt.Fprintf(errOut, "error: %s\n", api.Reason(err))
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// loadList builds a synchronizer over the session's gateway and performs
// the initial load.
func loadList(ctx context.Context, sess *session.Manager) (*tasklist.Synchronizer, []api.Item) {
	syn := tasklist.New(sess.Gateway(), sess)
	// List reads are absorbed by the gateway, so a load cannot fail here.
	_ = syn.Load(ctx)
	return syn, syn.Items()
}

// resolvePosition maps a 1-based display position onto the loaded items.
func resolvePosition(items []api.Item, pos int) (api.Item, bool) {
	if pos < 1 || len(items) < pos {
		return api.Item{}, false
	}
	return items[pos-1], true
}

// readPassword prompts for a password without echo.
func readPassword(errOut io.Writer) (string, error) {
	fmt.Fprint(errOut, "Enter password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(errOut)
	if err != nil {
		return "", err
	}
	return string(passwordBytes), nil
}
