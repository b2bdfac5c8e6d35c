// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"tasksync/internal/api"
)

// FormatItem formats a task line.
// Format: "{N:>4}  [ ] {TITLE}" with an optional "({priority})" marker and
// "#tag" suffixes.
func FormatItem(w io.Writer, num int, item api.Item) {
	box := "[ ]"
	if item.Completed {
		box = "[x]"
	}
	line := fmt.Sprintf("%4d  %s %s", num, box, normalizeTitle(item.Title))
	if item.Priority != "" {
		line += fmt.Sprintf("  (%s)", item.Priority)
	}
	for _, tag := range item.Tags {
		line += " #" + string(tag)
	}
	fmt.Fprintln(w, line)
}

// FormatProgress formats the completion summary line.
func FormatProgress(w io.Writer, completed, total int) {
	fmt.Fprintf(w, "%d/%d done\n", completed, total)
}

// FormatProfile formats the whoami output.
func FormatProfile(w io.Writer, profile api.Profile) {
	fmt.Fprintln(w, profile.Username)
	if profile.DisplayName != "" {
		fmt.Fprintf(w, "name: %s\n", profile.DisplayName)
	}
	if profile.Avatar != "" {
		fmt.Fprintf(w, "avatar: %s\n", profile.Avatar)
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
