package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// ErrPositionRequired indicates no position argument was provided.
var ErrPositionRequired = errors.New("position required")

// parsePosition parses a 1-based list position from the first argument.
func parsePosition(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrPositionRequired
	}
	arg := args[0]
	if !isAllDigits(arg) {
		return 0, fmt.Errorf("invalid position: %s", arg)
	}
	pos, err := strconv.Atoi(arg)
	if err != nil || pos < 1 {
		return 0, fmt.Errorf("invalid position: %s", arg)
	}
	return pos, nil
}

// isAllDigits checks if a string consists entirely of digits.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
