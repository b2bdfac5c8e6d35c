// Package api defines the remote store contract shared by the gateway,
// the session manager, and the task list synchronizer.
package api

import (
	"fmt"
	"strings"
)

// Priority is the optional priority of a task item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority parses a priority value (case-insensitive, trimmed).
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("invalid priority: %s", s)
}

// Tag is an optional category tag on a task item.
type Tag string

const (
	TagWork     Tag = "work"
	TagPersonal Tag = "personal"
	TagShopping Tag = "shopping"
	TagHealth   Tag = "health"
	TagOther    Tag = "other"
)

// ParseTag parses a tag value (case-insensitive, trimmed).
func ParseTag(s string) (Tag, error) {
	switch Tag(strings.ToLower(strings.TrimSpace(s))) {
	case TagWork:
		return TagWork, nil
	case TagPersonal:
		return TagPersonal, nil
	case TagShopping:
		return TagShopping, nil
	case TagHealth:
		return TagHealth, nil
	case TagOther:
		return TagOther, nil
	}
	return "", fmt.Errorf("invalid tag: %s", s)
}

// Item is a single task item. The id and order are assigned by the remote
// store; order is unique and dense (0..n-1) within one user's list at any
// settled state.
type Item struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Completed bool     `json:"completed"`
	Order     int      `json:"order"`
	Priority  Priority `json:"priority,omitempty"`
	Tags      []Tag    `json:"tags,omitempty"`
}

// ItemPatch is a partial item update. Nil fields are left unchanged by the
// remote store.
type ItemPatch struct {
	Title     *string   `json:"title,omitempty"`
	Completed *bool     `json:"completed,omitempty"`
	Order     *int      `json:"order,omitempty"`
	Priority  *Priority `json:"priority,omitempty"`
	Tags      *[]Tag    `json:"tags,omitempty"`
}

// OrderUpdate assigns a new order value to an item during reorder.
type OrderUpdate struct {
	ID    int64 `json:"id"`
	Order int   `json:"order"`
}

// Profile is the authenticated user's profile.
type Profile struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// ProfilePatch is a partial profile update.
type ProfilePatch struct {
	DisplayName *string `json:"display_name,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}
