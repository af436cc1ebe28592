// Package dispatch maps the eftools flag vocabulary onto migration actions.
// It scans an argument list once, left to right, and hands every recognized
// flag together with its parameters to a Handler.
package dispatch

import "strings"

// Action identifies one of the recognized flag families
type Action int

// Supported actions. The set is closed; Dispatch switches over all of them.
const (
	ActionAdd Action = iota
	ActionRemove
	ActionOptimize
	ActionBundle // declared but not implemented by the runner
	ActionHelp
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "Add"
	case ActionRemove:
		return "Remove"
	case ActionOptimize:
		return "Optimize"
	case ActionBundle:
		return "Bundle"
	case ActionHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// Arity returns how many tokens following the flag are its parameters
func (a Action) Arity() int {
	switch a {
	case ActionAdd:
		return 2
	case ActionRemove, ActionOptimize, ActionBundle:
		return 1
	default:
		return 0
	}
}

// Table is the immutable flag-to-action mapping. Keys are upper case.
type Table struct {
	entries map[string]Action
}

var defaultTable = NewTable(map[string]Action{
	"-A":         ActionAdd,
	"-ADD":       ActionAdd,
	"-R":         ActionRemove,
	"-REMOVE":    ActionRemove,
	"-O":         ActionOptimize,
	"--OPTIMIZE": ActionOptimize,
	"-B":         ActionBundle,
	"--BUNDLE":   ActionBundle,
	"-H":         ActionHelp,
	"--HELP":     ActionHelp,
})

// DefaultTable returns the flag table shared by every dispatcher
func DefaultTable() *Table {
	return defaultTable
}

// NewTable builds a table from the given entries. The map is copied and
// its keys normalized, so later changes to entries do not leak in.
func NewTable(entries map[string]Action) *Table {
	t := &Table{entries: make(map[string]Action, len(entries))}
	for flag, action := range entries {
		t.entries[strings.ToUpper(flag)] = action
	}
	return t
}

// Lookup resolves a token case-insensitively
func (t *Table) Lookup(token string) (Action, bool) {
	action, ok := t.entries[strings.ToUpper(token)]
	return action, ok
}

// Len returns the number of flag tokens in the table
func (t *Table) Len() int {
	return len(t.entries)
}
