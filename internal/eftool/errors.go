package eftool

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cesarempathy/ef-tools/internal/dispatch"
)

// ErrCommandFailed is matched by every failure of the external tool
var ErrCommandFailed = errors.New("external command failed")

// CommandError reports a failed external tool invocation
type CommandError struct {
	Action   dispatch.Action
	Argv     []string
	ExitCode int
	Err      error // set when the process could not be started
}

func (e *CommandError) Error() string {
	msg := failureMessage(e.Action)
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", msg, strings.Join(e.Argv, " "), e.Err)
	}
	return fmt.Sprintf("%s (exit status %d)", msg, e.ExitCode)
}

// Is makes errors.Is(err, ErrCommandFailed) hold for any CommandError
func (e *CommandError) Is(target error) bool {
	return target == ErrCommandFailed
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func failureMessage(action dispatch.Action) string {
	switch action {
	case dispatch.ActionAdd:
		return "add migration failed, see output for details"
	case dispatch.ActionRemove:
		return "remove migration failed, see output for details"
	case dispatch.ActionOptimize:
		return "optimization failed, see output for details"
	default:
		return ErrCommandFailed.Error()
	}
}
