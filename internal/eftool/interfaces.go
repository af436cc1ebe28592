// Package eftool runs the external Entity Framework Core command-line tool
// for the actions resolved by the dispatcher.
package eftool

import (
	"context"
	"io"

	"github.com/cesarempathy/ef-tools/internal/dispatch"
)

// Command is a fully resolved external process invocation
type Command struct {
	Path   string
	Args   []string
	Dir    string
	Env    []string // appended to the current environment
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Executor starts a command and waits for it to exit.
// This interface enables mocking for unit tests.
type Executor interface {
	// Run returns the exit code of the finished process. err is non-nil only
	// when the process could not be started or waited for.
	Run(ctx context.Context, cmd Command) (exitCode int, err error)
}

// Ensure Runner implements dispatch.Handler
var _ dispatch.Handler = (*Runner)(nil)

// Ensure ExecExecutor implements Executor
var _ Executor = ExecExecutor{}
