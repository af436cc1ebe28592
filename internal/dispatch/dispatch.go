package dispatch

import (
	"context"
	"fmt"
)

// Handler performs the work bound to each action.
// Implementations must be safe to call sequentially; calls never overlap.
type Handler interface {
	// Add creates a new migration named name in project.
	Add(ctx context.Context, project, name string) error

	// Remove drops the last migration of project.
	Remove(ctx context.Context, project string) error

	// Optimize generates the compiled model for the project's DbContext.
	Optimize(ctx context.Context, project string) error

	// Bundle is reserved for building a migration bundle.
	Bundle(ctx context.Context, project string) error

	// Help prints usage.
	Help(ctx context.Context) error
}

// Call is a recognized flag resolved together with its parameters
type Call struct {
	Action Action
	Flag   string // token as it appeared on the command line
	Params []string
}

// Dispatcher routes argument lists to a Handler
type Dispatcher struct {
	table   *Table
	handler Handler
}

// New creates a Dispatcher. A nil table selects DefaultTable.
func New(table *Table, handler Handler) *Dispatcher {
	if table == nil {
		table = DefaultTable()
	}
	return &Dispatcher{table: table, handler: handler}
}

// Scan resolves args into calls using the dispatcher's table
func (d *Dispatcher) Scan(args []string) []Call {
	return Scan(d.table, args)
}

// Scan walks args once, left to right. A recognized flag always opens a
// skip window of its arity, even when too few tokens follow it to form a
// call; in that case nothing is emitted for it. Tokens inside a skip window
// are parameters, including ones that look like flags.
func Scan(table *Table, args []string) []Call {
	var calls []Call
	skip := 0
	for idx, arg := range args {
		if skip > 0 {
			skip--
			continue
		}

		action, ok := table.Lookup(arg)
		if !ok {
			continue
		}

		arity := action.Arity()
		skip = arity
		if idx+arity >= len(args) && arity > 0 {
			continue
		}

		params := make([]string, arity)
		copy(params, args[idx+1:idx+1+arity])
		calls = append(calls, Call{Action: action, Flag: arg, Params: params})
	}
	return calls
}

// Dispatch scans args and invokes the handler for each call in order.
// It stops at the first handler error; calls already made are not undone.
func (d *Dispatcher) Dispatch(ctx context.Context, args []string) error {
	for _, call := range d.Scan(args) {
		if err := d.Invoke(ctx, call); err != nil {
			return err
		}
	}
	return nil
}

// Invoke runs a single call against the handler
func (d *Dispatcher) Invoke(ctx context.Context, call Call) error {
	if len(call.Params) != call.Action.Arity() {
		return fmt.Errorf("%s expects %d parameter(s), got %d", call.Flag, call.Action.Arity(), len(call.Params))
	}

	switch call.Action {
	case ActionAdd:
		return d.handler.Add(ctx, call.Params[0], call.Params[1])
	case ActionRemove:
		return d.handler.Remove(ctx, call.Params[0])
	case ActionOptimize:
		return d.handler.Optimize(ctx, call.Params[0])
	case ActionBundle:
		return d.handler.Bundle(ctx, call.Params[0])
	case ActionHelp:
		return d.handler.Help(ctx)
	default:
		// Unknown actions never come out of Scan; ignore like unknown flags.
		return nil
	}
}
