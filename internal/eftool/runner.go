package eftool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/cesarempathy/ef-tools/internal/dispatch"
)

// Config controls how the external tool is invoked
type Config struct {
	Binary string            // executable resolved on PATH, e.g. "dotnet"
	Args   []string          // prepended to every invocation, e.g. ["ef"]
	Dir    string            // working directory; empty keeps the current one
	Env    map[string]string // extra environment variables
	DryRun bool              // print commands instead of running them
}

// Runner executes migration actions through the external tool
type Runner struct {
	config   Config
	executor Executor
	logger   *slog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// Option customizes a Runner
type Option func(*Runner)

// WithExecutor replaces the process executor
func WithExecutor(e Executor) Option {
	return func(r *Runner) { r.executor = e }
}

// WithLogger sets the logger used for invocation records
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithOutput redirects the streams handed to the external tool and
// the help text.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithInput sets the stdin handed to the external tool; nil means none
func WithInput(stdin io.Reader) Option {
	return func(r *Runner) { r.stdin = stdin }
}

// NewRunner creates a Runner. Output streams default to the process's own.
func NewRunner(config Config, opts ...Option) *Runner {
	r := &Runner{
		config:   config,
		executor: ExecExecutor{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Argv returns the full command line for call, binary first.
// Actions that run nothing return nil.
func (r *Runner) Argv(call dispatch.Call) []string {
	var tail []string
	switch call.Action {
	case dispatch.ActionAdd:
		tail = []string{"migrations", "-p", call.Params[0], "add", call.Params[1]}
	case dispatch.ActionRemove:
		tail = []string{"migrations", "-p", call.Params[0], "remove"}
	case dispatch.ActionOptimize:
		tail = []string{"dbcontext", "optimize", "-p", call.Params[0]}
	default:
		return nil
	}

	argv := make([]string, 0, 1+len(r.config.Args)+len(tail))
	argv = append(argv, r.config.Binary)
	argv = append(argv, r.config.Args...)
	return append(argv, tail...)
}

// CommandLine renders Argv as a single display string
func (r *Runner) CommandLine(call dispatch.Call) string {
	return strings.Join(r.Argv(call), " ")
}

// Add runs "migrations -p <project> add <name>"
func (r *Runner) Add(ctx context.Context, project, name string) error {
	return r.run(ctx, dispatch.Call{Action: dispatch.ActionAdd, Params: []string{project, name}})
}

// Remove runs "migrations -p <project> remove"
func (r *Runner) Remove(ctx context.Context, project string) error {
	return r.run(ctx, dispatch.Call{Action: dispatch.ActionRemove, Params: []string{project}})
}

// Optimize runs "dbcontext optimize -p <project>"
func (r *Runner) Optimize(ctx context.Context, project string) error {
	return r.run(ctx, dispatch.Call{Action: dispatch.ActionOptimize, Params: []string{project}})
}

// Bundle is accepted and runs nothing
func (r *Runner) Bundle(ctx context.Context, project string) error {
	return r.run(ctx, dispatch.Call{Action: dispatch.ActionBundle, Params: []string{project}})
}

// Help prints the usage text
func (r *Runner) Help(ctx context.Context) error {
	return r.run(ctx, dispatch.Call{Action: dispatch.ActionHelp})
}

func (r *Runner) run(ctx context.Context, call dispatch.Call) error {
	return r.Execute(ctx, call, r.stdout, r.stderr)
}

// Execute performs call writing to the given streams instead of the
// runner's own. Help goes to stdout, bundle only logs at debug level, and
// dry-run mode prints the command line in place of running it.
func (r *Runner) Execute(ctx context.Context, call dispatch.Call, stdout, stderr io.Writer) error {
	switch call.Action {
	case dispatch.ActionHelp:
		_, err := fmt.Fprint(stdout, Usage)
		return err
	case dispatch.ActionBundle:
		// Bundle is intentionally inert.
		r.logger.Debug("bundle is not implemented, skipping", "project", call.Params[0])
		return nil
	}

	argv := r.Argv(call)
	if argv == nil {
		return nil
	}
	if r.config.DryRun {
		_, err := fmt.Fprintf(stdout, "[dry-run] %s\n", strings.Join(argv, " "))
		return err
	}

	cmd := Command{
		Path:   argv[0],
		Args:   argv[1:],
		Dir:    r.config.Dir,
		Env:    r.environ(),
		Stdin:  r.stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	r.logger.Debug("running external tool", "action", call.Action.String(), "argv", argv, "dir", cmd.Dir)
	exitCode, err := r.executor.Run(ctx, cmd)
	if err != nil {
		return &CommandError{Action: call.Action, Argv: argv, ExitCode: exitCode, Err: err}
	}
	if exitCode != 0 {
		r.logger.Debug("external tool failed", "action", call.Action.String(), "exitCode", exitCode)
		return &CommandError{Action: call.Action, Argv: argv, ExitCode: exitCode}
	}
	return nil
}

func (r *Runner) environ() []string {
	if len(r.config.Env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.config.Env))
	for k := range r.config.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+r.config.Env[k])
	}
	return env
}
