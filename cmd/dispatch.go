package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/cesarempathy/ef-tools/internal/config"
	"github.com/cesarempathy/ef-tools/internal/dispatch"
	"github.com/cesarempathy/ef-tools/internal/eftool"
	"github.com/cesarempathy/ef-tools/internal/logging"
	"github.com/cesarempathy/ef-tools/internal/ui"
)

// Console output styles
var (
	cliSuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	cliErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	cliDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// executor runs the external tool; nil selects os/exec
var executor eftool.Executor

// streams groups the process's standard streams so tests can replace them
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func runDispatch(cmd *cobra.Command, args []string) error {
	cfg, path, err := config.Resolve()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	s := streams{in: os.Stdin, out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, s.err)
	if path != "" {
		logger.Debug("loaded config", "path", path)
	}

	return run(cmd.Context(), cfg, args, s, logger, executor)
}

// run validates cfg and dispatches args. A nil executor selects os/exec.
func run(ctx context.Context, cfg *config.Config, args []string, s streams, logger *slog.Logger, exec eftool.Executor) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	opts := []eftool.Option{
		eftool.WithLogger(logger),
		eftool.WithOutput(s.out, s.err),
		eftool.WithInput(s.in),
	}
	if exec != nil {
		opts = append(opts, eftool.WithExecutor(exec))
	}

	if cfg.Interactive {
		// The terminal UI owns stdin while it runs.
		opts = append(opts, eftool.WithInput(nil))
		runner := eftool.NewRunner(cfg.RunnerConfig(), opts...)
		return runInteractive(runner, dispatch.Scan(dispatch.DefaultTable(), args), s)
	}

	runner := eftool.NewRunner(cfg.RunnerConfig(), opts...)
	d := dispatch.New(dispatch.DefaultTable(), runner)

	if cfg.DryRun {
		fmt.Fprint(s.out, dispatch.FormatPlan(d.Scan(args), runner.CommandLine))
		fmt.Fprintln(s.out, cliDimStyle.Render("dryRun is set in the config; commands are printed, not run."))
		fmt.Fprintln(s.out)
	}

	return d.Dispatch(ctx, args)
}

func runInteractive(runner *eftool.Runner, calls []dispatch.Call, s streams) error {
	model := ui.NewModel(runner, calls)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithInput(s.in), tea.WithOutput(s.out))

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}

	fm, ok := finalModel.(ui.Model)
	if !ok {
		return nil
	}
	fm.PrintSummary(s.out)
	return fm.Err()
}
