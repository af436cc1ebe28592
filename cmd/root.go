// Package cmd implements the eftools command line.
// The root command hands its raw arguments to the flag dispatcher.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cesarempathy/ef-tools/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "eftools [flags]",
	Short: "Run Entity Framework Core migration commands from short flags",
	Long: `eftools maps a short flag vocabulary onto "dotnet ef" invocations.

Flags are matched case-insensitively and processed left to right:
  -a, -add <project> <name>    add a migration
  -r, -remove <project>        remove the last migration
  -o, --optimize <project>     optimize the dbcontext
  -b, --bundle <project>       bundle (not implemented)
  -h, --help                   print usage

Example:
  eftools -a IssueTracker.Data InitialCreate -o IssueTracker.Data

Configuration is read from $EFTOOLS_CONFIG or ./eftools.yaml when present.
Run "eftools init-config [filename]" to write an example file.`,
	Version:            "1.0.0",
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
	RunE:               runDispatch,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [filename]",
	Short: "Generate an example configuration file",
	Long:  `Generate an example YAML configuration file with default values.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := config.DefaultFileName
		if len(args) > 0 {
			filename = args[0]
		}
		if err := config.WriteExampleConfig(filename); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cliSuccessStyle.Render("✅ Example configuration written to:"), filename)
		return nil
	},
}

// Execute runs the command line and exits non-zero on failure
func Execute() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, cliErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// execute picks init-config only when it is the first token. Every other
// argument list goes to rootCmd, which has no subcommands, so cobra never
// claims a token that belongs to the dispatcher.
func execute(args []string, stdout, stderr io.Writer) error {
	if args == nil {
		args = []string{}
	}

	c := rootCmd
	if len(args) > 0 && args[0] == initConfigCmd.Name() {
		c = initConfigCmd
		args = args[1:]
	}

	c.SetArgs(args)
	c.SetOut(stdout)
	c.SetErr(stderr)
	return c.Execute()
}
