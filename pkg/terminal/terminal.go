package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ops-tools/costpilot/pkg/services/collector"
	"github.com/ops-tools/costpilot/pkg/terminal/commands"
	"github.com/ops-tools/costpilot/pkg/terminal/export"
)

// CLI represents the command-line interface
type CLI struct {
	registry collector.Registry
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry collector.Registry
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Registry == nil {
		opts.Registry = collector.NewRegistry()
	}

	cli := &CLI{
		registry: opts.Registry,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "costpilot",
		Short: "Cost collection orchestration stages",
	}

	cmd.AddCommand(commands.NewPlanCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewRunBatchCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewAggregateCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewFanoutCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewStatusCmd(cli.registry, cli.reporter))

	return cmd
}
