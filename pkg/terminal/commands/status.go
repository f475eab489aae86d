package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ops-tools/costpilot/pkg/adapters"
	"github.com/ops-tools/costpilot/pkg/services/collector"
	"github.com/ops-tools/costpilot/pkg/terminal/export"
)

type StatusCmd struct {
	profilePath string
	accountID   string
	registry    collector.Registry
	reporter    *export.Reporter
}

// NewStatusCmd prints the latest execution summary for an account.
func NewStatusCmd(registry collector.Registry, reporter *export.Reporter) *cobra.Command {
	sc := &StatusCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the latest execution summary for an account",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.profilePath, "profile", "", "Path to the orchestrator profile")
	cmd.Flags().StringVar(&sc.accountID, "account", "", "Account id to inspect")

	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func (sc *StatusCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	env, err := BuildEnv(ctx, sc.profilePath, sc.registry)
	if err != nil {
		return err
	}

	exec, err := env.States.GetLatestExecution(ctx, sc.accountID)
	if err != nil {
		return err
	}
	if exec == nil {
		return fmt.Errorf("no executions found for account %s", sc.accountID)
	}

	summary, err := env.States.Summary(ctx, exec.ID)
	if err != nil {
		return err
	}
	return sc.reporter.Handle(adapters.MapExecutionSummaryDomainToApi(summary))
}
