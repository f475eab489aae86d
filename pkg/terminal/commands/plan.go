package commands

import (
	"github.com/spf13/cobra"

	"github.com/ops-tools/costpilot/pkg/adapters"
	"github.com/ops-tools/costpilot/pkg/models/api"
	"github.com/ops-tools/costpilot/pkg/models/domain"
	"github.com/ops-tools/costpilot/pkg/services/collector"
	"github.com/ops-tools/costpilot/pkg/terminal/export"
)

type PlanCmd struct {
	profilePath string
	accountID   string
	registry    collector.Registry
	reporter    *export.Reporter
}

// NewPlanCmd creates or resumes the account's execution and emits the
// batch plan for the workflow engine to dispatch.
func NewPlanCmd(registry collector.Registry, reporter *export.Reporter) *cobra.Command {
	pc := &PlanCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create or resume an execution and emit its batch plan",
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.profilePath, "profile", "", "Path to the orchestrator profile")
	cmd.Flags().StringVar(&pc.accountID, "account", "", "Account id the run belongs to")

	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func (pc *PlanCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	env, err := BuildEnv(ctx, pc.profilePath, pc.registry)
	if err != nil {
		return err
	}

	prior, err := env.States.GetLatestExecution(ctx, pc.accountID)
	if err != nil {
		return err
	}

	exec, batches, err := env.Controller.Init(ctx, pc.accountID, env.PlanRequest(), map[string]string{
		"trigger": "cli",
	})
	if err != nil {
		return err
	}

	out := api.PlanOutput{
		ExecutionID: exec.ID,
		AccountID:   exec.AccountID,
		Resumed:     prior != nil && prior.Status == domain.ExecutionStatusRunning && prior.ID == exec.ID,
	}
	for _, b := range batches {
		out.Batches = append(out.Batches, adapters.MapBatchDomainToApi(b))
	}
	return pc.reporter.Handle(out)
}
