package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ops-tools/costpilot/pkg/adapters"
	"github.com/ops-tools/costpilot/pkg/services/collector"
	"github.com/ops-tools/costpilot/pkg/terminal/export"
)

type RunBatchCmd struct {
	profilePath string
	executionID string
	batchID     string
	registry    collector.Registry
	reporter    *export.Reporter
}

// NewRunBatchCmd executes one batch of collector tasks. The batch is
// located by recomputing the deterministic plan, so the engine only
// needs to hand over the batch id.
func NewRunBatchCmd(registry collector.Registry, reporter *export.Reporter) *cobra.Command {
	rc := &RunBatchCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "run-batch",
		Short: "Execute one batch of collector tasks",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.profilePath, "profile", "", "Path to the orchestrator profile")
	cmd.Flags().StringVar(&rc.executionID, "execution", "", "Execution id the batch belongs to")
	cmd.Flags().StringVar(&rc.batchID, "batch", "", "Batch id to execute")

	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("execution")
	_ = cmd.MarkFlagRequired("batch")

	return cmd
}

func (rc *RunBatchCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	env, err := BuildEnv(ctx, rc.profilePath, rc.registry)
	if err != nil {
		return err
	}

	batches := env.Controller.PlanBatches(ctx, env.PlanRequest())
	for _, batch := range batches {
		if batch.ID != rc.batchID {
			continue
		}

		result, err := env.Controller.RunBatch(ctx, rc.executionID, batch)
		if err != nil {
			return err
		}
		data, err := adapters.MapBatchResultToTaskData(result)
		if err != nil {
			return err
		}
		return rc.reporter.Handle(data)
	}
	return fmt.Errorf("batch %q is not part of the current plan", rc.batchID)
}
