package commands

import (
	"github.com/spf13/cobra"

	"github.com/ops-tools/costpilot/pkg/adapters"
	"github.com/ops-tools/costpilot/pkg/models/api"
	"github.com/ops-tools/costpilot/pkg/services/collector"
	"github.com/ops-tools/costpilot/pkg/terminal/export"
)

type FanoutCmd struct {
	profilePath string
	registry    collector.Registry
	reporter    *export.Reporter
}

// NewFanoutCmd expands the run across the organization's accounts and
// configured regions, emitting one credentialed sub-job per pair.
func NewFanoutCmd(registry collector.Registry, reporter *export.Reporter) *cobra.Command {
	fc := &FanoutCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "fanout",
		Short: "Expand the run into per-account, per-region sub-jobs",
		RunE:  fc.run,
	}

	cmd.Flags().StringVar(&fc.profilePath, "profile", "", "Path to the orchestrator profile")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func (fc *FanoutCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	env, err := BuildEnv(ctx, fc.profilePath, fc.registry)
	if err != nil {
		return err
	}

	batches, err := env.Fanout.Expand(ctx)
	if err != nil {
		return err
	}

	out := make([]api.AccountBatch, 0, len(batches))
	for _, b := range batches {
		out = append(out, adapters.MapAccountBatchDomainToApi(b))
	}
	return fc.reporter.Handle(out)
}
