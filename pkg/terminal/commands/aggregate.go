package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ops-tools/costpilot/pkg/adapters"
	"github.com/ops-tools/costpilot/pkg/models/domain"
	"github.com/ops-tools/costpilot/pkg/services/collector"
	"github.com/ops-tools/costpilot/pkg/terminal/export"
)

type AggregateCmd struct {
	profilePath string
	executionID string
	resultsPath string
	registry    collector.Registry
	reporter    *export.Reporter
}

// NewAggregateCmd folds all batch results into the final report and
// finalizes the execution. Without --results the fold is rebuilt from
// the durable task state, which is the crash-recovery path.
func NewAggregateCmd(registry collector.Registry, reporter *export.Reporter) *cobra.Command {
	ac := &AggregateCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Fold batch results into the final report",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.profilePath, "profile", "", "Path to the orchestrator profile")
	cmd.Flags().StringVar(&ac.executionID, "execution", "", "Execution id to finalize")
	cmd.Flags().StringVar(&ac.resultsPath, "results", "", "Path to the JSON array of batch results")

	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("execution")

	return cmd
}

func (ac *AggregateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	env, err := BuildEnv(ctx, ac.profilePath, ac.registry)
	if err != nil {
		return err
	}

	var results []*domain.BatchResult
	if ac.resultsPath != "" {
		results, err = loadResults(ac.resultsPath)
		if err != nil {
			return err
		}
	}

	_, summary, err := env.Controller.Aggregate(ctx, ac.executionID, results)
	if err != nil {
		return err
	}
	return ac.reporter.Handle(adapters.MapRunSummaryToStore(summary))
}

func loadResults(path string) ([]*domain.BatchResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}

	results := make([]*domain.BatchResult, 0, len(docs))
	for _, doc := range docs {
		result, err := adapters.MapTaskDataToBatchResult(doc)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
