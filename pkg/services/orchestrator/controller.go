package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ops-tools/costpilot/pkg/adapters"
	"github.com/ops-tools/costpilot/pkg/models/domain"
	"github.com/ops-tools/costpilot/pkg/services/aggregator"
	"github.com/ops-tools/costpilot/pkg/services/catalogue"
	"github.com/ops-tools/costpilot/pkg/services/collector"
	"github.com/ops-tools/costpilot/pkg/services/notify"
	"github.com/ops-tools/costpilot/pkg/services/planner"
	"github.com/ops-tools/costpilot/pkg/services/provider"
	"github.com/ops-tools/costpilot/pkg/services/resilience"
	"github.com/ops-tools/costpilot/pkg/store/execution"
	"github.com/ops-tools/costpilot/pkg/store/report"
)

// Controller exposes the stages the external workflow engine invokes.
// Parallel fan-out across batches happens outside this process; each
// method is a single synchronous step communicating through the
// durable stores.
type Controller interface {
	// Init creates (or attaches to) the account's execution and
	// returns the planned batches for the engine to dispatch.
	Init(
		ctx context.Context,
		accountID string,
		req planner.Request,
		metadata map[string]string,
	) (*domain.Execution, []domain.Batch, error)

	// PlanBatches recomputes the batch plan. Planning is
	// deterministic, so a retried step sees identical batches.
	PlanBatches(ctx context.Context, req planner.Request) []domain.Batch

	// RunBatch executes every collector task of one batch and folds
	// their outputs into the batch result.
	RunBatch(ctx context.Context, executionID string, batch domain.Batch) (*domain.BatchResult, error)

	// Aggregate folds all batch results into the final report,
	// finalizes the execution, persists report artifacts and fires
	// the best-effort completion notification. When the engine hands
	// over no results (e.g. a recovery re-run of the reduce step),
	// results are rebuilt from the tasks' stored result data. Failed
	// tasks contribute their errors on either path, so the final
	// status is PARTIAL whenever any task failed.
	Aggregate(
		ctx context.Context,
		executionID string,
		results []*domain.BatchResult,
	) (*domain.AggregatedResult, *domain.RunSummary, error)
}

type DefaultController struct {
	states   execution.Store
	reports  report.Store
	resolver *catalogue.Resolver
	planner  *planner.Planner
	registry collector.Registry
	clients  provider.ClientFactory
	executor *resilience.Executor
	notifier notify.Notifier
	region   string
	now      func() time.Time
}

type Dependencies struct {
	States   execution.Store
	Reports  report.Store
	Resolver *catalogue.Resolver
	Planner  *planner.Planner
	Registry collector.Registry
	Clients  provider.ClientFactory
	Executor *resilience.Executor
	Notifier notify.Notifier
	Region   string
}

func NewController(deps Dependencies) (*DefaultController, error) {
	if deps.States == nil || deps.Reports == nil {
		return nil, fmt.Errorf("state and report stores are required")
	}
	if deps.Resolver == nil || deps.Planner == nil {
		return nil, fmt.Errorf("catalogue resolver and planner are required")
	}

	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NewNoopNotifier()
	}
	executor := deps.Executor
	if executor == nil {
		executor = resilience.NewExecutor()
	}

	return &DefaultController{
		states:   deps.States,
		reports:  deps.Reports,
		resolver: deps.Resolver,
		planner:  deps.Planner,
		registry: deps.Registry,
		clients:  deps.Clients,
		executor: executor,
		notifier: notifier,
		region:   deps.Region,
		now:      time.Now,
	}, nil
}

func (c *DefaultController) Init(
	ctx context.Context,
	accountID string,
	req planner.Request,
	metadata map[string]string,
) (*domain.Execution, []domain.Batch, error) {
	batches := c.PlanBatches(ctx, req)

	var collectors []domain.CollectorDef
	for _, b := range batches {
		collectors = append(collectors, b.Collectors...)
	}

	exec, err := c.states.CreateExecution(ctx, accountID, collectors, metadata)
	if err != nil {
		return nil, nil, err
	}
	return exec, batches, nil
}

func (c *DefaultController) PlanBatches(ctx context.Context, req planner.Request) []domain.Batch {
	resolved := c.resolver.Resolve(ctx)
	return c.planner.Plan(resolved, req)
}

func (c *DefaultController) RunBatch(
	ctx context.Context,
	executionID string,
	batch domain.Batch,
) (*domain.BatchResult, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("execution_id", executionID).
		Str("batch_id", batch.ID).
		Logger()
	ctx = logger.WithContext(ctx)

	exec, err := c.states.GetExecution(ctx, executionID)
	if err != nil {
		return nil, err
	}

	acc := aggregator.NewAccumulator()
	for _, def := range batch.Collectors {
		task := exec.TaskFor(def.Name)
		if task == nil {
			logger.Warn().Str("collector", def.Name).Msg("no task for collector, skipping")
			continue
		}
		result := c.runTask(ctx, executionID, task, def)
		acc.Add(result)
	}

	folded := acc.Finalize()
	out := &domain.BatchResult{
		BatchID:  batch.ID,
		Services: folded.Services,
		Costs: domain.CostBreakdown{
			ByService:  folded.CostByService,
			ByCategory: folded.CostByCategory,
		},
		Recommendations: folded.Recommendations,
		Savings: domain.SavingsBreakdown{
			ByService:  folded.SavingsByService,
			ByCategory: folded.SavingsByCategory,
		},
		Metrics: folded.Metrics,
	}
	return out, nil
}

// runTask drives one collector task through its full lifecycle. A
// collector failure marks the task FAILED and returns nil; it never
// aborts the batch.
func (c *DefaultController) runTask(
	ctx context.Context,
	executionID string,
	task *domain.Task,
	def domain.CollectorDef,
) *domain.BatchResult {
	logger := zerolog.Ctx(ctx)

	if err := c.states.StartTask(ctx, executionID, task.ID); err != nil {
		logger.Error().Err(err).Str("task_id", task.ID).Msg("failed to start task")
		return nil
	}

	col, err := c.registry.Get(def.Name)
	if err != nil {
		c.failTask(ctx, executionID, task.ID, err.Error())
		return nil
	}

	var result *domain.BatchResult
	err = c.executor.Do(ctx, def.Name, func(ctx context.Context) error {
		var collectErr error
		result, collectErr = col.Collect(ctx, c.clients, c.region)
		return collectErr
	})
	if err != nil {
		message := err.Error()
		if resilience.IsPermissionDenied(err) {
			message = fmt.Sprintf("permission denied: %s", message)
		}
		c.failTask(ctx, executionID, task.ID, message)
		return nil
	}

	data, err := adapters.MapBatchResultToTaskData(result)
	if err != nil {
		c.failTask(ctx, executionID, task.ID, err.Error())
		return nil
	}
	if err := c.states.CompleteTask(ctx, executionID, task.ID, data); err != nil {
		logger.Error().Err(err).Str("task_id", task.ID).Msg("failed to complete task")
		return nil
	}
	return result
}

func (c *DefaultController) failTask(ctx context.Context, executionID, taskID, message string) {
	logger := zerolog.Ctx(ctx)
	logger.Warn().Str("task_id", taskID).Str("error", message).Msg("task failed")
	if err := c.states.FailTask(ctx, executionID, taskID, message); err != nil {
		logger.Error().Err(err).Str("task_id", taskID).Msg("failed to record task failure")
	}
}

func (c *DefaultController) Aggregate(
	ctx context.Context,
	executionID string,
	results []*domain.BatchResult,
) (*domain.AggregatedResult, *domain.RunSummary, error) {
	logger := zerolog.Ctx(ctx).With().Str("execution_id", executionID).Logger()
	ctx = logger.WithContext(ctx)

	exec, err := c.states.GetExecution(ctx, executionID)
	if err != nil {
		return nil, nil, err
	}

	if len(results) == 0 {
		results, err = completedTaskResults(exec)
		if err != nil {
			return nil, nil, err
		}
	}
	// Batch results carry numeric data only; failed tasks exist solely
	// in task state, so they are folded in here on both paths.
	results = append(results, failedTaskResults(exec)...)

	acc := aggregator.NewAccumulator()
	for _, r := range results {
		acc.Add(r)
	}
	final := acc.Finalize()

	if err := c.states.CompleteExecution(ctx, executionID); err != nil {
		// Authoritative write; propagate so the engine retries the step.
		return nil, nil, err
	}

	completedAt := c.now()
	summary := aggregator.BuildRunSummary(exec, final, completedAt)

	reportDoc := adapters.MapAggregatedResultToReport(exec, final)
	reportDoc.GeneratedAt = completedAt
	if err := c.reports.SaveReport(ctx, reportDoc); err != nil {
		return nil, nil, err
	}
	if err := c.reports.SaveSummary(ctx, adapters.MapRunSummaryToStore(summary)); err != nil {
		return nil, nil, err
	}

	if err := c.notifier.NotifyCompletion(ctx, summary); err != nil {
		logger.Warn().Err(err).Msg("completion notification failed")
	}

	logger.Info().
		Str("status", string(final.Status)).
		Float64("total_cost", final.TotalCost).
		Int("errors", len(final.Errors)).
		Msg("execution finalized")
	return final, summary, nil
}

// completedTaskResults rebuilds collector outputs from the durable
// task state.
func completedTaskResults(exec *domain.Execution) ([]*domain.BatchResult, error) {
	var results []*domain.BatchResult
	for _, t := range exec.Tasks {
		if t.Status != domain.TaskStatusCompleted {
			continue
		}
		result, err := adapters.MapTaskDataToBatchResult(t.ResultData)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// failedTaskResults synthesizes one error-carrying result per failed
// task.
func failedTaskResults(exec *domain.Execution) []*domain.BatchResult {
	var results []*domain.BatchResult
	for _, t := range exec.Tasks {
		if t.Status == domain.TaskStatusFailed {
			results = append(results, &domain.BatchResult{Error: t.ErrorMessage})
		}
	}
	return results
}
