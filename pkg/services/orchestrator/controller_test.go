package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ops-tools/costpilot/pkg/models/domain"
	"github.com/ops-tools/costpilot/pkg/models/store"
	"github.com/ops-tools/costpilot/pkg/services/catalogue"
	"github.com/ops-tools/costpilot/pkg/services/collector"
	"github.com/ops-tools/costpilot/pkg/services/planner"
	"github.com/ops-tools/costpilot/pkg/services/provider"
	"github.com/ops-tools/costpilot/pkg/store/execution"
	"github.com/ops-tools/costpilot/pkg/store/object"
	"github.com/ops-tools/costpilot/pkg/store/report"
)

type fakeObjectStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{docs: make(map[string][]byte)}
}

func (f *fakeObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[key]
	if !ok {
		return nil, object.ErrNotFound
	}
	return doc, nil
}

func (f *fakeObjectStore) Put(_ context.Context, key string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[key] = body
	return nil
}

type fixedCatalogue struct {
	collectors []domain.CollectorDef
}

func (f fixedCatalogue) ListCollectors(context.Context) ([]domain.CollectorDef, error) {
	return f.collectors, nil
}

type stubNotifier struct {
	calls     int
	summaries []*domain.RunSummary
	err       error
}

func (s *stubNotifier) NotifyCompletion(_ context.Context, summary *domain.RunSummary) error {
	s.calls++
	s.summaries = append(s.summaries, summary)
	return s.err
}

func staticCollector(name string, cost float64) collector.Collector {
	return collector.Func{
		CollectorName: name,
		CollectFn: func(context.Context, provider.ClientFactory, string) (*domain.BatchResult, error) {
			return &domain.BatchResult{
				Services: []string{name},
				Costs: domain.CostBreakdown{
					ByService:  map[string]float64{name: cost},
					ByCategory: map[string]float64{"compute": cost},
				},
				Metrics: domain.CollectorMetrics{ResourcesAnalyzed: 1},
			}, nil
		},
	}
}

func failingCollector(name string, err error) collector.Collector {
	return collector.Func{
		CollectorName: name,
		CollectFn: func(context.Context, provider.ClientFactory, string) (*domain.BatchResult, error) {
			return nil, err
		},
	}
}

type testHarness struct {
	controller *DefaultController
	states     execution.Store
	objects    *fakeObjectStore
	notifier   *stubNotifier
}

func newHarness(t *testing.T, collectors []domain.CollectorDef, registered ...collector.Collector) *testHarness {
	t.Helper()

	objects := newFakeObjectStore()
	states, err := execution.NewStore(objects)
	require.NoError(t, err)
	reports, err := report.NewStore(objects)
	require.NoError(t, err)

	registry := collector.NewRegistry()
	for _, c := range registered {
		require.NoError(t, registry.Register(c))
	}

	notifier := &stubNotifier{}
	ctrl, err := NewController(Dependencies{
		States:   states,
		Reports:  reports,
		Resolver: catalogue.NewResolver(fixedCatalogue{collectors: collectors}, nil),
		Planner:  planner.New(planner.DefaultBatchSize),
		Registry: registry,
		Notifier: notifier,
		Region:   "us-east-1",
	})
	require.NoError(t, err)

	return &testHarness{
		controller: ctrl,
		states:     states,
		objects:    objects,
		notifier:   notifier,
	}
}

func twoCollectorCatalogue() []domain.CollectorDef {
	return []domain.CollectorDef{
		{Name: "ec2-instances", Category: "compute", Priority: 1},
		{Name: "s3-buckets", Category: "storage", Priority: 2},
	}
}

func TestInit_SeedsExecutionWithPlannedCollectors(t *testing.T) {
	// Given
	h := newHarness(t, twoCollectorCatalogue())

	// When
	exec, batches, err := h.controller.Init(context.Background(), "111122223333", planner.Request{}, nil)

	// Then
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, domain.ExecutionStatusRunning, exec.Status)
	require.Len(t, exec.Tasks, 2)
	for _, task := range exec.Tasks {
		assert.Equal(t, domain.TaskStatusPending, task.Status)
	}
}

func TestInit_RetriedStartAttachesToRunningExecution(t *testing.T) {
	// Given
	h := newHarness(t, twoCollectorCatalogue())
	first, _, err := h.controller.Init(context.Background(), "111122223333", planner.Request{}, nil)
	require.NoError(t, err)

	// When: the engine retries the start step
	second, batches, err := h.controller.Init(context.Background(), "111122223333", planner.Request{}, nil)

	// Then: same execution, same deterministic plan
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, batches, 1)
}

func TestRunBatch_MarksTasksCompletedAndFoldsResults(t *testing.T) {
	// Given
	h := newHarness(t, twoCollectorCatalogue(),
		staticCollector("ec2-instances", 120),
		staticCollector("s3-buckets", 30),
	)
	exec, batches, err := h.controller.Init(context.Background(), "111122223333", planner.Request{}, nil)
	require.NoError(t, err)

	// When
	result, err := h.controller.RunBatch(context.Background(), exec.ID, batches[0])

	// Then
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ec2-instances", "s3-buckets"}, result.Services)
	assert.InDelta(t, 150.0, result.Costs.ByCategory["compute"], 0.001)

	stored, err := h.states.GetExecution(context.Background(), exec.ID)
	require.NoError(t, err)
	for _, task := range stored.Tasks {
		assert.Equal(t, domain.TaskStatusCompleted, task.Status)
		assert.NotEmpty(t, task.ResultData)
	}
}

func TestRunBatch_CollectorFailureMarksTaskFailedWithoutAbortingBatch(t *testing.T) {
	// Given
	h := newHarness(t, twoCollectorCatalogue(),
		failingCollector("ec2-instances", errors.New("connection reset")),
		staticCollector("s3-buckets", 30),
	)
	exec, batches, err := h.controller.Init(context.Background(), "111122223333", planner.Request{}, nil)
	require.NoError(t, err)

	// When
	result, err := h.controller.RunBatch(context.Background(), exec.ID, batches[0])

	// Then: the healthy collector still lands in the fold
	require.NoError(t, err)
	assert.Equal(t, []string{"s3-buckets"}, result.Services)

	stored, err := h.states.GetExecution(context.Background(), exec.ID)
	require.NoError(t, err)
	failed := stored.TaskFor("ec2-instances")
	require.NotNil(t, failed)
	assert.Equal(t, domain.TaskStatusFailed, failed.Status)
	assert.Equal(t, "connection reset", failed.ErrorMessage)
	assert.Equal(t, domain.TaskStatusCompleted, stored.TaskFor("s3-buckets").Status)
}

func TestRunBatch_UnregisteredCollectorFailsItsTask(t *testing.T) {
	// Given: the catalogue names a collector nothing registered
	h := newHarness(t, twoCollectorCatalogue(), staticCollector("s3-buckets", 30))
	exec, batches, err := h.controller.Init(context.Background(), "111122223333", planner.Request{}, nil)
	require.NoError(t, err)

	// When
	_, err = h.controller.RunBatch(context.Background(), exec.ID, batches[0])

	// Then
	require.NoError(t, err)
	stored, err := h.states.GetExecution(context.Background(), exec.ID)
	require.NoError(t, err)
	missing := stored.TaskFor("ec2-instances")
	require.NotNil(t, missing)
	assert.Equal(t, domain.TaskStatusFailed, missing.Status)
	assert.Contains(t, missing.ErrorMessage, "not registered")
}

func TestAggregate_FinalizesExecutionAndPersistsReport(t *testing.T) {
	// Given: both batches ran clean
	h := newHarness(t, twoCollectorCatalogue(),
		staticCollector("ec2-instances", 120),
		staticCollector("s3-buckets", 30),
	)
	ctx := context.Background()
	exec, batches, err := h.controller.Init(ctx, "111122223333", planner.Request{}, nil)
	require.NoError(t, err)
	result, err := h.controller.RunBatch(ctx, exec.ID, batches[0])
	require.NoError(t, err)

	// When
	final, summary, err := h.controller.Aggregate(ctx, exec.ID, []*domain.BatchResult{result})

	// Then
	require.NoError(t, err)
	assert.Equal(t, domain.AggregateStatusSuccess, final.Status)
	assert.InDelta(t, 150.0, final.TotalCost, 0.001)
	assert.Equal(t, "111122223333", summary.AccountID)

	stored, err := h.states.GetExecution(ctx, exec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionStatusCompleted, stored.Status)

	raw, err := h.objects.Get(ctx, object.LatestReportKey)
	require.NoError(t, err)
	var reportDoc store.Report
	require.NoError(t, json.Unmarshal(raw, &reportDoc))
	assert.Equal(t, exec.ID, reportDoc.ExecutionID)
	assert.InDelta(t, 150.0, reportDoc.TotalCost, 0.001)

	assert.Equal(t, 1, h.notifier.calls)
}

func TestAggregate_FailedTasksYieldPartialStatus(t *testing.T) {
	// Given
	h := newHarness(t, twoCollectorCatalogue(),
		failingCollector("ec2-instances", errors.New("throttled out")),
		staticCollector("s3-buckets", 30),
	)
	ctx := context.Background()
	exec, batches, err := h.controller.Init(ctx, "111122223333", planner.Request{}, nil)
	require.NoError(t, err)
	_, err = h.controller.RunBatch(ctx, exec.ID, batches[0])
	require.NoError(t, err)

	// When: the reduce step is handed no results and rebuilds from tasks
	final, _, err := h.controller.Aggregate(ctx, exec.ID, nil)

	// Then
	require.NoError(t, err)
	assert.Equal(t, domain.AggregateStatusPartial, final.Status)
	require.Len(t, final.Errors, 1)
	assert.Contains(t, final.Errors[0], "throttled out")
	assert.InDelta(t, 30.0, final.TotalCost, 0.001)
}

func TestAggregate_HandedResultsStillSurfaceFailedTasks(t *testing.T) {
	// Given: one collector failed during the map stage
	h := newHarness(t, twoCollectorCatalogue(),
		failingCollector("ec2-instances", errors.New("throttled out")),
		staticCollector("s3-buckets", 30),
	)
	ctx := context.Background()
	exec, batches, err := h.controller.Init(ctx, "111122223333", planner.Request{}, nil)
	require.NoError(t, err)
	result, err := h.controller.RunBatch(ctx, exec.ID, batches[0])
	require.NoError(t, err)

	// When: the engine hands the collected batch output to the reduce step
	final, _, err := h.controller.Aggregate(ctx, exec.ID, []*domain.BatchResult{result})

	// Then: the failed task still surfaces in the aggregate
	require.NoError(t, err)
	assert.Equal(t, domain.AggregateStatusPartial, final.Status)
	require.Len(t, final.Errors, 1)
	assert.Contains(t, final.Errors[0], "throttled out")
	assert.InDelta(t, 30.0, final.TotalCost, 0.001)

	raw, err := h.objects.Get(ctx, object.LatestReportKey)
	require.NoError(t, err)
	var reportDoc store.Report
	require.NoError(t, json.Unmarshal(raw, &reportDoc))
	assert.Equal(t, "PARTIAL", reportDoc.Status)
	require.Len(t, reportDoc.Errors, 1)
}

func TestAggregate_RecoveryRunRebuildsResultsFromTaskState(t *testing.T) {
	// Given: the map stage finished, then the reduce worker crashed
	h := newHarness(t, twoCollectorCatalogue(),
		staticCollector("ec2-instances", 120),
		staticCollector("s3-buckets", 30),
	)
	ctx := context.Background()
	exec, batches, err := h.controller.Init(ctx, "111122223333", planner.Request{}, nil)
	require.NoError(t, err)
	_, err = h.controller.RunBatch(ctx, exec.ID, batches[0])
	require.NoError(t, err)

	// When: a fresh process aggregates with nothing in hand
	final, _, err := h.controller.Aggregate(ctx, exec.ID, nil)

	// Then: the fold is rebuilt from durable task state
	require.NoError(t, err)
	assert.Equal(t, domain.AggregateStatusSuccess, final.Status)
	assert.InDelta(t, 150.0, final.TotalCost, 0.001)
}

func TestAggregate_PendingTasksBlockFinalization(t *testing.T) {
	// Given: no batch has run yet
	h := newHarness(t, twoCollectorCatalogue())
	ctx := context.Background()
	exec, _, err := h.controller.Init(ctx, "111122223333", planner.Request{}, nil)
	require.NoError(t, err)

	// When
	_, _, err = h.controller.Aggregate(ctx, exec.ID, nil)

	// Then
	require.Error(t, err)
}

func TestAggregate_NotifierFailureDoesNotFailTheRun(t *testing.T) {
	// Given
	h := newHarness(t, twoCollectorCatalogue(),
		staticCollector("ec2-instances", 120),
		staticCollector("s3-buckets", 30),
	)
	h.notifier.err = errors.New("topic gone")
	ctx := context.Background()
	exec, batches, err := h.controller.Init(ctx, "111122223333", planner.Request{}, nil)
	require.NoError(t, err)
	result, err := h.controller.RunBatch(ctx, exec.ID, batches[0])
	require.NoError(t, err)

	// When
	final, _, err := h.controller.Aggregate(ctx, exec.ID, []*domain.BatchResult{result})

	// Then
	require.NoError(t, err)
	assert.Equal(t, domain.AggregateStatusSuccess, final.Status)
	assert.Equal(t, 1, h.notifier.calls)
}
