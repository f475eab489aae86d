package execution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ops-tools/costpilot/pkg/adapters"
	"github.com/ops-tools/costpilot/pkg/models/domain"
	"github.com/ops-tools/costpilot/pkg/models/store"
	"github.com/ops-tools/costpilot/pkg/store/object"
)

// ErrTaskNotFound is returned for a task id the execution does not own.
var ErrTaskNotFound = errors.New("task not found")

// Store is the durable execution/task state store. Every mutation is a
// full read-modify-overwrite of the execution document, so a crash
// mid-write can never leave a half-updated mixture of old and new task
// sets. Exactly one logical writer per execution id is assumed.
type Store interface {
	// CreateExecution starts a new run for the account, seeding one
	// PENDING task per collector. If a RUNNING execution already
	// exists for the account it is returned unchanged, so an
	// externally retried start step attaches instead of duplicating.
	CreateExecution(
		ctx context.Context,
		accountID string,
		collectors []domain.CollectorDef,
		metadata map[string]string,
	) (*domain.Execution, error)

	// GetLatestExecution reconstructs the most recent execution for
	// the account from durable storage. Returns nil when the account
	// has never run.
	GetLatestExecution(ctx context.Context, accountID string) (*domain.Execution, error)

	GetExecution(ctx context.Context, executionID string) (*domain.Execution, error)

	// StartTask moves a task PENDING -> RUNNING. A task already
	// RUNNING or terminal is left untouched.
	StartTask(ctx context.Context, executionID, taskID string) error

	// CompleteTask moves a task to COMPLETED and stores its result.
	CompleteTask(ctx context.Context, executionID, taskID string, resultData map[string]any) error

	// FailTask moves a task to FAILED with the error message. One
	// failed task never aborts the execution.
	FailTask(ctx context.Context, executionID, taskID, errorMessage string) error

	// CompleteExecution finalizes the execution once every task is
	// terminal. A later CreateExecution for the account allocates a
	// fresh id.
	CompleteExecution(ctx context.Context, executionID string) error

	Summary(ctx context.Context, executionID string) (*domain.ExecutionSummary, error)
}

type defaultStore struct {
	objects object.Store
	now     func() time.Time
	newID   func() string
}

type Option func(*defaultStore)

// WithClock overrides the store's clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *defaultStore) { s.now = now }
}

func NewStore(objects object.Store, opts ...Option) (Store, error) {
	if objects == nil {
		return nil, fmt.Errorf("object store is nil")
	}
	s := &defaultStore{
		objects: objects,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *defaultStore) CreateExecution(
	ctx context.Context,
	accountID string,
	collectors []domain.CollectorDef,
	metadata map[string]string,
) (*domain.Execution, error) {
	logger := zerolog.Ctx(ctx)

	current, err := s.GetLatestExecution(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if current != nil && current.Status == domain.ExecutionStatusRunning {
		logger.Info().
			Str("account_id", accountID).
			Str("execution_id", current.ID).
			Msg("attaching to running execution")
		return current, nil
	}

	now := s.now()
	exec := &domain.Execution{
		ID:        s.newID(),
		AccountID: accountID,
		Status:    domain.ExecutionStatusRunning,
		StartedAt: now,
		Metadata:  metadata,
		Tasks:     make([]domain.Task, 0, len(collectors)),
	}
	for _, c := range collectors {
		exec.Tasks = append(exec.Tasks, domain.Task{
			ID:        fmt.Sprintf("task-%s", c.Name),
			Type:      c.Name,
			Status:    domain.TaskStatusPending,
			CreatedAt: now,
		})
	}

	if err := s.persist(ctx, exec); err != nil {
		return nil, err
	}

	pointer := store.LatestExecution{ExecutionID: exec.ID, UpdatedAt: now}
	raw, err := json.Marshal(pointer)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal latest-execution pointer: %w", err)
	}
	if err := s.objects.Put(ctx, object.AccountLatestKey(accountID), raw); err != nil {
		return nil, err
	}

	logger.Info().
		Str("account_id", accountID).
		Str("execution_id", exec.ID).
		Int("tasks", len(exec.Tasks)).
		Msg("created execution")
	return exec, nil
}

func (s *defaultStore) GetLatestExecution(ctx context.Context, accountID string) (*domain.Execution, error) {
	raw, err := s.objects.Get(ctx, object.AccountLatestKey(accountID))
	if errors.Is(err, object.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var pointer store.LatestExecution
	if err := json.Unmarshal(raw, &pointer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal latest-execution pointer: %w", err)
	}
	return s.GetExecution(ctx, pointer.ExecutionID)
}

func (s *defaultStore) GetExecution(ctx context.Context, executionID string) (*domain.Execution, error) {
	raw, err := s.objects.Get(ctx, object.ExecutionStateKey(executionID))
	if err != nil {
		return nil, err
	}

	var state store.ExecutionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution state: %w", err)
	}
	return adapters.MapStoreExecutionToDomain(&state), nil
}

func (s *defaultStore) StartTask(ctx context.Context, executionID, taskID string) error {
	return s.mutateTask(ctx, executionID, taskID, func(task *domain.Task) {
		if task.Status != domain.TaskStatusPending {
			return
		}
		started := s.now()
		task.Status = domain.TaskStatusRunning
		task.StartedAt = &started
	})
}

func (s *defaultStore) CompleteTask(
	ctx context.Context,
	executionID, taskID string,
	resultData map[string]any,
) error {
	return s.mutateTask(ctx, executionID, taskID, func(task *domain.Task) {
		if task.Terminal() {
			return
		}
		finished := s.now()
		task.Status = domain.TaskStatusCompleted
		task.ResultData = resultData
		task.FinishedAt = &finished
	})
}

func (s *defaultStore) FailTask(ctx context.Context, executionID, taskID, errorMessage string) error {
	return s.mutateTask(ctx, executionID, taskID, func(task *domain.Task) {
		if task.Terminal() {
			return
		}
		finished := s.now()
		task.Status = domain.TaskStatusFailed
		task.ErrorMessage = errorMessage
		task.FinishedAt = &finished
	})
}

func (s *defaultStore) CompleteExecution(ctx context.Context, executionID string) error {
	exec, err := s.GetExecution(ctx, executionID)
	if err != nil {
		return err
	}
	if exec.Status != domain.ExecutionStatusRunning {
		return nil
	}
	if !exec.AllTasksTerminal() {
		return fmt.Errorf("execution %s still has non-terminal tasks", executionID)
	}

	completed := s.now()
	exec.Status = domain.ExecutionStatusCompleted
	if allTasksFailed(exec) {
		exec.Status = domain.ExecutionStatusFailed
	}
	exec.CompletedAt = &completed

	return s.persist(ctx, exec)
}

func (s *defaultStore) Summary(ctx context.Context, executionID string) (*domain.ExecutionSummary, error) {
	exec, err := s.GetExecution(ctx, executionID)
	if err != nil {
		return nil, err
	}

	summary := &domain.ExecutionSummary{
		ExecutionID: exec.ID,
		AccountID:   exec.AccountID,
		Status:      exec.Status,
		TotalTasks:  len(exec.Tasks),
		StartedAt:   exec.StartedAt,
		CompletedAt: exec.CompletedAt,
	}
	for _, t := range exec.Tasks {
		switch t.Status {
		case domain.TaskStatusCompleted:
			summary.CompletedTasks++
		case domain.TaskStatusFailed:
			summary.FailedTasks++
		case domain.TaskStatusRunning:
			summary.RunningTasks++
		default:
			summary.PendingTasks++
		}
	}
	if summary.TotalTasks > 0 {
		terminal := summary.CompletedTasks + summary.FailedTasks
		summary.PercentComplete = float64(terminal) / float64(summary.TotalTasks) * 100
	}
	return summary, nil
}

func (s *defaultStore) mutateTask(
	ctx context.Context,
	executionID, taskID string,
	mutate func(task *domain.Task),
) error {
	exec, err := s.GetExecution(ctx, executionID)
	if err != nil {
		return err
	}

	var task *domain.Task
	for i := range exec.Tasks {
		if exec.Tasks[i].ID == taskID {
			task = &exec.Tasks[i]
			break
		}
	}
	if task == nil {
		return fmt.Errorf("%w: %s in execution %s", ErrTaskNotFound, taskID, executionID)
	}

	mutate(task)
	return s.persist(ctx, exec)
}

func (s *defaultStore) persist(ctx context.Context, exec *domain.Execution) error {
	state := adapters.MapDomainExecutionToStore(exec)
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal execution state: %w", err)
	}
	return s.objects.Put(ctx, object.ExecutionStateKey(exec.ID), raw)
}

func allTasksFailed(exec *domain.Execution) bool {
	if len(exec.Tasks) == 0 {
		return false
	}
	for _, t := range exec.Tasks {
		if t.Status != domain.TaskStatusFailed {
			return false
		}
	}
	return true
}
