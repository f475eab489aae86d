package adapters

import (
	"maps"

	"github.com/ops-tools/costpilot/pkg/models/api"
	"github.com/ops-tools/costpilot/pkg/models/domain"
	"github.com/ops-tools/costpilot/pkg/models/store"
)

func MapDomainExecutionToStore(exec *domain.Execution) *store.ExecutionState {
	state := &store.ExecutionState{
		ID:          exec.ID,
		AccountID:   exec.AccountID,
		Status:      string(exec.Status),
		StartedAt:   exec.StartedAt,
		CompletedAt: exec.CompletedAt,
		Metadata:    maps.Clone(exec.Metadata),
		Tasks:       make([]store.TaskState, 0, len(exec.Tasks)),
	}

	for _, t := range exec.Tasks {
		state.Tasks = append(state.Tasks, store.TaskState{
			ID:           t.ID,
			Type:         t.Type,
			Status:       string(t.Status),
			ResultData:   maps.Clone(t.ResultData),
			ErrorMessage: t.ErrorMessage,
			CreatedAt:    t.CreatedAt,
			StartedAt:    t.StartedAt,
			FinishedAt:   t.FinishedAt,
		})
	}

	return state
}

func MapStoreExecutionToDomain(state *store.ExecutionState) *domain.Execution {
	exec := &domain.Execution{
		ID:          state.ID,
		AccountID:   state.AccountID,
		Status:      domain.ExecutionStatus(state.Status),
		StartedAt:   state.StartedAt,
		CompletedAt: state.CompletedAt,
		Metadata:    maps.Clone(state.Metadata),
		Tasks:       make([]domain.Task, 0, len(state.Tasks)),
	}

	for _, t := range state.Tasks {
		exec.Tasks = append(exec.Tasks, domain.Task{
			ID:           t.ID,
			Type:         t.Type,
			Status:       domain.TaskStatus(t.Status),
			ResultData:   maps.Clone(t.ResultData),
			ErrorMessage: t.ErrorMessage,
			CreatedAt:    t.CreatedAt,
			StartedAt:    t.StartedAt,
			FinishedAt:   t.FinishedAt,
		})
	}

	return exec
}

func MapExecutionDomainToApi(exec *domain.Execution) api.Execution {
	resp := api.Execution{
		ExecutionID: exec.ID,
		AccountID:   exec.AccountID,
		Status:      string(exec.Status),
		StartedAt:   exec.StartedAt,
		CompletedAt: exec.CompletedAt,
		Metadata:    exec.Metadata,
		Tasks:       make([]api.Task, 0, len(exec.Tasks)),
	}

	for _, t := range exec.Tasks {
		resp.Tasks = append(resp.Tasks, api.Task{
			ID:           t.ID,
			Type:         t.Type,
			Status:       string(t.Status),
			ErrorMessage: t.ErrorMessage,
		})
	}

	return resp
}

func MapExecutionSummaryDomainToApi(summary *domain.ExecutionSummary) api.ExecutionSummary {
	return api.ExecutionSummary{
		ExecutionID:     summary.ExecutionID,
		AccountID:       summary.AccountID,
		Status:          string(summary.Status),
		TotalTasks:      summary.TotalTasks,
		CompletedTasks:  summary.CompletedTasks,
		FailedTasks:     summary.FailedTasks,
		PendingTasks:    summary.PendingTasks,
		RunningTasks:    summary.RunningTasks,
		PercentComplete: summary.PercentComplete,
		StartedAt:       summary.StartedAt,
		CompletedAt:     summary.CompletedAt,
	}
}
