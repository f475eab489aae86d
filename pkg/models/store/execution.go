package store

import "time"

// ExecutionState is the durable execution document. Every mutation
// rewrites the whole document, never a single field.
type ExecutionState struct {
	ID          string            `json:"execution_id"`
	AccountID   string            `json:"account_id"`
	Status      string            `json:"status"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Tasks       []TaskState       `json:"tasks"`
}

type TaskState struct {
	ID           string         `json:"task_id"`
	Type         string         `json:"type"`
	Status       string         `json:"status"`
	ResultData   map[string]any `json:"result_data,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
}

// LatestExecution points an account at its most recent execution.
type LatestExecution struct {
	ExecutionID string    `json:"execution_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}
