package api

import "time"

type ExecutionSummary struct {
	ExecutionID     string     `json:"execution_id"`
	AccountID       string     `json:"account_id"`
	Status          string     `json:"status"`
	TotalTasks      int        `json:"total_tasks"`
	CompletedTasks  int        `json:"completed_tasks"`
	FailedTasks     int        `json:"failed_tasks"`
	PendingTasks    int        `json:"pending_tasks"`
	RunningTasks    int        `json:"running_tasks"`
	PercentComplete float64    `json:"percent_complete"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

type Task struct {
	ID           string `json:"task_id"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type Execution struct {
	ExecutionID string            `json:"execution_id"`
	AccountID   string            `json:"account_id"`
	Status      string            `json:"status"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Tasks       []Task            `json:"tasks"`
}
