package domain

import "time"

type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "RUNNING"
	ExecutionStatusCompleted ExecutionStatus = "COMPLETED"
	ExecutionStatusFailed    ExecutionStatus = "FAILED"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusRunning   TaskStatus = "RUNNING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusFailed    TaskStatus = "FAILED"
)

// Task is one collector invocation inside an Execution. Status moves
// PENDING -> RUNNING -> {COMPLETED|FAILED} and never regresses.
type Task struct {
	ID           string
	Type         string // collector name
	Status       TaskStatus
	ResultData   map[string]any
	ErrorMessage string
	CreatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

func (t *Task) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// Execution is one end-to-end collection run for one account.
type Execution struct {
	ID          string
	AccountID   string
	Status      ExecutionStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Metadata    map[string]string
	Tasks       []Task
}

// TaskFor returns the task owned by this execution for the given
// collector, or nil when the collector was filtered out of the run.
func (e *Execution) TaskFor(collector string) *Task {
	for i := range e.Tasks {
		if e.Tasks[i].Type == collector {
			return &e.Tasks[i]
		}
	}
	return nil
}

func (e *Execution) AllTasksTerminal() bool {
	for i := range e.Tasks {
		if !e.Tasks[i].Terminal() {
			return false
		}
	}
	return true
}

type ExecutionSummary struct {
	ExecutionID     string
	AccountID       string
	Status          ExecutionStatus
	TotalTasks      int
	CompletedTasks  int
	FailedTasks     int
	PendingTasks    int
	RunningTasks    int
	PercentComplete float64
	StartedAt       time.Time
	CompletedAt     *time.Time
}
