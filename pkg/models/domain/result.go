package domain

import "time"

type AggregateStatus string

const (
	AggregateStatusSuccess AggregateStatus = "SUCCESS"
	AggregateStatusPartial AggregateStatus = "PARTIAL"
)

type CostBreakdown struct {
	ByService  map[string]float64
	ByCategory map[string]float64
}

type SavingsBreakdown struct {
	ByService  map[string]float64
	ByCategory map[string]float64
}

type CollectorMetrics struct {
	ResourcesAnalyzed  int
	AnomaliesDetected  int
	OptimizationsFound int
}

type Recommendation struct {
	Service          string
	Category         string
	ResourceID       string
	Action           string
	Description      string
	EstimatedSavings float64
}

// BatchResult is the output of one batch (or of one collector inside a
// batch; the two share a shape so folding composes). A result carrying
// Error contributes nothing numeric to the aggregate.
type BatchResult struct {
	BatchID         string
	Services        []string
	Costs           CostBreakdown
	Recommendations []Recommendation
	Savings         SavingsBreakdown
	Metrics         CollectorMetrics
	Error           string
}

// AggregatedResult is the fold of all batch results for one execution.
// Immutable once finalized.
type AggregatedResult struct {
	TotalCost         float64
	Status            AggregateStatus
	Errors            []string
	Services          []string
	CostByService     map[string]float64
	CostByCategory    map[string]float64
	SavingsByService  map[string]float64
	SavingsByCategory map[string]float64
	TotalSavings      float64
	Recommendations   []Recommendation
	Metrics           CollectorMetrics
}

type LeaderboardEntry struct {
	Service string
	Amount  float64
}

// RunSummary is the human-facing digest of a finished execution.
type RunSummary struct {
	ExecutionID          string
	AccountID            string
	Status               AggregateStatus
	StartedAt            time.Time
	CompletedAt          time.Time
	Duration             time.Duration
	TotalCost            float64
	TotalSavings         float64
	ServiceCount         int
	RecommendationCount  int
	ErrorCount           int
	TopServicesByCost    []LeaderboardEntry
	TopServicesBySavings []LeaderboardEntry
}
