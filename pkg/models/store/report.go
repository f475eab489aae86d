package store

import "time"

// Report is the finalized per-execution report document.
type Report struct {
	ExecutionID       string             `json:"execution_id"`
	AccountID         string             `json:"account_id"`
	GeneratedAt       time.Time          `json:"generated_at"`
	Status            string             `json:"status"`
	TotalCost         float64            `json:"total_cost"`
	TotalSavings      float64            `json:"total_savings"`
	Services          []string           `json:"services"`
	CostByService     map[string]float64 `json:"cost_by_service"`
	CostByCategory    map[string]float64 `json:"cost_by_category"`
	SavingsByService  map[string]float64 `json:"savings_by_service"`
	SavingsByCategory map[string]float64 `json:"savings_by_category"`
	Recommendations   []Recommendation   `json:"recommendations"`
	Metrics           Metrics            `json:"metrics"`
	Errors            []string           `json:"errors"`
}

type Recommendation struct {
	Service          string  `json:"service"`
	Category         string  `json:"category,omitempty"`
	ResourceID       string  `json:"resource_id,omitempty"`
	Action           string  `json:"action"`
	Description      string  `json:"description,omitempty"`
	EstimatedSavings float64 `json:"estimated_savings"`
}

type Metrics struct {
	ResourcesAnalyzed  int `json:"resources_analyzed"`
	AnomaliesDetected  int `json:"anomalies_detected"`
	OptimizationsFound int `json:"optimizations_found"`
}

// Summary is the compact digest stored next to the report.
type Summary struct {
	ExecutionID          string             `json:"execution_id"`
	AccountID            string             `json:"account_id"`
	Status               string             `json:"status"`
	StartedAt            time.Time          `json:"started_at"`
	CompletedAt          time.Time          `json:"completed_at"`
	DurationSeconds      float64            `json:"duration_seconds"`
	TotalCost            float64            `json:"total_cost"`
	TotalSavings         float64            `json:"total_savings"`
	ServiceCount         int                `json:"service_count"`
	RecommendationCount  int                `json:"recommendation_count"`
	ErrorCount           int                `json:"error_count"`
	TopServicesByCost    []LeaderboardEntry `json:"top_services_by_cost"`
	TopServicesBySavings []LeaderboardEntry `json:"top_services_by_savings"`
}

type LeaderboardEntry struct {
	Service string  `json:"service"`
	Amount  float64 `json:"amount"`
}
