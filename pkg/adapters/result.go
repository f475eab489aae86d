package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/ops-tools/costpilot/pkg/models/domain"
	"github.com/ops-tools/costpilot/pkg/models/store"
)

// MapBatchResultToTaskData flattens a collector result into the opaque
// result_data map carried by its task. The shape survives a JSON
// round-trip, so MapTaskDataToBatchResult can rebuild it during
// aggregation or crash recovery.
func MapBatchResultToTaskData(result *domain.BatchResult) (map[string]any, error) {
	raw, err := json.Marshal(mapBatchResultToDoc(result))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch result: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch result: %w", err)
	}
	return data, nil
}

func MapTaskDataToBatchResult(data map[string]any) (*domain.BatchResult, error) {
	if data == nil {
		return nil, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task data: %w", err)
	}

	var doc batchResultDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task data: %w", err)
	}
	return mapDocToBatchResult(&doc), nil
}

// batchResultDoc is the wire shape produced by collectors and consumed
// by the aggregator.
type batchResultDoc struct {
	BatchID  string   `json:"batch_id,omitempty"`
	Services []string `json:"services"`
	Costs    struct {
		ByService  map[string]float64 `json:"by_service"`
		ByCategory map[string]float64 `json:"by_category"`
	} `json:"costs"`
	Recommendations []store.Recommendation `json:"recommendations"`
	Savings         struct {
		ByService  map[string]float64 `json:"by_service"`
		ByCategory map[string]float64 `json:"by_category"`
	} `json:"savings_potential"`
	Metrics store.Metrics `json:"metrics"`
	Error   string        `json:"error,omitempty"`
}

func mapBatchResultToDoc(result *domain.BatchResult) *batchResultDoc {
	doc := &batchResultDoc{
		BatchID:  result.BatchID,
		Services: result.Services,
		Error:    result.Error,
	}
	doc.Costs.ByService = result.Costs.ByService
	doc.Costs.ByCategory = result.Costs.ByCategory
	doc.Savings.ByService = result.Savings.ByService
	doc.Savings.ByCategory = result.Savings.ByCategory
	doc.Metrics = store.Metrics{
		ResourcesAnalyzed:  result.Metrics.ResourcesAnalyzed,
		AnomaliesDetected:  result.Metrics.AnomaliesDetected,
		OptimizationsFound: result.Metrics.OptimizationsFound,
	}
	for _, r := range result.Recommendations {
		doc.Recommendations = append(doc.Recommendations, MapRecommendationDomainToStore(r))
	}
	return doc
}

func mapDocToBatchResult(doc *batchResultDoc) *domain.BatchResult {
	result := &domain.BatchResult{
		BatchID:  doc.BatchID,
		Services: doc.Services,
		Costs: domain.CostBreakdown{
			ByService:  doc.Costs.ByService,
			ByCategory: doc.Costs.ByCategory,
		},
		Savings: domain.SavingsBreakdown{
			ByService:  doc.Savings.ByService,
			ByCategory: doc.Savings.ByCategory,
		},
		Metrics: domain.CollectorMetrics{
			ResourcesAnalyzed:  doc.Metrics.ResourcesAnalyzed,
			AnomaliesDetected:  doc.Metrics.AnomaliesDetected,
			OptimizationsFound: doc.Metrics.OptimizationsFound,
		},
		Error: doc.Error,
	}
	for _, r := range doc.Recommendations {
		result.Recommendations = append(result.Recommendations, MapRecommendationStoreToDomain(r))
	}
	return result
}

func MapRecommendationDomainToStore(r domain.Recommendation) store.Recommendation {
	return store.Recommendation{
		Service:          r.Service,
		Category:         r.Category,
		ResourceID:       r.ResourceID,
		Action:           r.Action,
		Description:      r.Description,
		EstimatedSavings: r.EstimatedSavings,
	}
}

func MapRecommendationStoreToDomain(r store.Recommendation) domain.Recommendation {
	return domain.Recommendation{
		Service:          r.Service,
		Category:         r.Category,
		ResourceID:       r.ResourceID,
		Action:           r.Action,
		Description:      r.Description,
		EstimatedSavings: r.EstimatedSavings,
	}
}

func MapAggregatedResultToReport(exec *domain.Execution, result *domain.AggregatedResult) *store.Report {
	report := &store.Report{
		ExecutionID:       exec.ID,
		AccountID:         exec.AccountID,
		Status:            string(result.Status),
		TotalCost:         result.TotalCost,
		TotalSavings:      result.TotalSavings,
		Services:          result.Services,
		CostByService:     result.CostByService,
		CostByCategory:    result.CostByCategory,
		SavingsByService:  result.SavingsByService,
		SavingsByCategory: result.SavingsByCategory,
		Metrics: store.Metrics{
			ResourcesAnalyzed:  result.Metrics.ResourcesAnalyzed,
			AnomaliesDetected:  result.Metrics.AnomaliesDetected,
			OptimizationsFound: result.Metrics.OptimizationsFound,
		},
		Errors: result.Errors,
	}
	for _, r := range result.Recommendations {
		report.Recommendations = append(report.Recommendations, MapRecommendationDomainToStore(r))
	}
	return report
}

func MapRunSummaryToStore(summary *domain.RunSummary) *store.Summary {
	doc := &store.Summary{
		ExecutionID:         summary.ExecutionID,
		AccountID:           summary.AccountID,
		Status:              string(summary.Status),
		StartedAt:           summary.StartedAt,
		CompletedAt:         summary.CompletedAt,
		DurationSeconds:     summary.Duration.Seconds(),
		TotalCost:           summary.TotalCost,
		TotalSavings:        summary.TotalSavings,
		ServiceCount:        summary.ServiceCount,
		RecommendationCount: summary.RecommendationCount,
		ErrorCount:          summary.ErrorCount,
	}
	for _, e := range summary.TopServicesByCost {
		doc.TopServicesByCost = append(doc.TopServicesByCost, store.LeaderboardEntry{
			Service: e.Service,
			Amount:  e.Amount,
		})
	}
	for _, e := range summary.TopServicesBySavings {
		doc.TopServicesBySavings = append(doc.TopServicesBySavings, store.LeaderboardEntry{
			Service: e.Service,
			Amount:  e.Amount,
		})
	}
	return doc
}
