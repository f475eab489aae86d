package aggregator

import (
	"sort"

	"github.com/ops-tools/costpilot/pkg/models/domain"
)

// MaxRecommendations caps the finalized recommendation list.
const MaxRecommendations = 100

// Accumulator folds batch results into one aggregate. The fold is
// commutative and associative, so batches may arrive in any order.
type Accumulator struct {
	services          map[string]struct{}
	costByService     map[string]float64
	costByCategory    map[string]float64
	savingsByService  map[string]float64
	savingsByCategory map[string]float64
	recommendations   []domain.Recommendation
	metrics           domain.CollectorMetrics
	errors            []string
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		services:          make(map[string]struct{}),
		costByService:     make(map[string]float64),
		costByCategory:    make(map[string]float64),
		savingsByService:  make(map[string]float64),
		savingsByCategory: make(map[string]float64),
	}
}

// Add folds one batch result in. A nil result is skipped. A result
// carrying an error contributes only its error string; none of its
// numeric fields are merged, so a failed batch cannot corrupt totals.
func (a *Accumulator) Add(result *domain.BatchResult) {
	if result == nil {
		return
	}
	if result.Error != "" {
		a.errors = append(a.errors, result.Error)
		return
	}

	for _, svc := range result.Services {
		a.services[svc] = struct{}{}
	}
	for svc, amount := range result.Costs.ByService {
		a.costByService[svc] += amount
	}
	for cat, amount := range result.Costs.ByCategory {
		a.costByCategory[cat] += amount
	}
	for svc, amount := range result.Savings.ByService {
		a.savingsByService[svc] += amount
	}
	for cat, amount := range result.Savings.ByCategory {
		a.savingsByCategory[cat] += amount
	}

	a.recommendations = append(a.recommendations, result.Recommendations...)
	a.metrics.ResourcesAnalyzed += result.Metrics.ResourcesAnalyzed
	a.metrics.AnomaliesDetected += result.Metrics.AnomaliesDetected
	a.metrics.OptimizationsFound += result.Metrics.OptimizationsFound
}

// Finalize produces the immutable aggregate. The total cost is derived
// from the by-service sums rather than carried separately, so the
// report cannot disagree with its own breakdown.
func (a *Accumulator) Finalize() *domain.AggregatedResult {
	result := &domain.AggregatedResult{
		Status:            domain.AggregateStatusSuccess,
		Errors:            a.errors,
		Services:          sortedKeys(a.services),
		CostByService:     a.costByService,
		CostByCategory:    a.costByCategory,
		SavingsByService:  a.savingsByService,
		SavingsByCategory: a.savingsByCategory,
		Metrics:           a.metrics,
	}

	for _, amount := range a.costByService {
		result.TotalCost += amount
	}
	for _, amount := range a.savingsByService {
		result.TotalSavings += amount
	}

	recommendations := make([]domain.Recommendation, len(a.recommendations))
	copy(recommendations, a.recommendations)
	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].EstimatedSavings > recommendations[j].EstimatedSavings
	})
	if len(recommendations) > MaxRecommendations {
		recommendations = recommendations[:MaxRecommendations]
	}
	result.Recommendations = recommendations

	if len(a.errors) > 0 {
		result.Status = domain.AggregateStatusPartial
	}
	return result
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
