package aggregator

import (
	"sort"
	"time"

	"github.com/ops-tools/costpilot/pkg/models/domain"
)

const leaderboardSize = 10

// BuildRunSummary derives the execution digest from the finalized
// aggregate, including top-10 cost and savings leaderboards.
func BuildRunSummary(
	exec *domain.Execution,
	result *domain.AggregatedResult,
	completedAt time.Time,
) *domain.RunSummary {
	return &domain.RunSummary{
		ExecutionID:          exec.ID,
		AccountID:            exec.AccountID,
		Status:               result.Status,
		StartedAt:            exec.StartedAt,
		CompletedAt:          completedAt,
		Duration:             completedAt.Sub(exec.StartedAt),
		TotalCost:            result.TotalCost,
		TotalSavings:         result.TotalSavings,
		ServiceCount:         len(result.Services),
		RecommendationCount:  len(result.Recommendations),
		ErrorCount:           len(result.Errors),
		TopServicesByCost:    topEntries(result.CostByService, leaderboardSize),
		TopServicesBySavings: topEntries(result.SavingsByService, leaderboardSize),
	}
}

func topEntries(amounts map[string]float64, n int) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(amounts))
	for svc, amount := range amounts {
		entries = append(entries, domain.LeaderboardEntry{Service: svc, Amount: amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount > entries[j].Amount
		}
		return entries[i].Service < entries[j].Service
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
