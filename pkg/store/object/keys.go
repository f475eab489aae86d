package object

import (
	"fmt"
	"time"
)

// LatestReportKey is overwritten on every finalized run.
const LatestReportKey = "reports/latest/report.json"

// CatalogueKey holds the ops-managed collector catalogue document.
const CatalogueKey = "catalogue/collectors.json"

func ExecutionStateKey(executionID string) string {
	return fmt.Sprintf("state/executions/%s/state.json", executionID)
}

func AccountLatestKey(accountID string) string {
	return fmt.Sprintf("state/accounts/%s/latest.json", accountID)
}

func ReportKey(generatedAt time.Time, executionID string) string {
	return fmt.Sprintf("reports/%s/%s/report.json", generatedAt.UTC().Format("2006/01/02"), executionID)
}

func SummaryKey(generatedAt time.Time, executionID string) string {
	return fmt.Sprintf("reports/%s/%s/summary.json", generatedAt.UTC().Format("2006/01/02"), executionID)
}
