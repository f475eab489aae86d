package domain

import "time"

type AccountBatchStatus string

const (
	AccountBatchStatusReady  AccountBatchStatus = "ready"
	AccountBatchStatusFailed AccountBatchStatus = "failed"
)

type Account struct {
	ID   string
	Name string
	ARN  string
}

// Credentials are short-lived, read-only credentials for one account.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiry          time.Time
}

// AccountBatch is one (account, region, credentials) sub-job of a run.
// A failed role assumption is carried as Status=failed rather than
// dropped, so the report can surface a per-account gap.
type AccountBatch struct {
	AccountID   string
	AccountName string
	Region      string
	Credentials *Credentials
	Status      AccountBatchStatus
	Error       string
}
