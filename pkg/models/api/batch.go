package api

type Batch struct {
	ID          string   `json:"batch_id"`
	Type        string   `json:"batch_type"`
	RateLimited bool     `json:"rate_limited"`
	Collectors  []string `json:"collectors"`
}

// PlanOutput is what the init stage hands to the workflow engine.
type PlanOutput struct {
	ExecutionID string  `json:"execution_id"`
	AccountID   string  `json:"account_id"`
	Resumed     bool    `json:"resumed"`
	Batches     []Batch `json:"batches"`
}

type AccountBatch struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name,omitempty"`
	Region      string `json:"region"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`

	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`
	SessionToken    string `json:"session_token,omitempty"`
	Expiry          string `json:"expiry,omitempty"`
}
