package adapters

import (
	"time"

	"github.com/ops-tools/costpilot/pkg/models/api"
	"github.com/ops-tools/costpilot/pkg/models/domain"
)

func MapBatchDomainToApi(batch domain.Batch) api.Batch {
	return api.Batch{
		ID:          batch.ID,
		Type:        string(batch.Type),
		RateLimited: batch.RateLimited,
		Collectors:  batch.CollectorNames(),
	}
}

func MapAccountBatchDomainToApi(batch domain.AccountBatch) api.AccountBatch {
	out := api.AccountBatch{
		AccountID:   batch.AccountID,
		AccountName: batch.AccountName,
		Region:      batch.Region,
		Status:      string(batch.Status),
		Error:       batch.Error,
	}
	if batch.Credentials != nil {
		out.AccessKeyID = batch.Credentials.AccessKeyID
		out.SecretAccessKey = batch.Credentials.SecretAccessKey
		out.SessionToken = batch.Credentials.SessionToken
		out.Expiry = batch.Credentials.Expiry.UTC().Format(time.RFC3339)
	}
	return out
}
