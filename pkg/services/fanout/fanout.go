package fanout

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ops-tools/costpilot/pkg/models/domain"
	"github.com/ops-tools/costpilot/pkg/services/resilience"
)

// AccountLister enumerates active member accounts of the organization.
type AccountLister interface {
	ListActiveAccounts(ctx context.Context) ([]domain.Account, error)
}

// CredentialsProvider mints short-lived read-only credentials for one
// account.
type CredentialsProvider interface {
	AssumeRole(ctx context.Context, accountID, roleName string) (*domain.Credentials, error)
}

// CallerIdentity resolves the account this process runs as, used when
// organization access is unavailable.
type CallerIdentity interface {
	AccountID(ctx context.Context) (string, error)
}

// Fanout expands one logical run into per-(account, region) sub-jobs.
type Fanout struct {
	lister   AccountLister
	creds    CredentialsProvider
	caller   CallerIdentity
	executor *resilience.Executor
	roleName string
	regions  []string
}

type Config struct {
	RoleName string
	Regions  []string
}

func New(
	lister AccountLister,
	creds CredentialsProvider,
	caller CallerIdentity,
	executor *resilience.Executor,
	cfg Config,
) (*Fanout, error) {
	if cfg.RoleName == "" {
		return nil, fmt.Errorf("fanout role name is empty")
	}
	regions := cfg.Regions
	if len(regions) == 0 {
		regions = []string{"us-east-1"}
	}
	return &Fanout{
		lister:   lister,
		creds:    creds,
		caller:   caller,
		executor: executor,
		roleName: cfg.RoleName,
		regions:  regions,
	}, nil
}

// Expand emits one AccountBatch per (account, region). A failed role
// assumption becomes a failed batch rather than a silent drop, so the
// report can show a per-account gap instead of under-reporting costs.
// Transient listing throttles are retried; only a genuine lack of
// organization access degrades the run to the caller account.
func (f *Fanout) Expand(ctx context.Context) ([]domain.AccountBatch, error) {
	logger := zerolog.Ctx(ctx)

	var accounts []domain.Account
	err := f.executor.Do(ctx, "organizations.ListAccounts", func(ctx context.Context) error {
		var listErr error
		accounts, listErr = f.lister.ListActiveAccounts(ctx)
		return listErr
	})
	if err != nil {
		logger.Warn().Err(err).Msg("organization listing unavailable, degrading to caller account")
		var accountID string
		idErr := f.executor.Do(ctx, "sts.GetCallerIdentity", func(ctx context.Context) error {
			var callErr error
			accountID, callErr = f.caller.AccountID(ctx)
			return callErr
		})
		if idErr != nil {
			return nil, fmt.Errorf("failed to resolve caller account: %w", idErr)
		}
		accounts = []domain.Account{{ID: accountID, Name: "caller"}}
	}

	var batches []domain.AccountBatch
	for _, account := range accounts {
		for _, region := range f.regions {
			batches = append(batches, f.expandOne(ctx, account, region))
		}
	}
	return batches, nil
}

func (f *Fanout) expandOne(ctx context.Context, account domain.Account, region string) domain.AccountBatch {
	logger := zerolog.Ctx(ctx)

	batch := domain.AccountBatch{
		AccountID:   account.ID,
		AccountName: account.Name,
		Region:      region,
	}

	var creds *domain.Credentials
	err := f.executor.Do(ctx, "sts.AssumeRole", func(ctx context.Context) error {
		var assumeErr error
		creds, assumeErr = f.creds.AssumeRole(ctx, account.ID, f.roleName)
		return assumeErr
	})
	if err != nil {
		logger.Warn().
			Err(err).
			Str("account_id", account.ID).
			Str("region", region).
			Msg("role assumption failed")
		batch.Status = domain.AccountBatchStatusFailed
		batch.Error = err.Error()
		return batch
	}

	batch.Status = domain.AccountBatchStatusReady
	batch.Credentials = creds
	return batch
}
