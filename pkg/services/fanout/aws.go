package fanout

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/ops-tools/costpilot/pkg/models/domain"
)

const sessionDurationSeconds = 3600 // credentials live at most one hour

type orgLister struct {
	client *organizations.Client
}

func NewOrgLister(client *organizations.Client) AccountLister {
	return &orgLister{client: client}
}

func (l *orgLister) ListActiveAccounts(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account

	paginator := organizations.NewListAccountsPaginator(l.client, &organizations.ListAccountsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list organization accounts: %w", err)
		}
		for _, account := range page.Accounts {
			if account.Status != orgtypes.AccountStatusActive {
				continue
			}
			accounts = append(accounts, domain.Account{
				ID:   aws.ToString(account.Id),
				Name: aws.ToString(account.Name),
				ARN:  aws.ToString(account.Arn),
			})
		}
	}
	return accounts, nil
}

type stsProvider struct {
	client      *sts.Client
	sessionName string
}

func NewSTSProvider(client *sts.Client, sessionName string) CredentialsProvider {
	if sessionName == "" {
		sessionName = "costpilot-collection"
	}
	return &stsProvider{client: client, sessionName: sessionName}
}

func (p *stsProvider) AssumeRole(ctx context.Context, accountID, roleName string) (*domain.Credentials, error) {
	out, err := p.client.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, roleName)),
		RoleSessionName: aws.String(p.sessionName),
		DurationSeconds: aws.Int32(sessionDurationSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assume role %s in account %s: %w", roleName, accountID, err)
	}

	creds := out.Credentials
	return &domain.Credentials{
		AccessKeyID:     aws.ToString(creds.AccessKeyId),
		SecretAccessKey: aws.ToString(creds.SecretAccessKey),
		SessionToken:    aws.ToString(creds.SessionToken),
		Expiry:          aws.ToTime(creds.Expiration),
	}, nil
}

type stsCallerIdentity struct {
	client *sts.Client
}

func NewCallerIdentity(client *sts.Client) CallerIdentity {
	return &stsCallerIdentity{client: client}
}

func (c *stsCallerIdentity) AccountID(ctx context.Context) (string, error) {
	out, err := c.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}
	return aws.ToString(out.Account), nil
}
