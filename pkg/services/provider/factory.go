package provider

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ops-tools/costpilot/pkg/models/domain"
	"github.com/ops-tools/costpilot/pkg/services/cache"
)

// Service names accepted by the factory.
const (
	ServiceCostExplorer = "ce"
	ServiceEC2          = "ec2"
	ServiceRDS          = "rds"
	ServiceS3           = "s3"
)

// ClientFactory hands collectors a typed provider client for a service
// in a region. Callers assert the concrete client type for the service
// they asked for.
type ClientFactory interface {
	GetClient(ctx context.Context, service, region string) (any, error)
}

type awsFactory struct {
	base  aws.Config
	cache *cache.Cache
}

// NewAWSFactory builds a factory over the base config. Clients are
// memoized per (service, region) through the shared cache.
func NewAWSFactory(base aws.Config, c *cache.Cache) ClientFactory {
	return &awsFactory{base: base, cache: c}
}

// NewAWSFactoryForBatch binds the factory to an account batch's
// short-lived credentials. A nil cache is used on purpose: assumed
// credentials expire, so these clients must not outlive the batch.
func NewAWSFactoryForBatch(base aws.Config, creds *domain.Credentials) ClientFactory {
	cfg := base.Copy()
	if creds != nil {
		cfg.Credentials = credentials.NewStaticCredentialsProvider(
			creds.AccessKeyID,
			creds.SecretAccessKey,
			creds.SessionToken,
		)
	}
	return &awsFactory{base: cfg}
}

func (f *awsFactory) GetClient(_ context.Context, service, region string) (any, error) {
	key := fmt.Sprintf("client/%s/%s", service, region)
	if f.cache != nil {
		if cached, ok := f.cache.Get(key); ok {
			return cached, nil
		}
	}

	cfg := f.base.Copy()
	if region != "" {
		cfg.Region = region
	}

	var client any
	switch service {
	case ServiceCostExplorer:
		client = costexplorer.NewFromConfig(cfg)
	case ServiceEC2:
		client = ec2.NewFromConfig(cfg)
	case ServiceRDS:
		client = rds.NewFromConfig(cfg)
	case ServiceS3:
		client = s3.NewFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider service: %s", service)
	}

	if f.cache != nil {
		f.cache.Set(key, client)
	}
	return client, nil
}
