package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/ops-tools/costpilot/pkg/services/cache"
	"github.com/ops-tools/costpilot/pkg/services/catalogue"
	"github.com/ops-tools/costpilot/pkg/services/collector"
	"github.com/ops-tools/costpilot/pkg/services/config"
	"github.com/ops-tools/costpilot/pkg/services/fanout"
	"github.com/ops-tools/costpilot/pkg/services/notify"
	"github.com/ops-tools/costpilot/pkg/services/orchestrator"
	"github.com/ops-tools/costpilot/pkg/services/planner"
	"github.com/ops-tools/costpilot/pkg/services/provider"
	"github.com/ops-tools/costpilot/pkg/services/resilience"
	"github.com/ops-tools/costpilot/pkg/store/execution"
	"github.com/ops-tools/costpilot/pkg/store/object"
	"github.com/ops-tools/costpilot/pkg/store/report"
)

const cacheTTL = 15 * time.Minute

// Env is the wired dependency set shared by the stage commands.
type Env struct {
	Profile    *config.Profile
	AWSConfig  aws.Config
	Objects    object.Store
	States     execution.Store
	Reports    report.Store
	Controller orchestrator.Controller
	Fanout     *fanout.Fanout
}

// BuildEnv assembles the runtime for one stage invocation from the
// orchestrator profile.
func BuildEnv(ctx context.Context, profilePath string, registry collector.Registry) (*Env, error) {
	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(profile.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	objects, err := object.NewS3Store(s3.NewFromConfig(awsCfg), profile.Bucket)
	if err != nil {
		return nil, err
	}
	states, err := execution.NewStore(objects)
	if err != nil {
		return nil, err
	}
	reports, err := report.NewStore(objects)
	if err != nil {
		return nil, err
	}

	sharedCache := cache.New(cacheTTL)
	resolver := catalogue.NewResolver(catalogue.NewObjectProvider(objects, profile.CatalogueKey), sharedCache)

	executorOpts := []resilience.Option{}
	if profile.MaxRetries > 0 {
		executorOpts = append(executorOpts, resilience.WithMaxRetries(profile.MaxRetries))
	}
	executor := resilience.NewExecutor(executorOpts...)

	var notifier notify.Notifier
	if profile.TopicARN != "" {
		notifier, err = notify.NewSNSNotifier(sns.NewFromConfig(awsCfg), profile.TopicARN)
		if err != nil {
			return nil, err
		}
	}

	if registry == nil {
		registry = collector.NewRegistry()
	}

	controller, err := orchestrator.NewController(orchestrator.Dependencies{
		States:   states,
		Reports:  reports,
		Resolver: resolver,
		Planner:  planner.New(profile.BatchSize),
		Registry: registry,
		Clients:  provider.NewAWSFactory(awsCfg, sharedCache),
		Executor: executor,
		Notifier: notifier,
		Region:   profile.Region,
	})
	if err != nil {
		return nil, err
	}

	stsClient := sts.NewFromConfig(awsCfg)
	accountFanout, err := fanout.New(
		fanout.NewOrgLister(organizations.NewFromConfig(awsCfg)),
		fanout.NewSTSProvider(stsClient, ""),
		fanout.NewCallerIdentity(stsClient),
		executor,
		fanout.Config{RoleName: profile.RoleName, Regions: profile.Regions},
	)
	if err != nil {
		return nil, err
	}

	return &Env{
		Profile:    profile,
		AWSConfig:  awsCfg,
		Objects:    objects,
		States:     states,
		Reports:    reports,
		Controller: controller,
		Fanout:     accountFanout,
	}, nil
}

// PlanRequest derives the planner request from the profile.
func (e *Env) PlanRequest() planner.Request {
	return planner.Request{
		Include:    e.Profile.IncludeCollectors,
		Exclude:    e.Profile.ExcludeCollectors,
		Categories: e.Profile.Categories,
		BatchSize:  e.Profile.BatchSize,
	}
}
