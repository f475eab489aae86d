package catalogue

import "github.com/ops-tools/costpilot/pkg/models/domain"

// defaultCollectors is the embedded fallback catalogue, kept in sync
// with the deployed collector set by hand. The quota-limited entries
// are the Cost Explorer family, which shares one account-wide rate
// limit.
var defaultCollectors = []domain.CollectorDef{
	{Name: "cost-explorer-usage", Category: "billing", Priority: 1, QuotaLimitedAPI: true},
	{Name: "cost-explorer-forecast", Category: "billing", Priority: 2, QuotaLimitedAPI: true},
	{Name: "cost-explorer-reservations", Category: "billing", Priority: 2, QuotaLimitedAPI: true},
	{Name: "cost-explorer-savings-plans", Category: "billing", Priority: 2, QuotaLimitedAPI: true},
	{Name: "cost-anomalies", Category: "billing", Priority: 2, QuotaLimitedAPI: true},
	{Name: "cost-categories", Category: "billing", Priority: 3, QuotaLimitedAPI: true},

	{Name: "ec2-instances", Category: "compute", Priority: 1},
	{Name: "ec2-reserved-instances", Category: "compute", Priority: 2},
	{Name: "ec2-spot", Category: "compute", Priority: 3},
	{Name: "ec2-unattached-eips", Category: "compute", Priority: 2},
	{Name: "ebs-volumes", Category: "compute", Priority: 1},
	{Name: "ebs-snapshots", Category: "compute", Priority: 2},
	{Name: "lambda-functions", Category: "compute", Priority: 2},
	{Name: "ecs-clusters", Category: "compute", Priority: 3},
	{Name: "eks-clusters", Category: "compute", Priority: 3},
	{Name: "autoscaling-groups", Category: "compute", Priority: 3},

	{Name: "s3-buckets", Category: "storage", Priority: 1},
	{Name: "s3-lifecycle", Category: "storage", Priority: 2},
	{Name: "s3-intelligent-tiering", Category: "storage", Priority: 3},
	{Name: "efs-filesystems", Category: "storage", Priority: 3},
	{Name: "fsx-filesystems", Category: "storage", Priority: 4},
	{Name: "glacier-vaults", Category: "storage", Priority: 4},
	{Name: "backup-plans", Category: "storage", Priority: 3},

	{Name: "rds-instances", Category: "database", Priority: 1},
	{Name: "rds-reserved-instances", Category: "database", Priority: 2},
	{Name: "rds-snapshots", Category: "database", Priority: 2},
	{Name: "rds-idle-instances", Category: "database", Priority: 2},
	{Name: "dynamodb-tables", Category: "database", Priority: 2},
	{Name: "elasticache-clusters", Category: "database", Priority: 3},
	{Name: "redshift-clusters", Category: "database", Priority: 3},

	{Name: "elb-load-balancers", Category: "network", Priority: 2},
	{Name: "nat-gateways", Category: "network", Priority: 2},
	{Name: "vpc-endpoints", Category: "network", Priority: 3},
	{Name: "cloudfront-distributions", Category: "network", Priority: 3},
	{Name: "route53-zones", Category: "network", Priority: 4},
	{Name: "data-transfer", Category: "network", Priority: 2},

	{Name: "cloudwatch-logs", Category: "observability", Priority: 3},
	{Name: "cloudwatch-alarms", Category: "observability", Priority: 4},
	{Name: "cloudwatch-metrics", Category: "observability", Priority: 4},

	{Name: "sagemaker-endpoints", Category: "ml", Priority: 3},
	{Name: "sagemaker-notebooks", Category: "ml", Priority: 3},

	{Name: "emr-clusters", Category: "analytics", Priority: 3},
	{Name: "kinesis-streams", Category: "analytics", Priority: 3},
	{Name: "athena-workgroups", Category: "analytics", Priority: 4},
	{Name: "glue-jobs", Category: "analytics", Priority: 4},

	{Name: "kms-keys", Category: "security", Priority: 4},
	{Name: "secrets-manager", Category: "security", Priority: 4},
	{Name: "config-rules", Category: "management", Priority: 5},
	{Name: "trusted-advisor", Category: "management", Priority: 2},
}

// DefaultCollectors returns a copy of the embedded catalogue.
func DefaultCollectors() []domain.CollectorDef {
	out := make([]domain.CollectorDef, len(defaultCollectors))
	copy(out, defaultCollectors)
	return out
}
